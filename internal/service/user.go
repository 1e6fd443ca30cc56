package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/adoptly/adoptly/internal/model"
	"github.com/adoptly/adoptly/internal/repository"
)

// UserService handles user administration and profile management.
type UserService struct {
	store UserStore
	cache UserCache
}

// NewUserService creates a new UserService. cache may be nil.
func NewUserService(store UserStore, cache UserCache) *UserService {
	return &UserService{
		store: store,
		cache: cache,
	}
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
}

// Get retrieves a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfileInput defines input for updating a user profile. Empty
// fields keep their current value.
type UpdateProfileInput struct {
	FirstName string
	LastName  string
	Email     string
}

// UpdateProfile updates a user's names and email.
func (s *UserService) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if input.Email != "" {
		user.Email = input.Email
	}

	if err := s.store.UpdateUserProfile(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrUserExists
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		default:
			return nil, fmt.Errorf("update user: %w", err)
		}
	}
	s.invalidate(ctx, id)

	return user, nil
}

// AddDocuments appends document metadata to a user. The files themselves
// live in external storage; only {name, reference} pairs are recorded.
func (s *UserService) AddDocuments(ctx context.Context, id string, docs []model.Document) error {
	if err := s.store.AppendUserDocuments(ctx, id, docs); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("append documents: %w", err)
	}
	s.invalidate(ctx, id)
	return nil
}

// Delete removes a user account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *UserService) invalidate(ctx context.Context, userID string) {
	if s.cache != nil {
		_ = s.cache.DeleteUser(ctx, userID)
	}
}
