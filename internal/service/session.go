package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/adoptly/adoptly/internal/auth"
	"github.com/adoptly/adoptly/internal/metrics"
	"github.com/adoptly/adoptly/internal/model"
	"github.com/adoptly/adoptly/internal/repository"
)

// Session service errors.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// SessionService handles registration, login, logout and the current-user
// lookup.
type SessionService struct {
	store   UserStore
	cache   UserCache
	tokens  *auth.TokenService
	metrics metrics.Recorder
	audit   Auditor
}

// NewSessionService creates a new SessionService. cache and auditor may be
// nil.
func NewSessionService(store UserStore, cache UserCache, tokens *auth.TokenService, recorder metrics.Recorder, auditor Auditor) *SessionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SessionService{
		store:   store,
		cache:   cache,
		tokens:  tokens,
		metrics: recorder,
		audit:   auditor,
	}
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Register creates a new user account. The password is stored only as an
// argon2id hash. Returns ErrUserExists when the email is taken.
func (s *SessionService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:             ulid.Make().String(),
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		PasswordHash:   hash,
		Role:           model.RoleUser,
		Pets:           []string{},
		LastConnection: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncUserRegistered()
	s.publish(user.ID, model.AuditActionRegistered, user.Email)

	return user, nil
}

// Login verifies credentials and issues a signed session token. The same
// ErrInvalidCredentials comes back for an unknown email and a wrong
// password, so callers cannot enumerate accounts.
func (s *SessionService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginFailure()
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		s.metrics.IncLoginFailure()
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.store.UpdateLastConnection(ctx, user.ID, now); err != nil {
		return "", nil, fmt.Errorf("update last connection: %w", err)
	}
	user.LastConnection = now
	s.invalidate(ctx, user.ID)

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncLoginSuccess()
	s.publish(user.ID, model.AuditActionLogin, user.Email)

	return token, user, nil
}

// Logout records the disconnect timestamp. The token itself stays valid for
// its remaining TTL; there is no revocation list.
func (s *SessionService) Logout(ctx context.Context, identity *model.Identity) error {
	err := s.store.UpdateLastConnection(ctx, identity.ID, time.Now().UTC())
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("update last connection: %w", err)
	}
	s.invalidate(ctx, identity.ID)

	s.publish(identity.ID, model.AuditActionLogout, identity.Email)
	return nil
}

// Current returns the profile of the authenticated user, served from cache
// when warm.
func (s *SessionService) Current(ctx context.Context, userID string) (*model.User, error) {
	if s.cache != nil {
		if user, _ := s.cache.GetUser(ctx, userID); user != nil {
			return user, nil
		}
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.SetUser(ctx, user)
	}

	return user, nil
}

func (s *SessionService) invalidate(ctx context.Context, userID string) {
	if s.cache != nil {
		_ = s.cache.DeleteUser(ctx, userID)
	}
}

func (s *SessionService) publish(actor, action, subject string) {
	if s.audit != nil {
		s.audit.PublishAsync(model.AuditEvent{
			Actor:      actor,
			Action:     action,
			Subject:    subject,
			OccurredAt: time.Now().UTC(),
		})
	}
}
