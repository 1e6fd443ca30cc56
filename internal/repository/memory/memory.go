// Package memory provides a mutex-guarded in-memory implementation of the
// record store, mirroring the semantics of the Postgres repository. It backs
// the unit and handler tests, which exercise the full workflow without a
// database.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/adoptly/adoptly/internal/model"
	"github.com/adoptly/adoptly/internal/repository"
)

// Store holds users, pets and adoptions in memory.
type Store struct {
	mu        sync.RWMutex
	users     map[string]*model.User
	pets      map[string]*model.Pet
	adoptions map[string]*model.Adoption
	audit     []*model.AuditEvent
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		users:     make(map[string]*model.User),
		pets:      make(map[string]*model.Pet),
		adoptions: make(map[string]*model.Adoption),
	}
}

// CreateUser inserts a new user. Duplicate emails are rejected with the same
// error the Postgres repository returns.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}

	s.users[user.ID] = copyUser(user)
	return nil
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return copyUser(user), nil
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// ListUsers retrieves all users ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// UpdateUserProfile updates the mutable profile fields of a user.
func (s *Store) UpdateUserProfile(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	for _, u := range s.users {
		if u.ID != user.ID && u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}

	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	existing.Email = user.Email
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateLastConnection records a login/logout timestamp for the user.
func (s *Store) UpdateLastConnection(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.LastConnection = at
	user.UpdatedAt = at
	return nil
}

// AppendUserPet appends a pet ID to the user's owned-pets list.
func (s *Store) AppendUserPet(ctx context.Context, userID, petID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.Pets = append(user.Pets, petID)
	user.UpdatedAt = time.Now().UTC()
	return nil
}

// AppendUserDocuments appends document metadata entries to the user.
func (s *Store) AppendUserDocuments(ctx context.Context, userID string, docs []model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.Documents = append(user.Documents, docs...)
	user.UpdatedAt = time.Now().UTC()
	return nil
}

// DeleteUser removes a user by ID.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

// CreatePet inserts a new pet.
func (s *Store) CreatePet(ctx context.Context, pet *model.Pet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pets[pet.ID] = copyPet(pet)
	return nil
}

// GetPetByID retrieves a pet by ID.
func (s *Store) GetPetByID(ctx context.Context, id string) (*model.Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pet, ok := s.pets[id]
	if !ok {
		return nil, repository.ErrPetNotFound
	}
	return copyPet(pet), nil
}

// ListPets retrieves pets matching the filter, ordered by creation time.
func (s *Store) ListPets(ctx context.Context, filter repository.PetFilter) ([]*model.Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pets := make([]*model.Pet, 0, len(s.pets))
	for _, p := range s.pets {
		if filter.Adopted != nil && p.Adopted != *filter.Adopted {
			continue
		}
		if filter.Species != "" && p.Species != filter.Species {
			continue
		}
		pets = append(pets, copyPet(p))
	}
	sort.Slice(pets, func(i, j int) bool {
		return pets[i].CreatedAt.Before(pets[j].CreatedAt)
	})
	return pets, nil
}

// UpdatePet updates a pet's descriptive fields.
func (s *Store) UpdatePet(ctx context.Context, pet *model.Pet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.pets[pet.ID]
	if !ok {
		return repository.ErrPetNotFound
	}
	existing.Name = pet.Name
	existing.Species = pet.Species
	existing.Breed = pet.Breed
	existing.Age = pet.Age
	existing.Description = pet.Description
	existing.Image = pet.Image
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

// AdoptPet claims a pet for an owner. The check-and-set under the store
// lock mirrors the conditional update the Postgres repository uses as the
// race arbiter.
func (s *Store) AdoptPet(ctx context.Context, petID, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pet, ok := s.pets[petID]
	if !ok {
		return repository.ErrPetNotFound
	}
	if pet.Adopted {
		return repository.ErrPetAlreadyAdopted
	}

	owner := ownerID
	pet.Adopted = true
	pet.OwnerID = &owner
	pet.UpdatedAt = time.Now().UTC()
	return nil
}

// CreateAdoption inserts a new adoption record.
func (s *Store) CreateAdoption(ctx context.Context, adoption *model.Adoption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *adoption
	s.adoptions[adoption.ID] = &cp
	return nil
}

// GetAdoptionByID retrieves an adoption record by ID.
func (s *Store) GetAdoptionByID(ctx context.Context, id string) (*model.Adoption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	adoption, ok := s.adoptions[id]
	if !ok {
		return nil, repository.ErrAdoptionNotFound
	}
	cp := *adoption
	return &cp, nil
}

// ListAdoptions retrieves all adoption records ordered by creation time.
func (s *Store) ListAdoptions(ctx context.Context) ([]*model.Adoption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectAdoptions(func(*model.Adoption) bool { return true }), nil
}

// ListAdoptionsByOwner retrieves adoption records owned by the given user.
func (s *Store) ListAdoptionsByOwner(ctx context.Context, ownerID string) ([]*model.Adoption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectAdoptions(func(a *model.Adoption) bool { return a.OwnerID == ownerID }), nil
}

// UpdateAdoptionStatus sets the status of a pending adoption record.
func (s *Store) UpdateAdoptionStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	adoption, ok := s.adoptions[id]
	if !ok {
		return repository.ErrAdoptionNotFound
	}
	if model.IsTerminalStatus(adoption.Status) {
		return repository.ErrAdoptionResolved
	}
	adoption.Status = status
	return nil
}

// BulkInsertAuditEvents appends audit events.
func (s *Store) BulkInsertAuditEvents(ctx context.Context, events []*model.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range events {
		cp := *e
		s.audit = append(s.audit, &cp)
	}
	return nil
}

func (s *Store) collectAdoptions(match func(*model.Adoption) bool) []*model.Adoption {
	adoptions := make([]*model.Adoption, 0)
	for _, a := range s.adoptions {
		if match(a) {
			cp := *a
			adoptions = append(adoptions, &cp)
		}
	}
	sort.Slice(adoptions, func(i, j int) bool {
		return adoptions[i].CreatedAt.Before(adoptions[j].CreatedAt)
	})
	return adoptions
}

func copyUser(u *model.User) *model.User {
	cp := *u
	cp.Pets = slices.Clone(u.Pets)
	cp.Documents = slices.Clone(u.Documents)
	return &cp
}

func copyPet(p *model.Pet) *model.Pet {
	cp := *p
	if p.OwnerID != nil {
		owner := *p.OwnerID
		cp.OwnerID = &owner
	}
	return &cp
}
