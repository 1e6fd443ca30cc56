package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/adoptly/adoptly/internal/metrics"
	"github.com/adoptly/adoptly/internal/model"
	"github.com/adoptly/adoptly/internal/repository"
)

// Adoption workflow errors.
var (
	ErrPetNotFound       = errors.New("pet not found")
	ErrPetAlreadyAdopted = errors.New("pet is already adopted")
	ErrAdoptionNotFound  = errors.New("adoption not found")
	ErrInvalidStatus     = errors.New("invalid adoption status")
	ErrAdoptionResolved  = errors.New("adoption already resolved")
	ErrNotAuthorized     = errors.New("not authorized")
)

// AdoptionService orchestrates the multi-entity adoption state transition.
//
// Adopting transfers ownership immediately: the pet is claimed, the owner's
// pet list grows, and an adoption record is created in one workflow call.
// The record's status (pending/approved/rejected) is an administrative
// review trail on top of that transfer, not a gate in front of it.
type AdoptionService struct {
	users     UserStore
	pets      PetStore
	adoptions AdoptionStore
	cache     UserCache
	metrics   metrics.Recorder
	audit     Auditor
}

// NewAdoptionService creates a new AdoptionService. cache and auditor may
// be nil.
func NewAdoptionService(users UserStore, pets PetStore, adoptions AdoptionStore, cache UserCache, recorder metrics.Recorder, auditor Auditor) *AdoptionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AdoptionService{
		users:     users,
		pets:      pets,
		adoptions: adoptions,
		cache:     cache,
		metrics:   recorder,
		audit:     auditor,
	}
}

// ListVisible returns the adoption records the caller may see: everything
// for admins, only the caller's own records otherwise. The result is never
// nil, even when empty.
func (s *AdoptionService) ListVisible(ctx context.Context, identity *model.Identity) ([]*model.Adoption, error) {
	var (
		adoptions []*model.Adoption
		err       error
	)

	if identity.IsAdmin() {
		adoptions, err = s.adoptions.ListAdoptions(ctx)
	} else {
		adoptions, err = s.adoptions.ListAdoptionsByOwner(ctx, identity.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("list adoptions: %w", err)
	}

	if adoptions == nil {
		adoptions = []*model.Adoption{}
	}
	return adoptions, nil
}

// Get retrieves a single adoption record.
func (s *AdoptionService) Get(ctx context.Context, id string) (*model.Adoption, error) {
	adoption, err := s.adoptions.GetAdoptionByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAdoptionNotFound) {
			return nil, ErrAdoptionNotFound
		}
		return nil, fmt.Errorf("get adoption: %w", err)
	}
	return adoption, nil
}

// Adopt transitions a pet from available to adopted on behalf of a user.
//
// Three entities change with no multi-entity transaction: the conditional
// update on the pet's adopted flag is the sole arbiter when requests race,
// so at most one caller ever gets past it. The user's pet list and the
// adoption record are written after the claim; a failure between those
// writes leaves the pet marked adopted without a matching record, which is
// non-corrupting because the adopted flag is the source of truth for
// availability.
func (s *AdoptionService) Adopt(ctx context.Context, userID, petID string) (*model.Adoption, error) {
	pet, err := s.pets.GetPetByID(ctx, petID)
	if err != nil {
		if errors.Is(err, repository.ErrPetNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, fmt.Errorf("get pet: %w", err)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if pet.Adopted {
		s.metrics.IncAdoptionConflict()
		return nil, ErrPetAlreadyAdopted
	}

	// Claim the pet. Losing the race here is the same client error as the
	// precondition check above.
	if err := s.pets.AdoptPet(ctx, petID, user.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrPetAlreadyAdopted):
			s.metrics.IncAdoptionConflict()
			return nil, ErrPetAlreadyAdopted
		case errors.Is(err, repository.ErrPetNotFound):
			return nil, ErrPetNotFound
		default:
			return nil, fmt.Errorf("adopt pet: %w", err)
		}
	}

	if err := s.users.AppendUserPet(ctx, user.ID, pet.ID); err != nil {
		return nil, fmt.Errorf("append user pet: %w", err)
	}
	s.invalidate(ctx, user.ID)

	adoption := &model.Adoption{
		ID:        ulid.Make().String(),
		OwnerID:   user.ID,
		PetID:     pet.ID,
		Status:    model.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.adoptions.CreateAdoption(ctx, adoption); err != nil {
		return nil, fmt.Errorf("create adoption: %w", err)
	}

	s.metrics.IncPetAdopted()
	s.publish(user.ID, model.AuditActionPetAdopted, pet.ID)

	return adoption, nil
}

// UpdateStatus applies an administrative status transition. The admin
// requirement is enforced by the authorization guard upstream and
// re-validated here. Approved and rejected are terminal: records in either
// state reject further transitions.
func (s *AdoptionService) UpdateStatus(ctx context.Context, id, status string, identity *model.Identity) error {
	if identity == nil || !identity.IsAdmin() {
		return ErrNotAuthorized
	}

	if !model.IsValidStatus(status) {
		return ErrInvalidStatus
	}

	// The store only transitions pending records, so racing admins cannot
	// both resolve the same one; the second sees the resolved error.
	if err := s.adoptions.UpdateAdoptionStatus(ctx, id, status); err != nil {
		switch {
		case errors.Is(err, repository.ErrAdoptionNotFound):
			return ErrAdoptionNotFound
		case errors.Is(err, repository.ErrAdoptionResolved):
			return ErrAdoptionResolved
		default:
			return fmt.Errorf("update adoption status: %w", err)
		}
	}

	s.metrics.IncStatusUpdated(status)
	s.publish(identity.ID, model.AuditActionStatusUpdated, id)

	return nil
}

func (s *AdoptionService) invalidate(ctx context.Context, userID string) {
	if s.cache != nil {
		_ = s.cache.DeleteUser(ctx, userID)
	}
}

func (s *AdoptionService) publish(actor, action, subject string) {
	if s.audit != nil {
		s.audit.PublishAsync(model.AuditEvent{
			Actor:      actor,
			Action:     action,
			Subject:    subject,
			OccurredAt: time.Now().UTC(),
		})
	}
}
