// Package service provides business logic for the application.
package service

import (
	"context"
	"time"

	"github.com/adoptly/adoptly/internal/model"
	"github.com/adoptly/adoptly/internal/repository"
)

// UserStore is the persistence surface for user records.
// Implemented by the Postgres repository and the in-memory store.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUserProfile(ctx context.Context, user *model.User) error
	UpdateLastConnection(ctx context.Context, id string, at time.Time) error
	AppendUserPet(ctx context.Context, userID, petID string) error
	AppendUserDocuments(ctx context.Context, userID string, docs []model.Document) error
	DeleteUser(ctx context.Context, id string) error
}

// PetStore is the persistence surface for pet records.
type PetStore interface {
	CreatePet(ctx context.Context, pet *model.Pet) error
	GetPetByID(ctx context.Context, id string) (*model.Pet, error)
	ListPets(ctx context.Context, filter repository.PetFilter) ([]*model.Pet, error)
	UpdatePet(ctx context.Context, pet *model.Pet) error
	AdoptPet(ctx context.Context, petID, ownerID string) error
}

// AdoptionStore is the persistence surface for adoption records.
type AdoptionStore interface {
	CreateAdoption(ctx context.Context, adoption *model.Adoption) error
	GetAdoptionByID(ctx context.Context, id string) (*model.Adoption, error)
	ListAdoptions(ctx context.Context) ([]*model.Adoption, error)
	ListAdoptionsByOwner(ctx context.Context, ownerID string) ([]*model.Adoption, error)
	UpdateAdoptionStatus(ctx context.Context, id, status string) error
}

// UserCache caches user profiles keyed by ID. A nil UserCache is valid and
// disables caching.
type UserCache interface {
	GetUser(ctx context.Context, userID string) (*model.User, error)
	SetUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, userID string) error
}

// Auditor records best-effort audit events. A nil Auditor is valid and
// disables auditing.
type Auditor interface {
	PublishAsync(event model.AuditEvent)
}
