package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/adoptly/adoptly/internal/model"
	"github.com/adoptly/adoptly/internal/repository"
)

// Pet service errors.
var (
	ErrInvalidSpecies = errors.New("invalid species")
	ErrInvalidAge     = errors.New("invalid age")
)

// PetService handles pet administration: seeding the shelter's roster and
// keeping descriptive fields current. Ownership changes belong to the
// adoption workflow.
type PetService struct {
	store PetStore
}

// NewPetService creates a new PetService.
func NewPetService(store PetStore) *PetService {
	return &PetService{store: store}
}

// CreatePetInput defines input for registering a pet.
type CreatePetInput struct {
	Name        string
	Species     string
	Breed       string
	Age         int
	Description string
	Image       string
}

// Create registers a new pet, available for adoption.
func (s *PetService) Create(ctx context.Context, input CreatePetInput) (*model.Pet, error) {
	if !model.IsValidSpecies(input.Species) {
		return nil, ErrInvalidSpecies
	}
	if input.Age < model.MinPetAge || input.Age > model.MaxPetAge {
		return nil, ErrInvalidAge
	}

	now := time.Now().UTC()
	pet := &model.Pet{
		ID:          ulid.Make().String(),
		Name:        input.Name,
		Species:     input.Species,
		Breed:       input.Breed,
		Age:         input.Age,
		Description: input.Description,
		Image:       input.Image,
		Adopted:     false,
		OwnerID:     nil,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreatePet(ctx, pet); err != nil {
		return nil, fmt.Errorf("create pet: %w", err)
	}

	return pet, nil
}

// Get retrieves a pet by ID.
func (s *PetService) Get(ctx context.Context, id string) (*model.Pet, error) {
	pet, err := s.store.GetPetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPetNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, fmt.Errorf("get pet: %w", err)
	}
	return pet, nil
}

// List returns pets matching the filter.
func (s *PetService) List(ctx context.Context, filter repository.PetFilter) ([]*model.Pet, error) {
	pets, err := s.store.ListPets(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}
	if pets == nil {
		pets = []*model.Pet{}
	}
	return pets, nil
}

// UpdatePetInput defines input for updating a pet's descriptive fields.
// Empty fields keep their current value; a nil Age keeps the current age.
type UpdatePetInput struct {
	Name        string
	Breed       string
	Age         *int
	Description string
	Image       string
}

// Update changes a pet's descriptive fields.
func (s *PetService) Update(ctx context.Context, id string, input UpdatePetInput) (*model.Pet, error) {
	pet, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		pet.Name = input.Name
	}
	if input.Breed != "" {
		pet.Breed = input.Breed
	}
	if input.Age != nil {
		if *input.Age < model.MinPetAge || *input.Age > model.MaxPetAge {
			return nil, ErrInvalidAge
		}
		pet.Age = *input.Age
	}
	if input.Description != "" {
		pet.Description = input.Description
	}
	if input.Image != "" {
		pet.Image = input.Image
	}

	if err := s.store.UpdatePet(ctx, pet); err != nil {
		if errors.Is(err, repository.ErrPetNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, fmt.Errorf("update pet: %w", err)
	}

	return pet, nil
}
