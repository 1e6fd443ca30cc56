package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/adoptly/adoptly/internal/model"
)

// Common errors for pet repository operations.
var (
	ErrPetNotFound       = errors.New("pet not found")
	ErrPetAlreadyAdopted = errors.New("pet is already adopted")
)

const petColumns = `id, name, species, breed, age, description, image, adopted, owner_id, created_at, updated_at`

// PetFilter defines filters for listing pets.
type PetFilter struct {
	// Adopted filters on the adopted flag when non-nil.
	Adopted *bool
	// Species filters on species when non-empty.
	Species string
}

// CreatePet inserts a new pet into the database.
func (r *Repository) CreatePet(ctx context.Context, pet *model.Pet) error {
	query := `
		INSERT INTO pets (id, name, species, breed, age, description, image, adopted, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		pet.ID,
		pet.Name,
		pet.Species,
		pet.Breed,
		pet.Age,
		pet.Description,
		pet.Image,
		pet.Adopted,
		pet.OwnerID,
		pet.CreatedAt,
		pet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create pet: %w", err)
	}

	return nil
}

// GetPetByID retrieves a pet by its ID.
func (r *Repository) GetPetByID(ctx context.Context, id string) (*model.Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pets WHERE id = $1`

	pet, err := scanPet(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPetNotFound
		}
		return nil, fmt.Errorf("failed to get pet by ID: %w", err)
	}

	return pet, nil
}

// ListPets retrieves pets matching the filter, ordered by creation time.
func (r *Repository) ListPets(ctx context.Context, filter PetFilter) ([]*model.Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pets`
	args := []any{}
	argPos := 1

	where := ""
	if filter.Adopted != nil {
		where = fmt.Sprintf(" WHERE adopted = $%d", argPos)
		args = append(args, *filter.Adopted)
		argPos++
	}
	if filter.Species != "" {
		if where == "" {
			where = fmt.Sprintf(" WHERE species = $%d", argPos)
		} else {
			where += fmt.Sprintf(" AND species = $%d", argPos)
		}
		args = append(args, filter.Species)
	}

	rows, err := r.pool.Query(ctx, query+where+` ORDER BY created_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pets: %w", err)
	}
	defer rows.Close()

	pets := make([]*model.Pet, 0)
	for rows.Next() {
		pet, err := scanPet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pet: %w", err)
		}
		pets = append(pets, pet)
	}

	return pets, rows.Err()
}

// UpdatePet updates a pet's descriptive fields. Ownership changes go
// through AdoptPet only.
func (r *Repository) UpdatePet(ctx context.Context, pet *model.Pet) error {
	query := `
		UPDATE pets
		SET name = $2, species = $3, breed = $4, age = $5, description = $6, image = $7, updated_at = $8
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		pet.ID,
		pet.Name,
		pet.Species,
		pet.Breed,
		pet.Age,
		pet.Description,
		pet.Image,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update pet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPetNotFound
	}

	return nil
}

// AdoptPet atomically claims a pet for an owner. The conditional update on
// the adopted flag is the sole arbiter when two adoption requests race: the
// update succeeds only if the flag was still false. Returns
// ErrPetAlreadyAdopted for the loser and ErrPetNotFound if the pet does not
// exist.
func (r *Repository) AdoptPet(ctx context.Context, petID, ownerID string) error {
	query := `
		UPDATE pets
		SET adopted = TRUE, owner_id = $2, updated_at = $3
		WHERE id = $1 AND adopted = FALSE
	`

	tag, err := r.pool.Exec(ctx, query, petID, ownerID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to adopt pet: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Either the pet does not exist or it lost the race.
		if _, err := r.GetPetByID(ctx, petID); err != nil {
			return err
		}
		return ErrPetAlreadyAdopted
	}

	return nil
}

// scanPet scans a single pet row.
func scanPet(row pgx.Row) (*model.Pet, error) {
	var pet model.Pet
	err := row.Scan(
		&pet.ID,
		&pet.Name,
		&pet.Species,
		&pet.Breed,
		&pet.Age,
		&pet.Description,
		&pet.Image,
		&pet.Adopted,
		&pet.OwnerID,
		&pet.CreatedAt,
		&pet.UpdatedAt,
	)
	return &pet, err
}
