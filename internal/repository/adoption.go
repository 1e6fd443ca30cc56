package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/adoptly/adoptly/internal/model"
)

var (
	// ErrAdoptionNotFound indicates no adoption record matches the given ID.
	ErrAdoptionNotFound = errors.New("adoption not found")

	// ErrAdoptionResolved indicates the record already left the pending
	// state and cannot transition again.
	ErrAdoptionResolved = errors.New("adoption already resolved")
)

const adoptionColumns = `id, owner_id, pet_id, status, created_at`

// CreateAdoption inserts a new adoption record.
func (r *Repository) CreateAdoption(ctx context.Context, adoption *model.Adoption) error {
	query := `
		INSERT INTO adoptions (id, owner_id, pet_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		adoption.ID,
		adoption.OwnerID,
		adoption.PetID,
		adoption.Status,
		adoption.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create adoption: %w", err)
	}

	return nil
}

// GetAdoptionByID retrieves an adoption record by its ID.
func (r *Repository) GetAdoptionByID(ctx context.Context, id string) (*model.Adoption, error) {
	query := `SELECT ` + adoptionColumns + ` FROM adoptions WHERE id = $1`

	adoption, err := scanAdoption(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdoptionNotFound
		}
		return nil, fmt.Errorf("failed to get adoption by ID: %w", err)
	}

	return adoption, nil
}

// ListAdoptions retrieves all adoption records ordered by creation time.
func (r *Repository) ListAdoptions(ctx context.Context) ([]*model.Adoption, error) {
	return r.queryAdoptions(ctx, `SELECT `+adoptionColumns+` FROM adoptions ORDER BY created_at`)
}

// ListAdoptionsByOwner retrieves adoption records owned by the given user.
func (r *Repository) ListAdoptionsByOwner(ctx context.Context, ownerID string) ([]*model.Adoption, error) {
	return r.queryAdoptions(ctx,
		`SELECT `+adoptionColumns+` FROM adoptions WHERE owner_id = $1 ORDER BY created_at`,
		ownerID,
	)
}

// UpdateAdoptionStatus sets the status of a pending adoption record. The
// pending guard is part of the UPDATE itself, so concurrent resolutions of
// the same record cannot both succeed; the loser sees ErrAdoptionResolved.
func (r *Repository) UpdateAdoptionStatus(ctx context.Context, id, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE adoptions SET status = $2 WHERE id = $1 AND status = $3`,
		id, status, model.StatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to update adoption status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM adoptions WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check adoption: %w", err)
		}
		if exists {
			return ErrAdoptionResolved
		}
		return ErrAdoptionNotFound
	}

	return nil
}

func (r *Repository) queryAdoptions(ctx context.Context, query string, args ...any) ([]*model.Adoption, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list adoptions: %w", err)
	}
	defer rows.Close()

	adoptions := make([]*model.Adoption, 0)
	for rows.Next() {
		adoption, err := scanAdoption(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan adoption: %w", err)
		}
		adoptions = append(adoptions, adoption)
	}

	return adoptions, rows.Err()
}

// scanAdoption scans a single adoption row.
func scanAdoption(row pgx.Row) (*model.Adoption, error) {
	var adoption model.Adoption
	err := row.Scan(
		&adoption.ID,
		&adoption.OwnerID,
		&adoption.PetID,
		&adoption.Status,
		&adoption.CreatedAt,
	)
	return &adoption, err
}
