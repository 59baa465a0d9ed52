package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Marco204391/fanta-motogp-sub001/internal/models"
	"github.com/Marco204391/fanta-motogp-sub001/internal/syncerr"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// RiderRepository handles rider database operations
type RiderRepository struct {
	db *Database
}

// Upsert inserts or updates a rider keyed by its external id
func (r *RiderRepository) Upsert(ctx context.Context, rider *models.Rider) error {
	query := `
		INSERT INTO riders (
			external_id, name, number, category, value, active, classification
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (external_id) DO UPDATE SET
			name = EXCLUDED.name,
			number = EXCLUDED.number,
			category = EXCLUDED.category,
			value = EXCLUDED.value,
			active = EXCLUDED.active,
			classification = EXCLUDED.classification,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		rider.ExternalID, rider.Name, rider.Number, rider.Category,
		rider.Value, rider.Active, rider.Classification,
	).Scan(&rider.ID, &rider.CreatedAt, &rider.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert rider: %w", err)
	}

	log.Debug().
		Int("id", rider.ID).
		Str("external_id", rider.ExternalID).
		Str("name", rider.Name).
		Msg("Rider upserted")

	return nil
}

// GetByID retrieves a rider by its database ID
func (r *RiderRepository) GetByID(ctx context.Context, id int) (*models.Rider, error) {
	query := `
		SELECT id, external_id, name, number, category, value, active, classification, created_at, updated_at
		FROM riders
		WHERE id = $1
	`

	var rider models.Rider
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&rider.ID, &rider.ExternalID, &rider.Name, &rider.Number, &rider.Category,
		&rider.Value, &rider.Active, &rider.Classification, &rider.CreatedAt, &rider.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: rider id=%d", syncerr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rider: %w", err)
	}

	return &rider, nil
}

// GetByExternalID retrieves a rider by its upstream id
func (r *RiderRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Rider, error) {
	query := `
		SELECT id, external_id, name, number, category, value, active, classification, created_at, updated_at
		FROM riders
		WHERE external_id = $1
	`

	var rider models.Rider
	err := r.db.Pool.QueryRow(ctx, query, externalID).Scan(
		&rider.ID, &rider.ExternalID, &rider.Name, &rider.Number, &rider.Category,
		&rider.Value, &rider.Active, &rider.Classification, &rider.CreatedAt, &rider.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: rider external_id=%s", syncerr.ErrNotFound, externalID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rider: %w", err)
	}

	return &rider, nil
}

// FindByNameInCategory finds a rider by case-insensitive substring match on
// the name, scoped to one category. This is the documented fallback when a
// classification entry carries no external rider id. Ordered by number so
// an ambiguous match resolves deterministically.
func (r *RiderRepository) FindByNameInCategory(ctx context.Context, name string, category models.Category) (*models.Rider, error) {
	query := `
		SELECT id, external_id, name, number, category, value, active, classification, created_at, updated_at
		FROM riders
		WHERE category = $1 AND name ILIKE '%' || $2 || '%'
		ORDER BY number NULLS LAST, id
		LIMIT 1
	`

	var rider models.Rider
	err := r.db.Pool.QueryRow(ctx, query, category, name).Scan(
		&rider.ID, &rider.ExternalID, &rider.Name, &rider.Number, &rider.Category,
		&rider.Value, &rider.Active, &rider.Classification, &rider.CreatedAt, &rider.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: rider name=%s category=%s", syncerr.ErrNotFound, name, category)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find rider by name: %w", err)
	}

	return &rider, nil
}

// ListActive retrieves all active riders
func (r *RiderRepository) ListActive(ctx context.Context) ([]*models.Rider, error) {
	query := `
		SELECT id, external_id, name, number, category, value, active, classification, created_at, updated_at
		FROM riders
		WHERE active = TRUE
		ORDER BY category, number NULLS LAST
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active riders: %w", err)
	}
	defer rows.Close()

	var riders []*models.Rider
	for rows.Next() {
		var rider models.Rider
		err := rows.Scan(
			&rider.ID, &rider.ExternalID, &rider.Name, &rider.Number, &rider.Category,
			&rider.Value, &rider.Active, &rider.Classification, &rider.CreatedAt, &rider.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rider: %w", err)
		}
		riders = append(riders, &rider)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating riders: %w", err)
	}

	return riders, nil
}

// Deactivate marks a rider inactive. Riders are never deleted.
func (r *RiderRepository) Deactivate(ctx context.Context, id int) error {
	query := `
		UPDATE riders
		SET active = FALSE, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate rider: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: rider id=%d", syncerr.ErrNotFound, id)
	}

	return nil
}

// Count returns the total number of riders
func (r *RiderRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM riders`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count riders: %w", err)
	}

	return count, nil
}
