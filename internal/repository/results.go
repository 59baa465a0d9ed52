package repository

import (
	"context"
	"fmt"

	"github.com/Marco204391/fanta-motogp-sub001/internal/models"

	"github.com/rs/zerolog/log"
)

// ResultRepository handles race result database operations
type ResultRepository struct {
	db *Database
}

// Upsert inserts or updates a result keyed by (race, rider, session).
// Re-ingesting a session overwrites stale position and status without
// creating duplicates.
func (r *ResultRepository) Upsert(ctx context.Context, result *models.RaceResult) error {
	query := `
		INSERT INTO race_results (race_id, rider_id, session, position, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (race_id, rider_id, session) DO UPDATE SET
			position = EXCLUDED.position,
			status = EXCLUDED.status,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		result.RaceID, result.RiderID, result.Session, result.Position, result.Status,
	).Scan(&result.ID, &result.CreatedAt, &result.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert race result: %w", err)
	}

	log.Debug().
		Int("race_id", result.RaceID).
		Int("rider_id", result.RiderID).
		Str("session", string(result.Session)).
		Str("status", string(result.Status)).
		Msg("Race result upserted")

	return nil
}

// ListByRaceSession retrieves the results of one session of a race
func (r *ResultRepository) ListByRaceSession(ctx context.Context, raceID int, session models.Session) ([]*models.RaceResult, error) {
	query := `
		SELECT id, race_id, rider_id, session, position, status, created_at, updated_at
		FROM race_results
		WHERE race_id = $1 AND session = $2
		ORDER BY position NULLS LAST, rider_id
	`

	rows, err := r.db.Pool.Query(ctx, query, raceID, session)
	if err != nil {
		return nil, fmt.Errorf("failed to list race results: %w", err)
	}
	defer rows.Close()

	var results []*models.RaceResult
	for rows.Next() {
		var result models.RaceResult
		err := rows.Scan(
			&result.ID, &result.RaceID, &result.RiderID, &result.Session,
			&result.Position, &result.Status, &result.CreatedAt, &result.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan race result: %w", err)
		}
		results = append(results, &result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating race results: %w", err)
	}

	return results, nil
}

// ListDetailedByRaceSession retrieves one session's results joined with the
// rider's name and category, in the shape the scoring engine consumes.
func (r *ResultRepository) ListDetailedByRaceSession(ctx context.Context, raceID int, session models.Session) ([]models.SessionResult, error) {
	query := `
		SELECT rr.rider_id, rd.name, rd.category, rr.position, rr.status
		FROM race_results rr
		JOIN riders rd ON rd.id = rr.rider_id
		WHERE rr.race_id = $1 AND rr.session = $2
		ORDER BY rr.position NULLS LAST, rr.rider_id
	`

	rows, err := r.db.Pool.Query(ctx, query, raceID, session)
	if err != nil {
		return nil, fmt.Errorf("failed to list detailed race results: %w", err)
	}
	defer rows.Close()

	var results []models.SessionResult
	for rows.Next() {
		var result models.SessionResult
		err := rows.Scan(&result.RiderID, &result.RiderName, &result.Category, &result.Position, &result.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to scan detailed race result: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating detailed race results: %w", err)
	}

	return results, nil
}

// HasResults reports whether any result rows exist for (race, session).
// The orchestrator uses this to detect first-time availability of results.
func (r *ResultRepository) HasResults(ctx context.Context, raceID int, session models.Session) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM race_results WHERE race_id = $1 AND session = $2)`

	var exists bool
	err := r.db.Pool.QueryRow(ctx, query, raceID, session).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check race results existence: %w", err)
	}

	return exists, nil
}

// CountByRace returns the number of result rows for one race across sessions
func (r *ResultRepository) CountByRace(ctx context.Context, raceID int) (int, error) {
	query := `SELECT COUNT(*) FROM race_results WHERE race_id = $1`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, raceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count race results: %w", err)
	}

	return count, nil
}
