package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Marco204391/fanta-motogp-sub001/internal/models"
	"github.com/Marco204391/fanta-motogp-sub001/internal/syncerr"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// RaceRepository handles race database operations
type RaceRepository struct {
	db *Database
}

const raceColumns = `id, external_id, name, circuit, country, season, round,
       main_session_at, sprint_session_at, created_at, updated_at`

// Upsert inserts or updates a race keyed by its external event id
func (r *RaceRepository) Upsert(ctx context.Context, race *models.Race) error {
	query := `
		INSERT INTO races (
			external_id, name, circuit, country, season, round, main_session_at, sprint_session_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (external_id) DO UPDATE SET
			name = EXCLUDED.name,
			circuit = EXCLUDED.circuit,
			country = EXCLUDED.country,
			season = EXCLUDED.season,
			round = EXCLUDED.round,
			main_session_at = EXCLUDED.main_session_at,
			sprint_session_at = EXCLUDED.sprint_session_at,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		race.ExternalID, race.Name, race.Circuit, race.Country,
		race.Season, race.Round, race.MainSessionAt, race.SprintSessionAt,
	).Scan(&race.ID, &race.CreatedAt, &race.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert race: %w", err)
	}

	log.Debug().
		Int("id", race.ID).
		Str("external_id", race.ExternalID).
		Str("name", race.Name).
		Msg("Race upserted")

	return nil
}

func scanRace(row pgx.Row) (*models.Race, error) {
	var race models.Race
	err := row.Scan(
		&race.ID, &race.ExternalID, &race.Name, &race.Circuit, &race.Country,
		&race.Season, &race.Round, &race.MainSessionAt, &race.SprintSessionAt,
		&race.CreatedAt, &race.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &race, nil
}

// GetByID retrieves a race by its database ID
func (r *RaceRepository) GetByID(ctx context.Context, id int) (*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races WHERE id = $1`

	race, err := scanRace(r.db.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: race id=%d", syncerr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race: %w", err)
	}

	return race, nil
}

// GetByExternalID retrieves a race by its upstream event id
func (r *RaceRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races WHERE external_id = $1`

	race, err := scanRace(r.db.Pool.QueryRow(ctx, query, externalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: race external_id=%s", syncerr.ErrNotFound, externalID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race: %w", err)
	}

	return race, nil
}

// List retrieves all races ordered by main session time
func (r *RaceRepository) List(ctx context.Context) ([]*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races ORDER BY main_session_at`

	return r.queryRaces(ctx, query)
}

// ListBySeason retrieves the races of one season ordered by round
func (r *RaceRepository) ListBySeason(ctx context.Context, season int) ([]*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races WHERE season = $1 ORDER BY round, main_session_at`

	return r.queryRaces(ctx, query, season)
}

// ListWithMainSessionBetween retrieves races whose main session falls in
// [from, to]. The orchestrator uses this to select races worth re-syncing
// around a race weekend.
func (r *RaceRepository) ListWithMainSessionBetween(ctx context.Context, from, to time.Time) ([]*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races
		WHERE main_session_at BETWEEN $1 AND $2
		ORDER BY main_session_at`

	return r.queryRaces(ctx, query, from, to)
}

func (r *RaceRepository) queryRaces(ctx context.Context, query string, args ...interface{}) ([]*models.Race, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query races: %w", err)
	}
	defer rows.Close()

	var races []*models.Race
	for rows.Next() {
		race, err := scanRace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan race: %w", err)
		}
		races = append(races, race)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating races: %w", err)
	}

	return races, nil
}

// Count returns the total number of races
func (r *RaceRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM races`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count races: %w", err)
	}

	return count, nil
}
