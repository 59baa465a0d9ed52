package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Marco204391/fanta-motogp-sub001/internal/models"
	"github.com/Marco204391/fanta-motogp-sub001/internal/syncerr"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// ScoreRepository handles team score database operations
type ScoreRepository struct {
	db *Database
}

// Upsert inserts or replaces a team score keyed by (team, race, session).
// The breakdown is stored as JSONB and fully replaced on each recomputation.
func (r *ScoreRepository) Upsert(ctx context.Context, score *models.TeamScore) error {
	breakdown, err := json.Marshal(score.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal score breakdown: %w", err)
	}

	query := `
		INSERT INTO team_scores (team_id, race_id, session, total_points, breakdown)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (team_id, race_id, session) DO UPDATE SET
			total_points = EXCLUDED.total_points,
			breakdown = EXCLUDED.breakdown,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err = r.db.Pool.QueryRow(
		ctx, query,
		score.TeamID, score.RaceID, score.Session, score.TotalPoints, breakdown,
	).Scan(&score.ID, &score.CreatedAt, &score.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert team score: %w", err)
	}

	log.Debug().
		Int("team_id", score.TeamID).
		Int("race_id", score.RaceID).
		Str("session", string(score.Session)).
		Int("total", score.TotalPoints).
		Msg("Team score upserted")

	return nil
}

// GetByKey retrieves a team score by its (team, race, session) key
func (r *ScoreRepository) GetByKey(ctx context.Context, teamID, raceID int, session models.Session) (*models.TeamScore, error) {
	query := `
		SELECT id, team_id, race_id, session, total_points, breakdown, created_at, updated_at
		FROM team_scores
		WHERE team_id = $1 AND race_id = $2 AND session = $3
	`

	score, err := scanScore(r.db.Pool.QueryRow(ctx, query, teamID, raceID, session))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: team score team_id=%d race_id=%d session=%s", syncerr.ErrNotFound, teamID, raceID, session)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team score: %w", err)
	}

	return score, nil
}

// ListByRaceSession retrieves the scores of one session in standings
// order: ascending by total points, lower is better.
func (r *ScoreRepository) ListByRaceSession(ctx context.Context, raceID int, session models.Session) ([]*models.TeamScore, error) {
	query := `
		SELECT id, team_id, race_id, session, total_points, breakdown, created_at, updated_at
		FROM team_scores
		WHERE race_id = $1 AND session = $2
		ORDER BY total_points ASC, team_id
	`

	rows, err := r.db.Pool.Query(ctx, query, raceID, session)
	if err != nil {
		return nil, fmt.Errorf("failed to list team scores: %w", err)
	}
	defer rows.Close()

	var scores []*models.TeamScore
	for rows.Next() {
		score, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team score: %w", err)
		}
		scores = append(scores, score)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team scores: %w", err)
	}

	return scores, nil
}

func scanScore(row pgx.Row) (*models.TeamScore, error) {
	var score models.TeamScore
	var breakdown []byte
	err := row.Scan(
		&score.ID, &score.TeamID, &score.RaceID, &score.Session,
		&score.TotalPoints, &breakdown, &score.CreatedAt, &score.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &score.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to unmarshal score breakdown: %w", err)
		}
	}

	return &score, nil
}
