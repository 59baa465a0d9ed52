package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Marco204391/fanta-motogp-sub001/internal/models"
	"github.com/Marco204391/fanta-motogp-sub001/internal/syncerr"

	"github.com/jackc/pgx/v5"
)

// LineupRepository reads team lineups. Lineups are owned by the team
// service; the sync engine treats them as read-only snapshots, so this
// repository only writes in support of tests and backfills.
type LineupRepository struct {
	db *Database
}

// Create inserts a lineup and its picks in one transaction
func (r *LineupRepository) Create(ctx context.Context, lineup *models.RaceLineup) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO race_lineups (team_id, race_id) VALUES ($1, $2) RETURNING id, created_at`,
		lineup.TeamID, lineup.RaceID,
	).Scan(&lineup.ID, &lineup.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create lineup: %w", err)
	}

	for i := range lineup.Riders {
		pick := &lineup.Riders[i]
		pick.LineupID = lineup.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO lineup_riders (lineup_id, rider_id, predicted_position) VALUES ($1, $2, $3) RETURNING id`,
			pick.LineupID, pick.RiderID, pick.PredictedPosition,
		).Scan(&pick.ID)
		if err != nil {
			return fmt.Errorf("failed to create lineup rider: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit lineup: %w", err)
	}

	return nil
}

// GetByTeamRace retrieves the single lineup of one team for one race
func (r *LineupRepository) GetByTeamRace(ctx context.Context, teamID, raceID int) (*models.RaceLineup, error) {
	query := `SELECT id, team_id, race_id, created_at FROM race_lineups WHERE team_id = $1 AND race_id = $2`

	var lineup models.RaceLineup
	err := r.db.Pool.QueryRow(ctx, query, teamID, raceID).Scan(
		&lineup.ID, &lineup.TeamID, &lineup.RaceID, &lineup.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: lineup team_id=%d race_id=%d", syncerr.ErrNotFound, teamID, raceID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lineup: %w", err)
	}

	riders, err := r.loadPicks(ctx, []int{lineup.ID})
	if err != nil {
		return nil, err
	}
	lineup.Riders = riders[lineup.ID]

	return &lineup, nil
}

// ListByRace retrieves every submitted lineup for a race, with picks
// populated. Picks are left-joined with riders so a pick referencing an
// unknown rider surfaces with an empty rider name rather than vanishing.
func (r *LineupRepository) ListByRace(ctx context.Context, raceID int) ([]*models.RaceLineup, error) {
	query := `SELECT id, team_id, race_id, created_at FROM race_lineups WHERE race_id = $1 ORDER BY team_id`

	rows, err := r.db.Pool.Query(ctx, query, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lineups: %w", err)
	}
	defer rows.Close()

	var lineups []*models.RaceLineup
	var ids []int
	for rows.Next() {
		var lineup models.RaceLineup
		err := rows.Scan(&lineup.ID, &lineup.TeamID, &lineup.RaceID, &lineup.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lineup: %w", err)
		}
		lineups = append(lineups, &lineup)
		ids = append(ids, lineup.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lineups: %w", err)
	}

	if len(ids) == 0 {
		return lineups, nil
	}

	picks, err := r.loadPicks(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, lineup := range lineups {
		lineup.Riders = picks[lineup.ID]
	}

	return lineups, nil
}

func (r *LineupRepository) loadPicks(ctx context.Context, lineupIDs []int) (map[int][]models.LineupRider, error) {
	query := `
		SELECT lr.id, lr.lineup_id, lr.rider_id, lr.predicted_position,
		       COALESCE(rd.name, ''), COALESCE(rd.category, '')
		FROM lineup_riders lr
		LEFT JOIN riders rd ON rd.id = lr.rider_id
		WHERE lr.lineup_id = ANY($1)
		ORDER BY lr.lineup_id, lr.id
	`

	rows, err := r.db.Pool.Query(ctx, query, lineupIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load lineup riders: %w", err)
	}
	defer rows.Close()

	picks := make(map[int][]models.LineupRider, len(lineupIDs))
	for rows.Next() {
		var pick models.LineupRider
		err := rows.Scan(
			&pick.ID, &pick.LineupID, &pick.RiderID, &pick.PredictedPosition,
			&pick.RiderName, &pick.Category,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lineup rider: %w", err)
		}
		picks[pick.LineupID] = append(picks[pick.LineupID], pick)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lineup riders: %w", err)
	}

	return picks, nil
}
