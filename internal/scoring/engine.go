package scoring

import (
	"context"
	"fmt"

	"github.com/Marco204391/fanta-motogp-sub001/internal/metrics"
	"github.com/Marco204391/fanta-motogp-sub001/internal/models"
	"github.com/Marco204391/fanta-motogp-sub001/internal/repository"

	"github.com/rs/zerolog/log"
)

// DefaultMaxPosition is the base-points fallback applied when a category
// has no result with a position at all.
const DefaultMaxPosition = 25

// Engine computes team scores from persisted race results and submitted
// lineups. Lower totals are better; recomputation is a full replace of the
// (team, race, session) row, so repeated runs converge.
type Engine struct {
	db *repository.Database
}

// NewEngine creates a scoring engine
func NewEngine(db *repository.Database) *Engine {
	return &Engine{db: db}
}

// ScoreRace computes and upserts a TeamScore for every lineup submitted
// for the race, from the persisted results of one session. A race or
// session with no results is not an error: no score is better than a
// wrong score.
func (e *Engine) ScoreRace(ctx context.Context, raceID int, session models.Session) error {
	results, err := e.db.Results.ListDetailedByRaceSession(ctx, raceID, session)
	if err != nil {
		return fmt.Errorf("failed to load results for scoring: %w", err)
	}

	if len(results) == 0 {
		log.Info().
			Int("race_id", raceID).
			Str("session", string(session)).
			Msg("No results for session, skipping scoring")
		return nil
	}

	lineups, err := e.db.Lineups.ListByRace(ctx, raceID)
	if err != nil {
		return fmt.Errorf("failed to load lineups for scoring: %w", err)
	}

	if len(lineups) == 0 {
		log.Debug().
			Int("race_id", raceID).
			Str("session", string(session)).
			Msg("No lineups submitted, nothing to score")
		return nil
	}

	maxPositions := MaxPositionByCategory(results)
	byRider := ResultsByRider(results)

	scored := 0
	for _, lineup := range lineups {
		total, breakdown := ScoreLineup(lineup.Riders, byRider, maxPositions)

		score := &models.TeamScore{
			TeamID:      lineup.TeamID,
			RaceID:      raceID,
			Session:     session,
			TotalPoints: total,
			Breakdown:   breakdown,
		}

		if err := e.db.Scores.Upsert(ctx, score); err != nil {
			return fmt.Errorf("failed to upsert score for team %d: %w", lineup.TeamID, err)
		}

		metrics.ScoresComputed.Inc()
		scored++
	}

	log.Info().
		Int("race_id", raceID).
		Str("session", string(session)).
		Int("teams", scored).
		Msg("Session scored")

	return nil
}

// MaxPositionByCategory computes, per category, the highest non-null
// finishing position among the session's results. Categories where no
// result carries a position are absent from the map.
func MaxPositionByCategory(results []models.SessionResult) map[models.Category]int {
	maxPositions := make(map[models.Category]int)
	for _, res := range results {
		if !res.Position.Valid {
			continue
		}
		pos := int(res.Position.Int32)
		if pos > maxPositions[res.Category] {
			maxPositions[res.Category] = pos
		}
	}
	return maxPositions
}

// ResultsByRider indexes a session's results by rider id
func ResultsByRider(results []models.SessionResult) map[int]models.SessionResult {
	byRider := make(map[int]models.SessionResult, len(results))
	for _, res := range results {
		byRider[res.RiderID] = res
	}
	return byRider
}

// ScoreLineup scores one lineup's picks against a session's results.
// Picks whose rider is unknown to the system are skipped with a warning
// so the remaining picks still score.
func ScoreLineup(picks []models.LineupRider, results map[int]models.SessionResult, maxPositions map[models.Category]int) (int, []models.ScoreBreakdownEntry) {
	total := 0
	breakdown := make([]models.ScoreBreakdownEntry, 0, len(picks))

	for _, pick := range picks {
		if pick.RiderName == "" {
			log.Warn().
				Int("rider_id", pick.RiderID).
				Int("lineup_id", pick.LineupID).
				Msg("Lineup pick references unknown rider, skipping")
			continue
		}

		entry := scorePick(pick, results, maxPositions)
		total += entry.Points
		breakdown = append(breakdown, entry)
	}

	return total, breakdown
}

func scorePick(pick models.LineupRider, results map[int]models.SessionResult, maxPositions map[models.Category]int) models.ScoreBreakdownEntry {
	entry := models.ScoreBreakdownEntry{
		RiderID:   pick.RiderID,
		RiderName: pick.RiderName,
		Predicted: pick.PredictedPosition,
	}

	res, took := results[pick.RiderID]

	switch {
	case !took:
		// The rider did not take part in this session at all, e.g. a
		// rider who skipped the sprint.
		entry.BasePoints = absencePenalty(pick.Category, maxPositions)
	case res.Status == models.StatusDNS:
		entry.Status = res.Status
		entry.BasePoints = absencePenalty(pick.Category, maxPositions)
	default:
		entry.Status = res.Status
		if res.Position.Valid {
			pos := int(res.Position.Int32)
			entry.ActualPosition = &pos
			entry.BasePoints = pos
		} else {
			entry.BasePoints = absencePenalty(pick.Category, maxPositions)
		}
	}

	entry.Delta = abs(pick.PredictedPosition - entry.BasePoints)
	entry.Points = entry.BasePoints + entry.Delta

	return entry
}

// absencePenalty is the base-points penalty for a rider with no usable
// position: one worse than the category's worst classified position.
func absencePenalty(category models.Category, maxPositions map[models.Category]int) int {
	if maxPos, ok := maxPositions[category]; ok {
		return maxPos + 1
	}
	return DefaultMaxPosition
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
