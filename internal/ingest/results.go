package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/Marco204391/fanta-motogp-sub001/internal/client"
	"github.com/Marco204391/fanta-motogp-sub001/internal/metrics"
	"github.com/Marco204391/fanta-motogp-sub001/internal/models"
	"github.com/Marco204391/fanta-motogp-sub001/internal/repository"
	"github.com/Marco204391/fanta-motogp-sub001/internal/scoring"
	"github.com/Marco204391/fanta-motogp-sub001/internal/syncerr"

	"github.com/rs/zerolog/log"
)

// ResultSyncer pulls session classifications for one race across all
// three classes, persists them, and triggers scoring.
type ResultSyncer struct {
	client     *client.Client
	db         *repository.Database
	categories *CategoryTable
	scoring    *scoring.Engine
}

// ResultSyncReport summarizes one race's result sync.
type ResultSyncReport struct {
	RaceID         int                   `json:"race_id"`
	RaceName       string                `json:"race_name"`
	Synced         int                   `json:"synced"`
	Skipped        int                   `json:"skipped"`
	Failures       []syncerr.ItemFailure `json:"failures,omitempty"`
	FirstIngestion bool                  `json:"first_ingestion"`
}

// Summary renders the report as a single log-friendly line.
func (r *ResultSyncReport) Summary() string {
	return fmt.Sprintf("%s: %d results synced, %d skipped, %d items failed",
		r.RaceName, r.Synced, r.Skipped, len(r.Failures))
}

func NewResultSyncer(c *client.Client, db *repository.Database, categories *CategoryTable, engine *scoring.Engine) *ResultSyncer {
	return &ResultSyncer{client: c, db: db, categories: categories, scoring: engine}
}

// Sync ingests classifications for every class of the race, main session
// always and sprint when the race has one, then recomputes team scores
// from whatever is persisted. Each class is processed independently: one
// class failing upstream never blocks the others, and the failures come
// back as a PartialFailure alongside the report.
func (s *ResultSyncer) Sync(ctx context.Context, raceID int) (*ResultSyncReport, error) {
	race, err := s.db.Races.GetByID(ctx, raceID)
	if err != nil {
		return nil, err
	}

	if race.ExternalID == "" {
		return nil, fmt.Errorf("%w: race %q has no external event linkage", syncerr.ErrInvalidState, race.Name)
	}

	hadResults, err := s.db.Results.HasResults(ctx, race.ID, models.SessionMain)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing results: %w", err)
	}

	report := &ResultSyncReport{RaceID: race.ID, RaceName: race.Name}

	for _, entry := range s.categories.Entries() {
		s.syncCategory(ctx, race, entry, report)
	}

	if err := s.scoring.ScoreRace(ctx, race.ID, models.SessionMain); err != nil {
		return report, fmt.Errorf("failed to score main session: %w", err)
	}
	if race.HasSprint() {
		if err := s.scoring.ScoreRace(ctx, race.ID, models.SessionSprint); err != nil {
			return report, fmt.Errorf("failed to score sprint session: %w", err)
		}
	}

	if !hadResults {
		hasResults, err := s.db.Results.HasResults(ctx, race.ID, models.SessionMain)
		if err == nil && hasResults {
			report.FirstIngestion = true
		}
	}

	log.Info().
		Int("race_id", race.ID).
		Str("race", race.Name).
		Int("synced", report.Synced).
		Int("skipped", report.Skipped).
		Int("failed_items", len(report.Failures)).
		Msg("Result sync complete")

	if len(report.Failures) > 0 {
		return report, &syncerr.PartialFailure{Op: "race-results", Items: report.Failures}
	}

	return report, nil
}

// syncCategory ingests one class's sessions for the race. The sessions
// are independent: an unpublished main classification must not block
// the sprint, which runs a day earlier. The sprint exists only in the
// top class.
func (s *ResultSyncer) syncCategory(ctx context.Context, race *models.Race, entry CategoryEntry, report *ResultSyncReport) {
	sessions, err := s.client.FetchSessions(ctx, race.ExternalID, entry.ExternalID)
	if err != nil {
		s.recordFailure(report, entry.Category, "", fmt.Errorf("failed to fetch sessions: %w", err))
		return
	}

	mainSessionID := findSessionID(sessions, models.SessionCodeRace)
	if mainSessionID == "" {
		s.recordFailure(report, entry.Category, models.SessionMain,
			fmt.Errorf("%w: no race session listed upstream", syncerr.ErrNotFound))
	} else if err := s.ingestClassification(ctx, race, entry.Category, mainSessionID, models.SessionMain, report); err != nil {
		s.recordFailure(report, entry.Category, models.SessionMain, err)
	}

	if entry.Category != models.CategoryMotoGP || !race.HasSprint() {
		return
	}

	sprintSessionID := findSessionID(sessions, models.SessionCodeSprint)
	if sprintSessionID == "" {
		s.recordFailure(report, entry.Category, models.SessionSprint,
			fmt.Errorf("%w: race has a sprint but upstream lists no sprint session", syncerr.ErrNotFound))
	} else if err := s.ingestClassification(ctx, race, entry.Category, sprintSessionID, models.SessionSprint, report); err != nil {
		s.recordFailure(report, entry.Category, models.SessionSprint, err)
	}
}

func (s *ResultSyncer) recordFailure(report *ResultSyncReport, category models.Category, session models.Session, err error) {
	item := string(category)
	if session != "" {
		item = fmt.Sprintf("%s/%s", category, session)
	}

	log.Warn().
		Err(err).
		Int("race_id", report.RaceID).
		Str("item", item).
		Msg("Result sync item failed, continuing")

	report.Failures = append(report.Failures, syncerr.ItemFailure{
		Item:   item,
		Reason: err.Error(),
	})
}

func (s *ResultSyncer) ingestClassification(ctx context.Context, race *models.Race, category models.Category, sessionID string, session models.Session, report *ResultSyncReport) error {
	classification, err := s.client.FetchClassification(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to fetch classification: %w", err)
	}

	for i := range classification.Classification {
		row := &classification.Classification[i]

		rider, ok := s.resolveRider(ctx, row.Rider, category)
		if !ok {
			report.Skipped++
			continue
		}

		result := row.ToRaceResult(race.ID, rider.ID, session)
		if err := s.db.Results.Upsert(ctx, result); err != nil {
			log.Warn().
				Err(err).
				Int("race_id", race.ID).
				Int("rider_id", rider.ID).
				Str("session", string(session)).
				Msg("Failed to upsert result, continuing")
			report.Skipped++
			continue
		}

		metrics.ResultsUpserted.Inc()
		report.Synced++
	}

	return nil
}

// resolveRider maps a classification row to a known rider, by external id
// first and by name within the same class as a fallback. Rows for riders
// the directory has never seen are skipped: a phantom rider would poison
// scoring for every team.
func (s *ResultSyncer) resolveRider(ctx context.Context, input *models.ClassificationRiderInput, category models.Category) (*models.Rider, bool) {
	if input == nil {
		log.Warn().Msg("Classification row has no rider block, skipping")
		return nil, false
	}

	if input.ID != nil {
		rider, err := s.db.Riders.GetByExternalID(ctx, *input.ID)
		if err == nil {
			return rider, true
		}
		if !errors.Is(err, syncerr.ErrNotFound) {
			log.Warn().Err(err).Str("external_id", *input.ID).Msg("Rider lookup failed, skipping row")
			return nil, false
		}
	}

	if input.FullName != nil && *input.FullName != "" {
		rider, err := s.db.Riders.FindByNameInCategory(ctx, *input.FullName, category)
		if err == nil {
			log.Debug().
				Str("name", *input.FullName).
				Int("rider_id", rider.ID).
				Msg("Resolved rider by name fallback")
			return rider, true
		}
		if !errors.Is(err, syncerr.ErrNotFound) {
			log.Warn().Err(err).Str("name", *input.FullName).Msg("Rider name lookup failed, skipping row")
			return nil, false
		}
	}

	name := ""
	if input.FullName != nil {
		name = *input.FullName
	}
	log.Warn().
		Str("name", name).
		Str("category", string(category)).
		Msg("Classification row references unknown rider, skipping")
	return nil, false
}

func findSessionID(sessions []models.SessionInput, code string) string {
	for i := range sessions {
		if sessions[i].IsType(code) {
			return sessions[i].ID
		}
	}
	return ""
}
