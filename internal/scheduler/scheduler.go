package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Marco204391/fanta-motogp-sub001/internal/cache"
	"github.com/Marco204391/fanta-motogp-sub001/internal/config"
	"github.com/Marco204391/fanta-motogp-sub001/internal/ingest"
	"github.com/Marco204391/fanta-motogp-sub001/internal/metrics"
	"github.com/Marco204391/fanta-motogp-sub001/internal/models"
	"github.com/Marco204391/fanta-motogp-sub001/internal/raceweek"
	"github.com/Marco204391/fanta-motogp-sub001/internal/repository"
	"github.com/Marco204391/fanta-motogp-sub001/internal/syncerr"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler drives the periodic sync pipelines: a nightly roster and
// calendar refresh on a cron schedule, and a result poll loop whose
// cadence tightens during race weekends.
type Scheduler struct {
	cfg      *config.Config
	db       *repository.Database
	cache    *cache.RedisCache
	riders   *ingest.RiderSyncer
	calendar *ingest.CalendarSyncer
	results  *ingest.ResultSyncer
	cron     *cron.Cron
	stopChan chan struct{}
}

func New(cfg *config.Config, db *repository.Database, redis *cache.RedisCache, riders *ingest.RiderSyncer, calendar *ingest.CalendarSyncer, results *ingest.ResultSyncer) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		db:       db,
		cache:    redis,
		riders:   riders,
		calendar: calendar,
		results:  results,
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}
}

// Start registers the nightly refresh and launches the result poll loop.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.cfg.NightlyRefreshCron, func() {
		s.nightlyRefresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to register nightly refresh: %w", err)
	}

	s.cron.Start()
	go s.pollLoop(ctx)

	log.Info().
		Str("nightly_cron", s.cfg.NightlyRefreshCron).
		Dur("poll_active", s.cfg.ResultPollActiveInterval).
		Dur("poll_idle", s.cfg.ResultPollIdleInterval).
		Msg("Scheduler started")

	return nil
}

// Stop halts the cron entries and the poll loop.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) nightlyRefresh(ctx context.Context) {
	log.Info().Msg("Running nightly refresh")

	if err := s.SyncRiders(ctx); err != nil {
		log.Error().Err(err).Msg("Nightly rider sync failed")
	}
	if err := s.SyncCalendar(ctx); err != nil {
		log.Error().Err(err).Msg("Nightly calendar sync failed")
	}

	s.updateIngestionGauges(ctx)
}

func (s *Scheduler) updateIngestionGauges(ctx context.Context) {
	riders, err := s.db.Riders.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count riders for metrics")
		return
	}
	races, err := s.db.Races.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count races for metrics")
		return
	}
	metrics.UpdateIngestionStats(int64(riders), int64(races))
}

// pollLoop checks for ingestable results at the idle cadence, tightening
// to the active cadence whenever a race weekend is detected.
func (s *Scheduler) pollLoop(ctx context.Context) {
	timer := time.NewTimer(s.cfg.ResultPollIdleInterval)
	defer timer.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		case <-timer.C:
			active := s.pollOnce(ctx)
			timer.Reset(s.pollInterval(active))
		}
	}
}

// Poll window around now for ingestable races. Recently run races stay
// in view for three days of late corrections; upcoming races enter two
// days early so sprint results land before the main session runs.
const (
	pollLookBackDays  = 3
	pollLookAheadDays = 2
)

// pollOnce syncs results for every race in the poll window with at
// least one already-run session. Returns whether a race weekend is
// active so the caller can pick the next interval.
func (s *Scheduler) pollOnce(ctx context.Context) bool {
	now := time.Now()

	races, err := s.db.Races.ListWithMainSessionBetween(
		ctx,
		now.AddDate(0, 0, -pollLookBackDays),
		now.AddDate(0, 0, pollLookAheadDays),
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load races for weekend detection")
		metrics.RecordError("scheduler", "race_lookup")
		return false
	}

	// Sync every window race with at least one session behind it,
	// active weekend or not. Races two or three days past stay in view
	// for late corrections after the detector has let go of them, and
	// back-to-back rounds can both sit inside the window.
	for _, race := range syncableRaces(races, now) {
		if err := s.SyncRaceResults(ctx, race.ID); err != nil {
			log.Warn().Err(err).Int("race_id", race.ID).Msg("Result poll sync failed")
		}
	}

	// The detector only steers the poll cadence.
	weekend := raceweek.Detect(now, races)
	if !weekend.Active {
		log.Debug().Msg("No race weekend in progress")
		return false
	}

	log.Info().
		Int("race_id", weekend.Race.ID).
		Str("race", weekend.Race.Name).
		Time("main_session_at", weekend.Race.MainSessionAt).
		Msg("Race weekend in progress")

	return true
}

// syncableRaces filters the poll window down to races with at least one
// already-run session.
func syncableRaces(races []*models.Race, now time.Time) []*models.Race {
	var out []*models.Race
	for _, race := range races {
		if sessionHasRun(race, now) {
			out = append(out, race)
		}
	}
	return out
}

// sessionHasRun reports whether the race's main session, or its sprint,
// has already started. Sprint results arrive a day before the main race.
func sessionHasRun(race *models.Race, now time.Time) bool {
	if !race.MainSessionAt.After(now) {
		return true
	}
	return race.HasSprint() && !race.SprintSessionAt.Time.After(now)
}

func (s *Scheduler) pollInterval(active bool) time.Duration {
	if active {
		return s.cfg.ResultPollActiveInterval
	}
	return s.cfg.ResultPollIdleInterval
}

// SyncRiders runs a roster sync under a sync-log entry.
func (s *Scheduler) SyncRiders(ctx context.Context) error {
	return s.runLogged(ctx, models.SyncTypeRiders, func(ctx context.Context) (string, interface{}, error) {
		stats, err := s.riders.Sync(ctx)
		if err != nil {
			return "", stats, err
		}
		return fmt.Sprintf("%d riders synced, %d skipped", stats.Synced, stats.Skipped), stats, nil
	})
}

// SyncCalendar runs a calendar sync for the configured season under a
// sync-log entry.
func (s *Scheduler) SyncCalendar(ctx context.Context) error {
	return s.runLogged(ctx, models.SyncTypeCalendar, func(ctx context.Context) (string, interface{}, error) {
		stats, err := s.calendar.Sync(ctx, s.cfg.Season(), false)
		if err != nil {
			return "", stats, err
		}
		return fmt.Sprintf("%d races synced, %d skipped", stats.Synced, stats.Skipped), stats, nil
	})
}

// SyncRaceResults runs a result sync for one race under a sync-log
// entry, and fires the results-available notification on the first
// successful ingestion of the race's main session.
func (s *Scheduler) SyncRaceResults(ctx context.Context, raceID int) error {
	var report *ingest.ResultSyncReport

	err := s.runLogged(ctx, models.SyncTypeResults, func(ctx context.Context) (string, interface{}, error) {
		var syncErr error
		report, syncErr = s.results.Sync(ctx, raceID)
		if report == nil {
			return "", nil, syncErr
		}
		return report.Summary(), report, syncErr
	})

	if report != nil && report.FirstIngestion {
		s.notifyResultsAvailable(ctx, raceID, report.RaceName)
	}

	return err
}

// runLogged brackets a sync operation with a sync-log row. The row is
// always finished, completed or failed, never left in progress.
func (s *Scheduler) runLogged(ctx context.Context, syncType models.SyncType, fn func(context.Context) (string, interface{}, error)) error {
	startTime := time.Now()

	syncLog, err := s.db.SyncLogs.Create(ctx, syncType)
	if err != nil {
		// The sync itself matters more than its audit row.
		log.Warn().Err(err).Str("type", string(syncType)).Msg("Failed to create sync log, running unlogged")
	}

	message, details, runErr := fn(ctx)
	duration := time.Since(startTime).Seconds()

	if auditStatus(runErr) == models.SyncStatusFailed {
		metrics.RecordSync(string(syncType), "failed", duration)
		metrics.RecordError("sync", string(syncType))
		if syncLog != nil {
			if markErr := s.db.SyncLogs.MarkFailed(ctx, syncLog.ID, runErr.Error(), details); markErr != nil {
				log.Error().Err(markErr).Int("sync_log_id", syncLog.ID).Msg("Failed to mark sync log failed")
			}
		}
		return runErr
	}

	if runErr != nil {
		// Item-level failures: the sync itself succeeded, the detail
		// carries what was missed. Audited as completed, reported back
		// to the caller.
		metrics.RecordSync(string(syncType), "partial", duration)
		if syncLog != nil {
			if markErr := s.db.SyncLogs.MarkCompleted(ctx, syncLog.ID, message, details); markErr != nil {
				log.Error().Err(markErr).Int("sync_log_id", syncLog.ID).Msg("Failed to mark sync log completed")
			}
		}
		return runErr
	}

	metrics.RecordSync(string(syncType), "completed", duration)
	metrics.LastSuccessfulSync.SetToCurrentTime()
	if syncLog != nil {
		if markErr := s.db.SyncLogs.MarkCompleted(ctx, syncLog.ID, message, details); markErr != nil {
			log.Error().Err(markErr).Int("sync_log_id", syncLog.ID).Msg("Failed to mark sync log completed")
		}
	}

	return nil
}

// auditStatus maps a sync outcome to its audit-row status. A partial
// failure still leaves the sync completed, only whole-operation errors
// mark it failed.
func auditStatus(err error) models.SyncStatus {
	if err == nil || errors.Is(err, syncerr.ErrPartialFailure) {
		return models.SyncStatusCompleted
	}
	return models.SyncStatusFailed
}

// notifyResultsAvailable fans a results-available notification out to
// every active team owner, once per race. A cache marker short-circuits
// the common case and a database check guards against a cold cache.
func (s *Scheduler) notifyResultsAvailable(ctx context.Context, raceID int, raceName string) {
	if s.cache != nil && s.cache.WasResultsNotified(ctx, raceID) {
		return
	}

	exists, err := s.db.Notifications.ExistsForRace(ctx, models.NotificationTypeResults, raceName)
	if err != nil {
		log.Warn().Err(err).Int("race_id", raceID).Msg("Notification dedup check failed, skipping fan-out")
		return
	}
	if exists {
		if s.cache != nil {
			s.cache.MarkResultsNotified(ctx, raceID)
		}
		return
	}

	userIDs, err := s.db.Notifications.ListActiveTeamUserIDs(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to list team owners for notification")
		return
	}

	created := 0
	for _, userID := range userIDs {
		notification := &models.Notification{
			UserID:  userID,
			Title:   "Race results available",
			Message: fmt.Sprintf("Results for %s are in, team scores have been updated", raceName),
			Type:    models.NotificationTypeResults,
		}
		if err := s.db.Notifications.Create(ctx, notification); err != nil {
			log.Warn().Err(err).Int("user_id", userID).Msg("Failed to create notification, continuing")
			continue
		}
		metrics.NotificationsCreated.Inc()
		created++
	}

	if s.cache != nil {
		s.cache.MarkResultsNotified(ctx, raceID)
	}

	log.Info().
		Int("race_id", raceID).
		Str("race", raceName).
		Int("notified", created).
		Msg("Results-available notifications sent")
}
