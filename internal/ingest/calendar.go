package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Marco204391/fanta-motogp-sub001/internal/cache"
	"github.com/Marco204391/fanta-motogp-sub001/internal/client"
	"github.com/Marco204391/fanta-motogp-sub001/internal/models"
	"github.com/Marco204391/fanta-motogp-sub001/internal/repository"
	"github.com/Marco204391/fanta-motogp-sub001/internal/syncerr"

	"github.com/rs/zerolog/log"
)

// CalendarSyncer pulls a season's grand prix calendar into the local
// race table.
type CalendarSyncer struct {
	client     *client.Client
	db         *repository.Database
	cache      *cache.RedisCache
	categories *CategoryTable
}

// CalendarSyncStats summarizes one calendar sync.
type CalendarSyncStats struct {
	Synced  int `json:"synced"`
	Skipped int `json:"skipped"`
}

func NewCalendarSyncer(c *client.Client, db *repository.Database, redis *cache.RedisCache, categories *CategoryTable) *CalendarSyncer {
	return &CalendarSyncer{client: c, db: db, cache: redis, categories: categories}
}

// Sync fetches the season's events and upserts one race per grand prix.
// Test events are skipped. Session times come from the top class's
// session list; when that lookup fails the coarse event dates stand in,
// so a schedule hiccup upstream never drops a race from the calendar.
func (s *CalendarSyncer) Sync(ctx context.Context, year int, finishedOnly bool) (CalendarSyncStats, error) {
	var stats CalendarSyncStats

	seasonID, err := s.resolveSeasonID(ctx, year)
	if err != nil {
		return stats, err
	}

	events, err := s.client.FetchEvents(ctx, seasonID, finishedOnly)
	if err != nil {
		return stats, fmt.Errorf("failed to fetch events for season %d: %w", year, err)
	}

	log.Info().Int("year", year).Int("count", len(events)).Msg("Fetched events from upstream")

	for i := range events {
		event := &events[i]

		if event.IsTest() {
			log.Debug().Str("external_id", event.ID).Msg("Skipping test event")
			stats.Skipped++
			continue
		}

		race := s.buildRace(ctx, event, year)
		if race == nil {
			stats.Skipped++
			continue
		}

		if err := s.db.Races.Upsert(ctx, race); err != nil {
			log.Warn().
				Err(err).
				Str("external_id", event.ID).
				Str("name", race.Name).
				Msg("Failed to upsert race, continuing")
			stats.Skipped++
			continue
		}

		stats.Synced++
	}

	log.Info().
		Int("year", year).
		Int("synced", stats.Synced).
		Int("skipped", stats.Skipped).
		Msg("Calendar sync complete")

	return stats, nil
}

// resolveSeasonID maps a season year to the upstream season uuid, with a
// cache in front of the seasons endpoint.
func (s *CalendarSyncer) resolveSeasonID(ctx context.Context, year int) (string, error) {
	if s.cache != nil {
		if seasonID := s.cache.GetSeasonID(ctx, year); seasonID != "" {
			return seasonID, nil
		}
	}

	seasons, err := s.client.FetchSeasons(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch seasons: %w", err)
	}

	for _, season := range seasons {
		if season.Year != nil && *season.Year == year {
			if s.cache != nil {
				s.cache.SetSeasonID(ctx, year, season.ID)
			}
			return season.ID, nil
		}
	}

	return "", fmt.Errorf("%w: season %d not listed upstream", syncerr.ErrNotFound, year)
}

// buildRace assembles a Race from the event payload plus the top class's
// session schedule. Nil means the event cannot be represented at all.
func (s *CalendarSyncer) buildRace(ctx context.Context, event *models.EventInput, year int) *models.Race {
	race := &models.Race{
		ExternalID: event.ID,
		Season:     year,
	}

	if event.Name != nil {
		race.Name = *event.Name
	}
	if event.Circuit != nil && event.Circuit.Name != nil {
		race.Circuit = *event.Circuit.Name
	}
	if event.Country != nil && event.Country.Name != nil {
		race.Country = *event.Country.Name
	}
	if event.Number != nil {
		race.Round = *event.Number
	}

	mainAt, sprintAt := s.sessionTimes(ctx, event.ID)

	if mainAt.IsZero() {
		// Coarse fallback: the main session runs on the event's final day.
		mainAt = event.EndDate()
	}
	if mainAt.IsZero() {
		log.Warn().
			Str("external_id", event.ID).
			Str("name", race.Name).
			Msg("Event has no usable main session time, skipping")
		return nil
	}

	race.MainSessionAt = mainAt
	if !sprintAt.IsZero() {
		race.SprintSessionAt = sql.NullTime{Time: sprintAt, Valid: true}
	}

	return race
}

// sessionTimes returns the main and sprint session start times from the
// top class's session list. Zero times on any failure.
func (s *CalendarSyncer) sessionTimes(ctx context.Context, eventID string) (mainAt, sprintAt time.Time) {
	topClassID := s.topClassID()
	if topClassID == "" {
		return mainAt, sprintAt
	}

	sessions, err := s.client.FetchSessions(ctx, eventID, topClassID)
	if err != nil {
		log.Warn().
			Err(err).
			Str("event_id", eventID).
			Msg("Failed to fetch event sessions, falling back to event dates")
		return mainAt, sprintAt
	}

	for i := range sessions {
		session := &sessions[i]
		switch {
		case session.IsType(models.SessionCodeRace):
			mainAt = session.StartTime()
		case session.IsType(models.SessionCodeSprint):
			sprintAt = session.StartTime()
		}
	}

	return mainAt, sprintAt
}

func (s *CalendarSyncer) topClassID() string {
	for _, entry := range s.categories.Entries() {
		if entry.Category == models.CategoryMotoGP {
			return entry.ExternalID
		}
	}
	return ""
}
