package ingest

import (
	"context"
	"fmt"

	"github.com/Marco204391/fanta-motogp-sub001/internal/client"
	"github.com/Marco204391/fanta-motogp-sub001/internal/models"
	"github.com/Marco204391/fanta-motogp-sub001/internal/repository"

	"github.com/rs/zerolog/log"
)

// Rider value formula parameters. Value rewards career achievements and
// is capped so no single rider dominates a budget.
const (
	riderBaseValue        = 50
	riderMaxValue         = 200
	riderChampionshipRate = 30
	riderWinRate          = 2
)

// RiderSyncer pulls the upstream rider roster into the local directory.
type RiderSyncer struct {
	client     *client.Client
	db         *repository.Database
	categories *CategoryTable
}

// RiderSyncStats summarizes one roster sync.
type RiderSyncStats struct {
	Synced  int `json:"synced"`
	Skipped int `json:"skipped"`
}

func NewRiderSyncer(c *client.Client, db *repository.Database, categories *CategoryTable) *RiderSyncer {
	return &RiderSyncer{client: c, db: db, categories: categories}
}

// Sync fetches the full upstream roster and upserts every rider that
// belongs to one of the three championship classes. Riders outside those
// classes, riders with no career step, and nameless payloads are
// skipped. A single bad rider never aborts the batch.
func (s *RiderSyncer) Sync(ctx context.Context) (RiderSyncStats, error) {
	var stats RiderSyncStats

	riders, err := s.client.FetchRiders(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to fetch riders: %w", err)
	}

	log.Info().Int("count", len(riders)).Msg("Fetched riders from upstream")

	for i := range riders {
		input := &riders[i]

		rider, skipReason := s.buildRider(input)
		if rider == nil {
			log.Debug().
				Str("external_id", input.ID).
				Str("name", input.FullName()).
				Str("reason", skipReason).
				Msg("Skipping rider payload")
			stats.Skipped++
			continue
		}

		if err := s.db.Riders.Upsert(ctx, rider); err != nil {
			log.Warn().
				Err(err).
				Str("external_id", input.ID).
				Str("name", rider.Name).
				Msg("Failed to upsert rider, continuing")
			stats.Skipped++
			continue
		}

		stats.Synced++
	}

	log.Info().
		Int("synced", stats.Synced).
		Int("skipped", stats.Skipped).
		Msg("Rider sync complete")

	return stats, nil
}

// buildRider maps an upstream payload to a directory row, or returns nil
// with the skip reason. Nameless payloads are rejected here: downstream,
// an empty rider name marks picks that never resolved to a known rider,
// so a real rider must never carry one.
func (s *RiderSyncer) buildRider(input *models.RiderInput) (*models.Rider, string) {
	if input.FullName() == "" {
		return nil, "payload has no rider name"
	}
	if input.CareerStep == nil || input.CareerStep.Category == nil {
		return nil, "no current career step"
	}
	category, ok := s.categories.Resolve(input.CareerStep.Category.ID)
	if !ok {
		return nil, "outside championship classes"
	}

	value := riderValue(intOrZero(input.ChampionshipWins), intOrZero(input.RaceWins))
	return input.ToRider(category, value), ""
}

// riderValue derives a rider's fantasy value from career achievements.
func riderValue(championships, wins int) int {
	value := riderBaseValue + championships*riderChampionshipRate + wins*riderWinRate
	if value > riderMaxValue {
		return riderMaxValue
	}
	return value
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
