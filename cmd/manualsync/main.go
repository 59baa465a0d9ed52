// Command manualsync runs one sync pipeline on demand and exits. It is
// the operational escape hatch when a scheduled sync misbehaved or a
// race needs re-scoring outside the poll window.
package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/Marco204391/fanta-motogp-sub001/internal/cache"
	"github.com/Marco204391/fanta-motogp-sub001/internal/client"
	"github.com/Marco204391/fanta-motogp-sub001/internal/config"
	"github.com/Marco204391/fanta-motogp-sub001/internal/ingest"
	"github.com/Marco204391/fanta-motogp-sub001/internal/repository"
	"github.com/Marco204391/fanta-motogp-sub001/internal/scoring"

	"github.com/rs/zerolog/log"
)

func main() {
	syncRiders := flag.Bool("riders", false, "sync the rider roster")
	syncCalendar := flag.Bool("calendar", false, "sync the season calendar")
	syncResults := flag.Int("results", 0, "sync results for the given race id")
	year := flag.Int("year", 0, "season year for -calendar (default: configured season)")
	flag.Parse()

	if !*syncRiders && !*syncCalendar && *syncResults == 0 {
		flag.Usage()
		log.Fatal().Msg("Nothing to do: pass -riders, -calendar, or -results <race id>")
	}

	ctx := context.Background()
	cfg := config.MustLoad()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     fmt.Sprintf("%d", cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	motogpClient := client.NewClient(cfg.MotoGPBaseURL, cfg.MotoGPTimeout)
	categories := ingest.DefaultCategoryTable()

	if *syncRiders {
		syncer := ingest.NewRiderSyncer(motogpClient, db, categories)
		stats, err := syncer.Sync(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Rider sync failed")
		}
		log.Info().Int("synced", stats.Synced).Int("skipped", stats.Skipped).Msg("Rider sync done")
	}

	if *syncCalendar {
		season := *year
		if season == 0 {
			season = cfg.Season()
		}
		syncer := ingest.NewCalendarSyncer(motogpClient, db, redisCache, categories)
		stats, err := syncer.Sync(ctx, season, false)
		if err != nil {
			log.Fatal().Err(err).Msg("Calendar sync failed")
		}
		log.Info().Int("year", season).Int("synced", stats.Synced).Int("skipped", stats.Skipped).Msg("Calendar sync done")
	}

	if *syncResults != 0 {
		syncer := ingest.NewResultSyncer(motogpClient, db, categories, scoring.NewEngine(db))
		report, err := syncer.Sync(ctx, *syncResults)
		if err != nil {
			if report != nil {
				log.Warn().Str("report", report.Summary()).Msg("Result sync finished with failures")
			}
			log.Fatal().Err(err).Int("race_id", *syncResults).Msg("Result sync failed")
		}
		log.Info().Str("report", report.Summary()).Msg("Result sync done")
	}
}
