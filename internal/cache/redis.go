package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Cache TTLs. Season ids are effectively immutable upstream; the notified
// marker only needs to outlive a polling burst, the database existence
// check remains the source of truth.
const (
	seasonIDTTL       = 24 * time.Hour
	notifiedMarkerTTL = 7 * 24 * time.Hour
)

// Config holds Redis configuration
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisCache is a thin cache over hot upstream lookups. The worker runs
// without it when Redis is unreachable.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().
		Str("addr", fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)).
		Msg("Connected to Redis")

	return &RedisCache{client: client}, nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetSeasonID returns the cached upstream season id for a year, or an
// empty string on miss.
func (c *RedisCache) GetSeasonID(ctx context.Context, year int) string {
	val, err := c.client.Get(ctx, seasonIDKey(year)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Int("year", year).Msg("Failed to read season id from cache")
		}
		return ""
	}
	return val
}

// SetSeasonID caches the upstream season id for a year
func (c *RedisCache) SetSeasonID(ctx context.Context, year int, seasonID string) {
	if err := c.client.Set(ctx, seasonIDKey(year), seasonID, seasonIDTTL).Err(); err != nil {
		log.Warn().Err(err).Int("year", year).Msg("Failed to cache season id")
	}
}

// WasResultsNotified reports whether the results-available notification for
// a race was already dispatched during the marker's lifetime.
func (c *RedisCache) WasResultsNotified(ctx context.Context, raceID int) bool {
	val, err := c.client.Exists(ctx, notifiedKey(raceID)).Result()
	if err != nil {
		log.Warn().Err(err).Int("race_id", raceID).Msg("Failed to read notified marker from cache")
		return false
	}
	return val > 0
}

// MarkResultsNotified records that the results-available notification for
// a race has been dispatched.
func (c *RedisCache) MarkResultsNotified(ctx context.Context, raceID int) {
	if err := c.client.Set(ctx, notifiedKey(raceID), "1", notifiedMarkerTTL).Err(); err != nil {
		log.Warn().Err(err).Int("race_id", raceID).Msg("Failed to set notified marker")
	}
}

func seasonIDKey(year int) string {
	return fmt.Sprintf("fantamotogp:season_id:%d", year)
}

func notifiedKey(raceID int) string {
	return fmt.Sprintf("fantamotogp:results_notified:%d", raceID)
}
