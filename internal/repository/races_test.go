//go:build integration

package repository

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/Marco204391/fanta-motogp-sub001/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaceRepository_Upsert(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	externalID := fmt.Sprintf("upsert-race-%d", time.Now().UnixNano())
	mainAt := time.Date(2026, 6, 7, 14, 0, 0, 0, time.UTC)

	race := &models.Race{
		ExternalID:    externalID,
		Name:          "Italian GP",
		Circuit:       "Mugello",
		Country:       "Italy",
		Season:        2026,
		Round:         7,
		MainSessionAt: mainAt,
	}
	require.NoError(t, db.Races.Upsert(ctx, race))
	assert.NotZero(t, race.ID)
	assert.False(t, race.HasSprint())

	// Nightly refresh fills in the sprint once the schedule firms up
	race.SprintSessionAt = sql.NullTime{Time: mainAt.Add(-22 * time.Hour), Valid: true}
	require.NoError(t, db.Races.Upsert(ctx, race))

	retrieved, err := db.Races.GetByExternalID(ctx, externalID)
	require.NoError(t, err)
	assert.Equal(t, race.ID, retrieved.ID, "Update must not create a second row")
	assert.True(t, retrieved.HasSprint())
	assert.Equal(t, 7, retrieved.Round)
}

func TestRaceRepository_ListWithMainSessionBetween(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	now := time.Now()
	inWindow := createTestRace(t, db, ctx, "Window GP", now.Add(24*time.Hour))
	createTestRace(t, db, ctx, "Far Future GP", now.Add(30*24*time.Hour))
	createTestRace(t, db, ctx, "Long Past GP", now.Add(-30*24*time.Hour))

	races, err := db.Races.ListWithMainSessionBetween(ctx, now.Add(-48*time.Hour), now.Add(72*time.Hour))
	require.NoError(t, err)

	ids := make([]int, 0, len(races))
	for _, race := range races {
		ids = append(ids, race.ID)
	}
	assert.Contains(t, ids, inWindow.ID)
	for _, race := range races {
		assert.True(t, race.MainSessionAt.After(now.Add(-48*time.Hour)))
		assert.True(t, race.MainSessionAt.Before(now.Add(72*time.Hour)))
	}
}
