//go:build integration

package repository

import (
	"testing"
	"time"

	"github.com/Marco204391/fanta-motogp-sub001/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreRepository_UpsertReplacesBreakdown(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	race := createTestRace(t, db, ctx, "Score GP", time.Now().Add(-24*time.Hour))
	teamID := createTestTeam(t, db, ctx, 9001, "Score Team")

	score := &models.TeamScore{
		TeamID:      teamID,
		RaceID:      race.ID,
		Session:     models.SessionMain,
		TotalPoints: 120,
		Breakdown: []models.ScoreBreakdownEntry{
			{RiderID: 1, RiderName: "A", Predicted: 5, BasePoints: 21, Delta: 16, Points: 37},
		},
	}
	require.NoError(t, db.Scores.Upsert(ctx, score))

	// Recompute after a corrected classification: full replace
	score.TotalPoints = 95
	score.Breakdown = []models.ScoreBreakdownEntry{
		{RiderID: 1, RiderName: "A", Predicted: 5, BasePoints: 12, Delta: 7, Points: 19},
		{RiderID: 2, RiderName: "B", Predicted: 1, BasePoints: 3, Delta: 2, Points: 5},
	}
	require.NoError(t, db.Scores.Upsert(ctx, score))

	retrieved, err := db.Scores.GetByKey(ctx, teamID, race.ID, models.SessionMain)
	require.NoError(t, err)
	assert.Equal(t, 95, retrieved.TotalPoints)
	require.Len(t, retrieved.Breakdown, 2)
	assert.Equal(t, 19, retrieved.Breakdown[0].Points)
}

func TestScoreRepository_ListByRaceSession_AscendingStandings(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	race := createTestRace(t, db, ctx, "Standings GP", time.Now().Add(-24*time.Hour))
	firstTeam := createTestTeam(t, db, ctx, 9011, "Leaders")
	secondTeam := createTestTeam(t, db, ctx, 9012, "Chasers")
	thirdTeam := createTestTeam(t, db, ctx, 9013, "Backmarkers")

	for teamID, points := range map[int]int{firstTeam: 40, secondTeam: 180, thirdTeam: 95} {
		score := &models.TeamScore{
			TeamID:      teamID,
			RaceID:      race.ID,
			Session:     models.SessionMain,
			TotalPoints: points,
		}
		require.NoError(t, db.Scores.Upsert(ctx, score))
	}

	standings, err := db.Scores.ListByRaceSession(ctx, race.ID, models.SessionMain)
	require.NoError(t, err)
	require.Len(t, standings, 3)

	// Lower is better: the standings sort ascending by points
	assert.Equal(t, 40, standings[0].TotalPoints)
	assert.Equal(t, 95, standings[1].TotalPoints)
	assert.Equal(t, 180, standings[2].TotalPoints)
	assert.Equal(t, firstTeam, standings[0].TeamID)
}
