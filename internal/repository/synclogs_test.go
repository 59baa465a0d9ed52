//go:build integration

package repository

import (
	"testing"

	"github.com/Marco204391/fanta-motogp-sub001/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncLogRepository_Lifecycle(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	entry, err := db.SyncLogs.Create(ctx, models.SyncTypeRiders)
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.Equal(t, models.SyncStatusInProgress, entry.Status)

	err = db.SyncLogs.MarkCompleted(ctx, entry.ID, "42 riders synced", map[string]int{"synced": 42})
	require.NoError(t, err)

	recent, err := db.SyncLogs.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, recent)

	var found *models.SyncLog
	for _, logEntry := range recent {
		if logEntry.ID == entry.ID {
			found = logEntry
			break
		}
	}
	require.NotNil(t, found, "Completed entry should appear in recent logs")
	assert.Equal(t, models.SyncStatusCompleted, found.Status)
	assert.Equal(t, "42 riders synced", found.Message.String)
	assert.True(t, found.CompletedAt.Valid)
}

func TestSyncLogRepository_SingleTransition(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	entry, err := db.SyncLogs.Create(ctx, models.SyncTypeResults)
	require.NoError(t, err)

	require.NoError(t, db.SyncLogs.MarkFailed(ctx, entry.ID, "upstream unavailable", nil))

	// A finished row must never transition again
	err = db.SyncLogs.MarkCompleted(ctx, entry.ID, "too late", nil)
	assert.Error(t, err, "Second transition must be rejected")

	err = db.SyncLogs.MarkFailed(ctx, entry.ID, "again", nil)
	assert.Error(t, err)
}
