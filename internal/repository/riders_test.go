//go:build integration

package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Marco204391/fanta-motogp-sub001/internal/models"
	"github.com/Marco204391/fanta-motogp-sub001/internal/syncerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiderRepository_Upsert(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	externalID := fmt.Sprintf("upsert-rider-%d", time.Now().UnixNano())
	rider := &models.Rider{
		ExternalID:     externalID,
		Name:           "Pedro Acosta",
		Number:         sql.NullInt32{Int32: 37, Valid: true},
		Category:       models.CategoryMotoGP,
		Value:          110,
		Active:         true,
		Classification: models.ClassificationOfficial,
	}

	require.NoError(t, db.Riders.Upsert(ctx, rider))
	assert.NotZero(t, rider.ID, "Upsert should populate the database id")

	// Re-ingesting the same rider with new data must update in place
	rider.Value = 140
	rider.Number = sql.NullInt32{Int32: 51, Valid: true}
	require.NoError(t, db.Riders.Upsert(ctx, rider))

	retrieved, err := db.Riders.GetByExternalID(ctx, externalID)
	require.NoError(t, err)
	assert.Equal(t, rider.ID, retrieved.ID, "Update must not create a second row")
	assert.Equal(t, 140, retrieved.Value)
	assert.Equal(t, int32(51), retrieved.Number.Int32)
}

func TestRiderRepository_GetByExternalID_NotFound(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, err := db.Riders.GetByExternalID(ctx, "definitely-missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, syncerr.ErrNotFound))
}

func TestRiderRepository_FindByNameInCategory(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	suffix := time.Now().UnixNano()
	name := fmt.Sprintf("Fermin Aldeguer %d", suffix)
	rider := createTestRider(t, db, ctx, name, models.CategoryMotoGP)

	// Case-insensitive substring match within the category
	found, err := db.Riders.FindByNameInCategory(ctx, fmt.Sprintf("fermin aldeguer %d", suffix), models.CategoryMotoGP)
	require.NoError(t, err)
	assert.Equal(t, rider.ID, found.ID)

	// Same name in another category must not match
	_, err = db.Riders.FindByNameInCategory(ctx, name, models.CategoryMoto3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, syncerr.ErrNotFound))
}

func TestRiderRepository_Deactivate(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	rider := createTestRider(t, db, ctx, "Deactivate Me", models.CategoryMoto2)
	require.True(t, rider.Active)

	require.NoError(t, db.Riders.Deactivate(ctx, rider.ID))

	retrieved, err := db.Riders.GetByID(ctx, rider.ID)
	require.NoError(t, err)
	assert.False(t, retrieved.Active, "Rider should be deactivated, not deleted")
}
