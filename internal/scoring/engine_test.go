package scoring

import (
	"database/sql"
	"testing"

	"github.com/Marco204391/fanta-motogp-sub001/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finished(riderID int, name string, category models.Category, position int) models.SessionResult {
	return models.SessionResult{
		RiderID:   riderID,
		RiderName: name,
		Category:  category,
		Position:  sql.NullInt32{Int32: int32(position), Valid: true},
		Status:    models.StatusFinished,
	}
}

func notClassified(riderID int, name string, category models.Category, status models.ResultStatus) models.SessionResult {
	return models.SessionResult{
		RiderID:   riderID,
		RiderName: name,
		Category:  category,
		Status:    status,
	}
}

func pick(riderID int, name string, category models.Category, predicted int) models.LineupRider {
	return models.LineupRider{
		RiderID:           riderID,
		RiderName:         name,
		Category:          category,
		PredictedPosition: predicted,
	}
}

func TestMaxPositionByCategory(t *testing.T) {
	results := []models.SessionResult{
		finished(1, "A", models.CategoryMotoGP, 1),
		finished(2, "B", models.CategoryMotoGP, 20),
		notClassified(3, "C", models.CategoryMotoGP, models.StatusDNF),
		finished(4, "D", models.CategoryMoto2, 14),
	}

	maxPositions := MaxPositionByCategory(results)

	assert.Equal(t, 20, maxPositions[models.CategoryMotoGP])
	assert.Equal(t, 14, maxPositions[models.CategoryMoto2])

	_, known := maxPositions[models.CategoryMoto3]
	assert.False(t, known, "category with no positioned result should be absent")
}

func TestScoreLineup_PerfectPick(t *testing.T) {
	results := ResultsByRider([]models.SessionResult{
		finished(1, "Bagnaia", models.CategoryMotoGP, 3),
		finished(2, "Martin", models.CategoryMotoGP, 20),
	})
	maxPositions := map[models.Category]int{models.CategoryMotoGP: 20}

	total, breakdown := ScoreLineup(
		[]models.LineupRider{pick(1, "Bagnaia", models.CategoryMotoGP, 3)},
		results, maxPositions,
	)

	require.Len(t, breakdown, 1)
	assert.Equal(t, 3, breakdown[0].BasePoints)
	assert.Equal(t, 0, breakdown[0].Delta)
	assert.Equal(t, 3, breakdown[0].Points)
	assert.Equal(t, 3, total)
	require.NotNil(t, breakdown[0].ActualPosition)
	assert.Equal(t, 3, *breakdown[0].ActualPosition)
}

func TestScoreLineup_DNSPenalty(t *testing.T) {
	// Worst classified position in the class is 20, so a rider who did
	// not start scores as 21st against the prediction of 5th.
	results := ResultsByRider([]models.SessionResult{
		finished(1, "Marquez", models.CategoryMotoGP, 20),
		notClassified(2, "Bastianini", models.CategoryMotoGP, models.StatusDNS),
	})
	maxPositions := MaxPositionByCategory([]models.SessionResult{
		finished(1, "Marquez", models.CategoryMotoGP, 20),
	})

	total, breakdown := ScoreLineup(
		[]models.LineupRider{pick(2, "Bastianini", models.CategoryMotoGP, 5)},
		results, maxPositions,
	)

	require.Len(t, breakdown, 1)
	assert.Equal(t, 21, breakdown[0].BasePoints)
	assert.Equal(t, 16, breakdown[0].Delta)
	assert.Equal(t, 37, breakdown[0].Points)
	assert.Equal(t, 37, total)
	assert.Nil(t, breakdown[0].ActualPosition)
}

func TestScoreLineup_MissingResultPenalty(t *testing.T) {
	// Rider has no result row at all, e.g. skipped the sprint.
	results := ResultsByRider([]models.SessionResult{
		finished(1, "Acosta", models.CategoryMotoGP, 10),
	})
	maxPositions := map[models.Category]int{models.CategoryMotoGP: 10}

	total, breakdown := ScoreLineup(
		[]models.LineupRider{pick(2, "Vinales", models.CategoryMotoGP, 1)},
		results, maxPositions,
	)

	require.Len(t, breakdown, 1)
	assert.Equal(t, 11, breakdown[0].BasePoints)
	assert.Equal(t, 10, breakdown[0].Delta)
	assert.Equal(t, 21, total)
}

func TestScoreLineup_FallbackWhenCategoryHasNoPositions(t *testing.T) {
	results := ResultsByRider([]models.SessionResult{
		notClassified(1, "Ogura", models.CategoryMoto2, models.StatusDNF),
	})
	maxPositions := MaxPositionByCategory([]models.SessionResult{
		notClassified(1, "Ogura", models.CategoryMoto2, models.StatusDNF),
	})

	total, breakdown := ScoreLineup(
		[]models.LineupRider{pick(1, "Ogura", models.CategoryMoto2, 2)},
		results, maxPositions,
	)

	require.Len(t, breakdown, 1)
	assert.Equal(t, DefaultMaxPosition, breakdown[0].BasePoints)
	assert.Equal(t, DefaultMaxPosition-2, breakdown[0].Delta)
	assert.Equal(t, 2*DefaultMaxPosition-2, total)
}

func TestScoreLineup_DNFWithPositionUsesPosition(t *testing.T) {
	// Some classifications assign a position even to retirements.
	dnf := notClassified(1, "Morbidelli", models.CategoryMotoGP, models.StatusDNF)
	dnf.Position = sql.NullInt32{Int32: 18, Valid: true}

	results := ResultsByRider([]models.SessionResult{
		dnf,
		finished(2, "Quartararo", models.CategoryMotoGP, 20),
	})
	maxPositions := map[models.Category]int{models.CategoryMotoGP: 20}

	_, breakdown := ScoreLineup(
		[]models.LineupRider{pick(1, "Morbidelli", models.CategoryMotoGP, 18)},
		results, maxPositions,
	)

	require.Len(t, breakdown, 1)
	assert.Equal(t, 18, breakdown[0].BasePoints)
	assert.Equal(t, 0, breakdown[0].Delta)
}

func TestScoreLineup_UnknownRiderIsSkipped(t *testing.T) {
	results := ResultsByRider([]models.SessionResult{
		finished(1, "Aldeguer", models.CategoryMotoGP, 4),
	})
	maxPositions := map[models.Category]int{models.CategoryMotoGP: 4}

	picks := []models.LineupRider{
		pick(1, "Aldeguer", models.CategoryMotoGP, 4),
		pick(999, "", models.CategoryMotoGP, 1), // not joined to a known rider
	}

	total, breakdown := ScoreLineup(picks, results, maxPositions)

	require.Len(t, breakdown, 1, "unknown rider must not appear in the breakdown")
	assert.Equal(t, 1, breakdown[0].RiderID)
	assert.Equal(t, 4, total)
}

func TestScoreLineup_Deterministic(t *testing.T) {
	results := ResultsByRider([]models.SessionResult{
		finished(1, "A", models.CategoryMotoGP, 1),
		finished(2, "B", models.CategoryMotoGP, 2),
		notClassified(3, "C", models.CategoryMoto2, models.StatusDNS),
		finished(4, "D", models.CategoryMoto2, 12),
	})
	maxPositions := map[models.Category]int{
		models.CategoryMotoGP: 2,
		models.CategoryMoto2:  12,
	}
	picks := []models.LineupRider{
		pick(1, "A", models.CategoryMotoGP, 2),
		pick(3, "C", models.CategoryMoto2, 1),
	}

	firstTotal, firstBreakdown := ScoreLineup(picks, results, maxPositions)
	secondTotal, secondBreakdown := ScoreLineup(picks, results, maxPositions)

	assert.Equal(t, firstTotal, secondTotal)
	assert.Equal(t, firstBreakdown, secondBreakdown)
}
