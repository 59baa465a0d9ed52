package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestDeriveResultStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   *string
		position *int
		want     ResultStatus
	}{
		{"finished with position", nil, intPtr(3), StatusFinished},
		{"explicit dnf", strPtr("DNF"), nil, StatusDNF},
		{"outstanding counts as dnf", strPtr("OUTSTND"), nil, StatusDNF},
		{"dnf keeps status even with position", strPtr("DNF"), intPtr(18), StatusDNF},
		{"did not start", strPtr("DNS"), nil, StatusDNS},
		{"disqualified", strPtr("DSQ"), intPtr(10), StatusDSQ},
		{"no status no position is a retirement", nil, nil, StatusDNF},
		{"unknown status with position", strPtr("INSTND"), intPtr(7), StatusFinished},
		{"unknown status without position", strPtr("INSTND"), nil, StatusDNF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveResultStatus(tt.status, tt.position))
		})
	}
}

func TestClassificationEntry_ToRaceResult(t *testing.T) {
	entry := &ClassificationEntryInput{
		Position: intPtr(5),
		Rider:    &ClassificationRiderInput{ID: strPtr("abc"), FullName: strPtr("Pedro Acosta")},
	}

	result := entry.ToRaceResult(10, 20, SessionMain)

	assert.Equal(t, 10, result.RaceID)
	assert.Equal(t, 20, result.RiderID)
	assert.Equal(t, SessionMain, result.Session)
	assert.Equal(t, StatusFinished, result.Status)
	require.True(t, result.Position.Valid)
	assert.Equal(t, int32(5), result.Position.Int32)
}

func TestClassificationEntry_ToRaceResult_NoPosition(t *testing.T) {
	entry := &ClassificationEntryInput{
		Status: strPtr("DNF"),
	}

	result := entry.ToRaceResult(10, 20, SessionSprint)

	assert.Equal(t, StatusDNF, result.Status)
	assert.False(t, result.Position.Valid)
}
