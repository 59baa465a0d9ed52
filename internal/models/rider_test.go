package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiderInput_FullName(t *testing.T) {
	both := &RiderInput{Name: strPtr("Marco"), Surname: strPtr("Bezzecchi")}
	assert.Equal(t, "Marco Bezzecchi", both.FullName())

	onlyName := &RiderInput{Name: strPtr("Marco")}
	assert.Equal(t, "Marco", onlyName.FullName())

	onlySurname := &RiderInput{Surname: strPtr("Bezzecchi")}
	assert.Equal(t, "Bezzecchi", onlySurname.FullName())

	neither := &RiderInput{}
	assert.Equal(t, "", neither.FullName())
}

func TestRiderInput_ToRider(t *testing.T) {
	number := 72
	stepType := "Wildcard"
	input := &RiderInput{
		ID:      "rider-uuid",
		Name:    strPtr("Marco"),
		Surname: strPtr("Bezzecchi"),
		CareerStep: &CareerStepInput{
			Number: &number,
			Type:   &stepType,
		},
	}

	rider := input.ToRider(CategoryMotoGP, 120)

	assert.Equal(t, "rider-uuid", rider.ExternalID)
	assert.Equal(t, "Marco Bezzecchi", rider.Name)
	assert.Equal(t, CategoryMotoGP, rider.Category)
	assert.Equal(t, 120, rider.Value)
	assert.True(t, rider.Active)
	assert.Equal(t, ClassificationWildcard, rider.Classification)
	require.True(t, rider.Number.Valid)
	assert.Equal(t, int32(72), rider.Number.Int32)
}

func TestRiderInput_ToRider_MissingCareerStep(t *testing.T) {
	input := &RiderInput{ID: "x", Name: strPtr("Test")}

	rider := input.ToRider(CategoryMoto3, 50)

	assert.False(t, rider.Number.Valid)
	assert.Equal(t, ClassificationOfficial, rider.Classification)
}

func TestEventInput_Dates(t *testing.T) {
	rfc := "2026-05-17T14:00:00+02:00"
	dateOnly := "2026-05-17"
	bad := "not a date"

	withTime := &EventInput{DateEnd: &rfc}
	assert.Equal(t, 14, withTime.EndDate().Hour())

	coarse := &EventInput{DateEnd: &dateOnly}
	assert.Equal(t, 17, coarse.EndDate().Day())

	malformed := &EventInput{DateEnd: &bad}
	assert.True(t, malformed.EndDate().IsZero())

	absent := &EventInput{}
	assert.True(t, absent.EndDate().IsZero())
}

func TestSessionInput_IsType(t *testing.T) {
	code := SessionCodeRace
	session := &SessionInput{Type: &code}

	assert.True(t, session.IsType(SessionCodeRace))
	assert.False(t, session.IsType(SessionCodeSprint))
	assert.False(t, (&SessionInput{}).IsType(SessionCodeRace))
}
