package models

import (
	"database/sql"
	"time"
)

// Category is a competition tier.
type Category string

const (
	CategoryMotoGP Category = "MOTOGP"
	CategoryMoto2  Category = "MOTO2"
	CategoryMoto3  Category = "MOTO3"
)

// RiderClassification describes a rider's entry status for the season.
type RiderClassification string

const (
	ClassificationOfficial    RiderClassification = "OFFICIAL"
	ClassificationWildcard    RiderClassification = "WILDCARD"
	ClassificationReplacement RiderClassification = "REPLACEMENT"
	ClassificationTest        RiderClassification = "TEST"
)

// Rider represents a rider known to the system. Riders are never deleted,
// only deactivated when they drop out of the upstream roster.
type Rider struct {
	ID             int                 `db:"id"`
	ExternalID     string              `db:"external_id"`
	Name           string              `db:"name"`
	Number         sql.NullInt32       `db:"number"`
	Category       Category            `db:"category"`
	Value          int                 `db:"value"`
	Active         bool                `db:"active"`
	Classification RiderClassification `db:"classification"`
	CreatedAt      time.Time           `db:"created_at"`
	UpdatedAt      time.Time           `db:"updated_at"`
}

// RiderInput is the loosely-typed rider payload from the upstream API.
// Every field except the id may be absent.
type RiderInput struct {
	ID               string           `json:"id"`
	Name             *string          `json:"name"`
	Surname          *string          `json:"surname"`
	ChampionshipWins *int             `json:"championship_wins"`
	RaceWins         *int             `json:"race_wins"`
	CareerStep       *CareerStepInput `json:"current_career_step"`
}

// CareerStepInput is the upstream description of the rider's current season.
type CareerStepInput struct {
	Number   *int           `json:"number"`
	Type     *string        `json:"type"`
	InGP     *bool          `json:"in_grand_prix"`
	Category *CategoryInput `json:"category"`
}

// CategoryInput is the upstream category reference embedded in rider and
// session payloads.
type CategoryInput struct {
	ID       string  `json:"id"`
	Name     *string `json:"name"`
	LegacyID *int    `json:"legacy_id"`
}

// FullName joins the payload's name and surname, tolerating absence.
func (ri *RiderInput) FullName() string {
	name := ""
	if ri.Name != nil {
		name = *ri.Name
	}
	if ri.Surname != nil {
		if name != "" {
			name += " "
		}
		name += *ri.Surname
	}
	return name
}

// ToRider converts the upstream payload to a Rider model. Category must be
// resolved by the caller via the category table.
func (ri *RiderInput) ToRider(category Category, value int) *Rider {
	rider := &Rider{
		ExternalID:     ri.ID,
		Name:           ri.FullName(),
		Category:       category,
		Value:          value,
		Active:         true,
		Classification: ClassificationOfficial,
	}

	if ri.CareerStep != nil {
		if ri.CareerStep.Number != nil {
			rider.Number = sql.NullInt32{Int32: int32(*ri.CareerStep.Number), Valid: true}
		}
		if ri.CareerStep.Type != nil {
			rider.Classification = classificationFromType(*ri.CareerStep.Type)
		}
	}

	return rider
}

func classificationFromType(t string) RiderClassification {
	switch t {
	case "Official":
		return ClassificationOfficial
	case "Wildcard":
		return ClassificationWildcard
	case "Replacement":
		return ClassificationReplacement
	case "Test":
		return ClassificationTest
	default:
		return ClassificationOfficial
	}
}
