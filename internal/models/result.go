package models

import (
	"database/sql"
	"time"
)

// Session is a race sub-event type.
type Session string

const (
	SessionMain   Session = "MAIN"
	SessionSprint Session = "SPRINT"
)

// Upstream session-type codes for the sessions we ingest.
const (
	SessionCodeRace   = "RAC"
	SessionCodeSprint = "SPR"
)

// ResultStatus classifies a rider's outcome in one session.
type ResultStatus string

const (
	StatusFinished ResultStatus = "FINISHED"
	StatusDNF      ResultStatus = "DNF"
	StatusDNS      ResultStatus = "DNS"
	StatusDSQ      ResultStatus = "DSQ"
)

// RaceResult is one rider's classified outcome for one session of a race.
// The (race, rider, session) triple is the upsert key.
type RaceResult struct {
	ID        int           `db:"id"`
	RaceID    int           `db:"race_id"`
	RiderID   int           `db:"rider_id"`
	Session   Session       `db:"session"`
	Position  sql.NullInt32 `db:"position"`
	Status    ResultStatus  `db:"status"`
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
}

// SessionResult is a RaceResult joined with the rider's identity, as the
// scoring engine consumes it.
type SessionResult struct {
	RiderID   int
	RiderName string
	Category  Category
	Position  sql.NullInt32
	Status    ResultStatus
}

// ClassificationInput is the upstream classification payload for one session.
type ClassificationInput struct {
	Classification []ClassificationEntryInput `json:"classification"`
}

// ClassificationEntryInput is one row of a session classification.
type ClassificationEntryInput struct {
	Position *int                      `json:"position"`
	Status   *string                   `json:"status"`
	Rider    *ClassificationRiderInput `json:"rider"`
}

// ClassificationRiderInput identifies the rider in a classification row.
// The external id may be absent; name matching is the documented fallback.
type ClassificationRiderInput struct {
	ID       *string `json:"id"`
	FullName *string `json:"full_name"`
	Number   *int    `json:"number"`
}

// DeriveResultStatus maps an upstream status code and position to the
// internal status. A row with no explicit code and no position counts as a
// retirement, not a finish.
func DeriveResultStatus(status *string, position *int) ResultStatus {
	if status != nil {
		switch *status {
		case "DNF", "OUTSTND":
			return StatusDNF
		case "DNS":
			return StatusDNS
		case "DSQ":
			return StatusDSQ
		}
	}
	if position == nil {
		return StatusDNF
	}
	return StatusFinished
}

// ToRaceResult converts a classification entry to a RaceResult for the
// given resolved rider.
func (e *ClassificationEntryInput) ToRaceResult(raceID, riderID int, session Session) *RaceResult {
	result := &RaceResult{
		RaceID:  raceID,
		RiderID: riderID,
		Session: session,
		Status:  DeriveResultStatus(e.Status, e.Position),
	}
	if e.Position != nil {
		result.Position = sql.NullInt32{Int32: int32(*e.Position), Valid: true}
	}
	return result
}
