package models

import (
	"database/sql"
	"time"
)

// Race represents one grand prix weekend of a season.
type Race struct {
	ID              int           `db:"id"`
	ExternalID      string        `db:"external_id"`
	Name            string        `db:"name"`
	Circuit         string        `db:"circuit"`
	Country         string        `db:"country"`
	Season          int           `db:"season"`
	Round           int           `db:"round"`
	MainSessionAt   time.Time     `db:"main_session_at"`
	SprintSessionAt sql.NullTime  `db:"sprint_session_at"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

// HasSprint reports whether the race has a scheduled sprint session.
func (r *Race) HasSprint() bool {
	return r.SprintSessionAt.Valid
}

// SeasonInput is the upstream season list entry.
type SeasonInput struct {
	ID      string `json:"id"`
	Year    *int   `json:"year"`
	Current *bool  `json:"current"`
}

// EventInput is the upstream event (grand prix) payload.
type EventInput struct {
	ID        string        `json:"id"`
	Name      *string       `json:"name"`
	ShortName *string       `json:"short_name"`
	Test      *bool         `json:"test"`
	Number    *int          `json:"number"`
	DateStart *string       `json:"date_start"`
	DateEnd   *string       `json:"date_end"`
	Circuit   *CircuitInput `json:"circuit"`
	Country   *CountryInput `json:"country"`
}

// CircuitInput is the circuit block embedded in an event payload.
type CircuitInput struct {
	Name *string `json:"name"`
}

// CountryInput is the country block embedded in an event payload.
type CountryInput struct {
	Name *string `json:"name"`
	ISO  *string `json:"iso"`
}

// IsTest reports whether the upstream flagged the event as a test event.
func (ei *EventInput) IsTest() bool {
	return ei.Test != nil && *ei.Test
}

// EndDate parses the event's coarse end date. Zero time when absent or
// malformed.
func (ei *EventInput) EndDate() time.Time {
	return parseEventTime(ei.DateEnd)
}

// StartDate parses the event's coarse start date.
func (ei *EventInput) StartDate() time.Time {
	return parseEventTime(ei.DateStart)
}

func parseEventTime(raw *string) time.Time {
	if raw == nil {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339, *raw); err == nil {
		return ts
	}
	if ts, err := time.Parse("2006-01-02", *raw); err == nil {
		return ts
	}
	return time.Time{}
}

// SessionInput is the upstream session list entry for an (event, category)
// pair. Type carries the session code, e.g. "RAC", "SPR", "FP1", "Q2".
type SessionInput struct {
	ID       string         `json:"id"`
	Type     *string        `json:"type"`
	Number   *int           `json:"number"`
	Date     *string        `json:"date"`
	Category *CategoryInput `json:"category"`
}

// StartTime parses the session's scheduled start. Zero time when absent.
func (si *SessionInput) StartTime() time.Time {
	return parseEventTime(si.Date)
}

// IsType reports whether the session carries the given session-type code.
func (si *SessionInput) IsType(code string) bool {
	return si.Type != nil && *si.Type == code
}
