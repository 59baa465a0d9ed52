package models

import "time"

// TeamScore is the computed fantasy score for one team in one session of
// one race. Lower totals are better; standings sort ascending. The
// (team, race, session) triple is the upsert key and recomputation is a
// full replace.
type TeamScore struct {
	ID          int                   `db:"id"`
	TeamID      int                   `db:"team_id"`
	RaceID      int                   `db:"race_id"`
	Session     Session               `db:"session"`
	TotalPoints int                   `db:"total_points"`
	Breakdown   []ScoreBreakdownEntry `db:"-"`
	CreatedAt   time.Time             `db:"created_at"`
	UpdatedAt   time.Time             `db:"updated_at"`
}

// ScoreBreakdownEntry is the per-pick detail persisted alongside the total.
// ActualPosition is nil when the rider had no position (DNF/DNS/DSQ or no
// result row); Status is empty when the rider had no result row at all.
type ScoreBreakdownEntry struct {
	RiderID        int          `json:"rider_id"`
	RiderName      string       `json:"rider_name"`
	Predicted      int          `json:"predicted"`
	ActualPosition *int         `json:"actual_position,omitempty"`
	Status         ResultStatus `json:"status,omitempty"`
	BasePoints     int          `json:"base_points"`
	Delta          int          `json:"delta"`
	Points         int          `json:"points"`
}
