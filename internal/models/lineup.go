package models

import "time"

// RaceLineup is a team's prediction submission for one race: six rider
// picks, two per category. Lineups are owned by the team service and are a
// read-only input to scoring.
type RaceLineup struct {
	ID        int           `db:"id"`
	TeamID    int           `db:"team_id"`
	RaceID    int           `db:"race_id"`
	Riders    []LineupRider `db:"-"`
	CreatedAt time.Time     `db:"created_at"`
}

// LineupRider is one pick inside a lineup. RiderName and Category are
// denormalized from the riders table when the lineup is loaded; an empty
// RiderName marks a pick whose rider is unknown to the system.
type LineupRider struct {
	ID                int      `db:"id"`
	LineupID          int      `db:"lineup_id"`
	RiderID           int      `db:"rider_id"`
	PredictedPosition int      `db:"predicted_position"`
	RiderName         string   `db:"-"`
	Category          Category `db:"-"`
}
