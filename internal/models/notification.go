package models

import "time"

// NotificationTypeResults marks notifications announcing newly available
// race results.
const NotificationTypeResults = "race-results"

// Notification is one user-facing event record. Delivery is handled by an
// external collaborator; this service only appends rows, deduplicated by
// (type, race name in message).
type Notification struct {
	ID        int       `db:"id"`
	UserID    int       `db:"user_id"`
	Title     string    `db:"title"`
	Message   string    `db:"message"`
	Type      string    `db:"type"`
	CreatedAt time.Time `db:"created_at"`
}
