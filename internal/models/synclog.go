package models

import (
	"database/sql"
	"time"
)

// SyncType identifies which pipeline a sync attempt belongs to.
type SyncType string

const (
	SyncTypeRiders   SyncType = "riders"
	SyncTypeCalendar SyncType = "calendar"
	SyncTypeResults  SyncType = "race-results"
)

// SyncStatus is the lifecycle state of one sync attempt. A row transitions
// exactly once, from in_progress to completed or failed.
type SyncStatus string

const (
	SyncStatusInProgress SyncStatus = "in_progress"
	SyncStatusCompleted  SyncStatus = "completed"
	SyncStatusFailed     SyncStatus = "failed"
)

// SyncLog is the append-only audit record for one sync attempt. Details
// holds structured failure or summary data as JSON.
type SyncLog struct {
	ID          int            `db:"id"`
	Type        SyncType       `db:"type"`
	Status      SyncStatus     `db:"status"`
	Message     sql.NullString `db:"message"`
	Details     []byte         `db:"details"`
	StartedAt   time.Time      `db:"started_at"`
	CompletedAt sql.NullTime   `db:"completed_at"`
}
