package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Marco204391/fanta-motogp-sub001/internal/models"

	"github.com/rs/zerolog/log"
)

// SyncLogRepository handles the append-only sync audit log. A row is
// created in_progress and transitions exactly once to completed or failed.
type SyncLogRepository struct {
	db *Database
}

// Create appends a new in-progress log row for one sync attempt
func (r *SyncLogRepository) Create(ctx context.Context, syncType models.SyncType) (*models.SyncLog, error) {
	query := `
		INSERT INTO sync_logs (type, status)
		VALUES ($1, $2)
		RETURNING id, started_at
	`

	entry := &models.SyncLog{
		Type:   syncType,
		Status: models.SyncStatusInProgress,
	}
	err := r.db.Pool.QueryRow(ctx, query, syncType, models.SyncStatusInProgress).
		Scan(&entry.ID, &entry.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync log: %w", err)
	}

	log.Debug().
		Int("id", entry.ID).
		Str("type", string(syncType)).
		Msg("Sync log created")

	return entry, nil
}

// MarkCompleted transitions an in-progress row to completed
func (r *SyncLogRepository) MarkCompleted(ctx context.Context, id int, message string, details interface{}) error {
	return r.finish(ctx, id, models.SyncStatusCompleted, message, details)
}

// MarkFailed transitions an in-progress row to failed with error detail
func (r *SyncLogRepository) MarkFailed(ctx context.Context, id int, message string, details interface{}) error {
	return r.finish(ctx, id, models.SyncStatusFailed, message, details)
}

func (r *SyncLogRepository) finish(ctx context.Context, id int, status models.SyncStatus, message string, details interface{}) error {
	var detailsJSON []byte
	if details != nil {
		var err error
		detailsJSON, err = json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to marshal sync log details: %w", err)
		}
	}

	query := `
		UPDATE sync_logs
		SET status = $1, message = $2, details = $3, completed_at = NOW()
		WHERE id = $4 AND status = $5
	`

	result, err := r.db.Pool.Exec(ctx, query, status, message, detailsJSON, id, models.SyncStatusInProgress)
	if err != nil {
		return fmt.Errorf("failed to finish sync log: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("sync log not in progress: id=%d", id)
	}

	return nil
}

// ListRecent retrieves the most recent sync attempts, newest first
func (r *SyncLogRepository) ListRecent(ctx context.Context, limit int) ([]*models.SyncLog, error) {
	query := `
		SELECT id, type, status, message, details, started_at, completed_at
		FROM sync_logs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.SyncLog
	for rows.Next() {
		var entry models.SyncLog
		err := rows.Scan(
			&entry.ID, &entry.Type, &entry.Status, &entry.Message,
			&entry.Details, &entry.StartedAt, &entry.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync log: %w", err)
		}
		logs = append(logs, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync logs: %w", err)
	}

	return logs, nil
}
