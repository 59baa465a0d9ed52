package repository

import (
	"context"
	"fmt"

	"github.com/Marco204391/fanta-motogp-sub001/internal/models"

	"github.com/rs/zerolog/log"
)

// NotificationRepository appends user notification records. Delivery is an
// external collaborator's concern.
type NotificationRepository struct {
	db *Database
}

// Create appends a notification row
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, title, message, type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query, n.UserID, n.Title, n.Message, n.Type).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	log.Debug().
		Int("user_id", n.UserID).
		Str("type", n.Type).
		Msg("Notification created")

	return nil
}

// ExistsForRace reports whether any notification of the given type already
// references the race by name. This is the idempotency guard against
// re-sending on repeated polling.
func (r *NotificationRepository) ExistsForRace(ctx context.Context, notificationType, raceName string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE type = $1 AND message LIKE '%' || $2 || '%'
		)
	`

	var exists bool
	err := r.db.Pool.QueryRow(ctx, query, notificationType, raceName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check notification existence: %w", err)
	}

	return exists, nil
}

// ListActiveTeamUserIDs retrieves the distinct users owning an active team.
// The teams table is owned by the league service; this is a read-only view
// into it.
func (r *NotificationRepository) ListActiveTeamUserIDs(ctx context.Context) ([]int, error) {
	query := `SELECT DISTINCT user_id FROM teams WHERE active = TRUE ORDER BY user_id`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active team users: %w", err)
	}
	defer rows.Close()

	var userIDs []int
	for rows.Next() {
		var userID int
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user ids: %w", err)
	}

	return userIDs, nil
}

// CountByTypeAndRace counts notifications of one type referencing a race
func (r *NotificationRepository) CountByTypeAndRace(ctx context.Context, notificationType, raceName string) (int, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE type = $1 AND message LIKE '%' || $2 || '%'
	`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, notificationType, raceName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	return count, nil
}
