package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pressroom/hub/internal/apperrors"
	"github.com/pressroom/hub/internal/models"
)

// ErrNotificationNotFound is returned when no notification row exists for the given id.
var ErrNotificationNotFound = apperrors.NewNotFoundError("notification", "notification not found")

// NotificationsRepository handles data access for the notifications table.
type NotificationsRepository struct {
	db *pgxpool.Pool
}

// NewNotificationsRepository creates a new notifications repository.
func NewNotificationsRepository(db *pgxpool.Pool) *NotificationsRepository {
	return &NotificationsRepository{db: db}
}

// Create inserts a notification for a user.
func (r *NotificationsRepository) Create(
	ctx context.Context, recipientID uuid.UUID, typ models.NotificationType, message string, articleID *uuid.UUID,
) (*models.Notification, error) {
	var n models.Notification

	err := r.db.QueryRow(ctx, `
		INSERT INTO notifications (recipient_id, type, message, article_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, recipient_id, type, message, article_id, is_read, created_at`,
		recipientID, typ, message, articleID,
	).Scan(&n.ID, &n.RecipientID, &n.Type, &n.Message, &n.ArticleID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}

	return &n, nil
}

// listLimit caps notification history reads.
const listLimit = 50

// ListForUser returns the most recent notifications for a user, newest first.
func (r *NotificationsRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, recipient_id, type, message, article_id, is_read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, listLimit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification

	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Type, &n.Message, &n.ArticleID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}

		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead flags one notification as read.
func (r *NotificationsRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}

	return nil
}
