package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-issue-api/internal/models"
)

// NotificationRepository provides database access for the notification inbox
// and the transactional outbox drained by the dispatcher.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new instance of NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts an inbox notification row.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (id, user_id, issue_id, type, message, read, created_at) VALUES (:id, :user_id, :issue_id, :type, :message, :read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListByUser returns the newest notifications for a user along with the
// unread count across the whole inbox.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT id, user_id, issue_id, type, message, read, created_at FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT %d`, limit)
	var items []models.Notification
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	const countQuery = `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`
	var unread int
	if err := r.db.GetContext(ctx, &unread, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return items, unread, nil
}

// MarkRead marks one notification as read, scoped to its owner.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	const query = `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkAllRead marks every unread notification for the user as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	const query = `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// FetchPendingIntents returns the oldest pending outbox rows, up to limit.
func (r *NotificationRepository) FetchPendingIntents(ctx context.Context, limit int) ([]models.NotificationIntent, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT id, recipient_id, issue_id, type, message, status, attempts, created_at, delivered_at FROM notification_outbox WHERE status = $1 ORDER BY created_at ASC LIMIT %d`, limit)
	var intents []models.NotificationIntent
	if err := r.db.SelectContext(ctx, &intents, query, models.OutboxPending); err != nil {
		return nil, fmt.Errorf("fetch pending intents: %w", err)
	}
	return intents, nil
}

// MarkIntentDelivered records a successful dispatch.
func (r *NotificationRepository) MarkIntentDelivered(ctx context.Context, id string, deliveredAt time.Time) error {
	const query = `UPDATE notification_outbox SET status = $2, attempts = attempts + 1, delivered_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.OutboxDelivered, deliveredAt); err != nil {
		return fmt.Errorf("mark intent delivered: %w", err)
	}
	return nil
}

// MarkIntentFailed bumps the attempt counter; once maxAttempts is reached the
// intent is parked as FAILED, otherwise it stays pending for the next drain.
func (r *NotificationRepository) MarkIntentFailed(ctx context.Context, id string, maxAttempts int) error {
	const query = `UPDATE notification_outbox SET attempts = attempts + 1, status = CASE WHEN attempts + 1 >= $2 THEN 'FAILED' ELSE status END WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, maxAttempts); err != nil {
		return fmt.Errorf("mark intent failed: %w", err)
	}
	return nil
}
