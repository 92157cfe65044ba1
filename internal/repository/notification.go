package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hangaroo/backend/internal/model"
)

// PgNotificationRepository implements NotificationRepository using PostgreSQL.
type PgNotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository constructs a PgNotificationRepository.
func NewNotificationRepository(db *pgxpool.Pool) *PgNotificationRepository {
	return &PgNotificationRepository{db: db}
}

// Record persists the history row and its outbox entry in one transaction.
// The history record exists whether or not delivery ever succeeds; delivery is
// the publisher/notifier pair's problem.
func (r *PgNotificationRepository) Record(ctx context.Context, draft *model.NotificationDraft) (n *model.Notification, err error) {
	notification := &model.Notification{
		ID:          uuid.New().String(),
		Title:       draft.Title,
		Body:        draft.Body,
		RecipientID: draft.RecipientID,
		CreatedAt:   time.Now().UTC(),
	}

	payload, err := json.Marshal(model.NotificationQueued{
		NotificationID: notification.ID,
		Title:          notification.Title,
		Body:           notification.Body,
		RecipientID:    notification.RecipientID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal outbox payload: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO notifications (id, title, body, recipient_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		notification.ID, notification.Title, notification.Body,
		notification.RecipientID, notification.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO outbox (aggregate_id, event_type, payload, created_at)
		 VALUES ($1, $2, $3, $4)`,
		notification.ID, model.EventTypeNotification, payload, notification.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert outbox event: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return notification, nil
}

// List returns the notification history, newest first.
func (r *PgNotificationRepository) List(ctx context.Context) ([]model.Notification, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, body, recipient_id, created_at
		 FROM notifications
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.RecipientID, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
