package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hangaroo/backend/internal/model"
)

// PgOutboxRepository implements OutboxRepository using PostgreSQL.
type PgOutboxRepository struct {
	db *pgxpool.Pool
}

// NewOutboxRepository constructs a PgOutboxRepository.
func NewOutboxRepository(db *pgxpool.Pool) *PgOutboxRepository {
	return &PgOutboxRepository{db: db}
}

// GetUnpublished retrieves unpublished outbox events, oldest first.
func (r *PgOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, aggregate_id, event_type, payload, created_at, published_at
		 FROM outbox
		 WHERE published_at IS NULL
		 ORDER BY created_at ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unpublished: %w", err)
	}
	defer rows.Close()

	var events []*model.OutboxEvent
	for rows.Next() {
		var e model.OutboxEvent
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt, &e.PublishedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

// MarkPublished stamps an outbox event as published.
func (r *PgOutboxRepository) MarkPublished(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE outbox SET published_at = $2 WHERE id = $1`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}
