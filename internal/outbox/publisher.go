// Package outbox moves pending notification events from the database to the
// Redis stream the notifier consumes. The domain write and the outbox row are
// committed together, so a crash between commit and publish only delays
// delivery, it never loses or fabricates it.
package outbox

import (
	"context"
	"log/slog"

	"github.com/redis/rueidis"

	"github.com/hangaroo/backend/internal/repository"
)

// StreamKey is the Redis stream notification events are published to.
const StreamKey = "notifications:stream"

// Publisher polls unpublished outbox rows and XADDs them to the stream.
type Publisher struct {
	outbox repository.OutboxRepository
	redis  rueidis.Client
	log    *slog.Logger
}

// NewPublisher constructs a Publisher.
func NewPublisher(outbox repository.OutboxRepository, redis rueidis.Client, log *slog.Logger) *Publisher {
	return &Publisher{outbox: outbox, redis: redis, log: log}
}

// ProcessUnpublished publishes up to limit pending events. A failure on one
// event is logged and skipped; the row stays unpublished and is retried on
// the next poll.
func (p *Publisher) ProcessUnpublished(ctx context.Context, limit int) error {
	events, err := p.outbox.GetUnpublished(ctx, limit)
	if err != nil {
		return err
	}

	for _, event := range events {
		cmd := p.redis.B().Xadd().Key(StreamKey).Id("*").
			FieldValue().
			FieldValue("event_type", event.EventType).
			FieldValue("aggregate_id", event.AggregateID).
			FieldValue("payload", string(event.Payload)).
			Build()

		if err := p.redis.Do(ctx, cmd).Error(); err != nil {
			p.log.Error("publish outbox event failed",
				slog.Int64("event_id", event.ID),
				slog.String("error", err.Error()))
			continue
		}

		if err := p.outbox.MarkPublished(ctx, event.ID); err != nil {
			p.log.Error("mark outbox event published failed",
				slog.Int64("event_id", event.ID),
				slog.String("error", err.Error()))
			continue
		}

		p.log.Debug("published outbox event",
			slog.Int64("event_id", event.ID),
			slog.String("stream", StreamKey))
	}

	return nil
}
