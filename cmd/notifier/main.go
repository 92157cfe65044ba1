// Package main provides the notifier that consumes queued notification events
// from Redis Streams and delivers them through the push gateway. Delivery is
// best-effort by contract: failures are logged and never feed back into
// domain state.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/rueidis"

	"github.com/hangaroo/backend/internal/config"
	"github.com/hangaroo/backend/internal/database"
	"github.com/hangaroo/backend/internal/logger"
	"github.com/hangaroo/backend/internal/model"
	"github.com/hangaroo/backend/internal/outbox"
	"github.com/hangaroo/backend/internal/push"
	"github.com/hangaroo/backend/internal/repository"
)

const (
	groupName         = "push-delivery"
	redisBlockTimeout = 1000 // milliseconds
	errorRetryDelay   = 1 * time.Second
)

// MessageHandler processes notification events from the stream.
type MessageHandler struct {
	redisClient rueidis.Client
	accounts    repository.AccountRepository
	pushClient  *push.Client
}

// NewMessageHandler creates a message handler instance.
func NewMessageHandler(redisClient rueidis.Client, accounts repository.AccountRepository, pushClient *push.Client) *MessageHandler {
	return &MessageHandler{redisClient: redisClient, accounts: accounts, pushClient: pushClient}
}

// HandleNotificationQueued resolves the target push tokens and delivers the
// message. Missing tokens are not an error; there is simply nothing to send.
func (h *MessageHandler) HandleNotificationQueued(ctx context.Context, event *model.NotificationQueued) error {
	tokens, err := h.accounts.ListPushTokens(ctx, event.RecipientID)
	if err != nil {
		return fmt.Errorf("resolve push tokens: %w", err)
	}
	if len(tokens) == 0 {
		slog.Debug("no push tokens for notification", slog.String("notification_id", event.NotificationID))
		return nil
	}

	success, failure, err := h.pushClient.Send(ctx, tokens, event.Title, event.Body)
	if err != nil {
		// Logged, not returned: the history record already exists and a
		// gateway hiccup must not wedge the stream on one message.
		slog.Error("push delivery failed",
			slog.String("notification_id", event.NotificationID),
			slog.String("error", err.Error()))
		return nil
	}

	slog.Info("notification delivered",
		slog.String("notification_id", event.NotificationID),
		slog.Int("success", success),
		slog.Int("failure", failure))
	return nil
}

func (h *MessageHandler) readMessages(ctx context.Context, consumerName string) (map[string][]rueidis.XRangeEntry, error) {
	readCmd := h.redisClient.B().Xreadgroup().Group(groupName, consumerName).
		Count(1).
		Block(redisBlockTimeout).
		Streams().
		Key(outbox.StreamKey).
		Id(">").
		Build()

	result := h.redisClient.Do(ctx, readCmd)
	if err := result.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil // block timeout, nothing pending
		}
		return nil, err
	}
	return result.AsXRead()
}

func (h *MessageHandler) acknowledgeMessage(ctx context.Context, messageID string) {
	ackCmd := h.redisClient.B().Xack().Key(outbox.StreamKey).Group(groupName).Id(messageID).Build()
	if err := h.redisClient.Do(ctx, ackCmd).Error(); err != nil {
		slog.Error("failed to ACK message",
			slog.String("message_id", messageID),
			slog.String("error", err.Error()))
	}
}

func (h *MessageHandler) processMessage(ctx context.Context, message rueidis.XRangeEntry) error {
	eventType, ok := message.FieldValues["event_type"]
	if !ok {
		return errors.New("missing event_type in message")
	}
	payload, ok := message.FieldValues["payload"]
	if !ok {
		return errors.New("missing payload in message")
	}

	switch eventType {
	case model.EventTypeNotification:
		var event model.NotificationQueued
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			return fmt.Errorf("parse notification payload: %w", err)
		}
		return h.HandleNotificationQueued(ctx, &event)
	default:
		slog.Warn("unknown event type", slog.String("event_type", eventType))
		return nil
	}
}

func (h *MessageHandler) consumeMessages(ctx context.Context, consumerName string) error {
	streams, err := h.readMessages(ctx, consumerName)
	if err != nil {
		return err
	}
	if streams == nil {
		return nil
	}

	for _, messages := range streams {
		for _, message := range messages {
			if err := h.processMessage(ctx, message); err != nil {
				slog.Error("failed to process message",
					slog.String("message_id", message.ID),
					slog.String("error", err.Error()))
				continue
			}
			h.acknowledgeMessage(ctx, message.ID)
		}
	}
	return nil
}

func createConsumerGroup(ctx context.Context, redisClient rueidis.Client) {
	createGroupCmd := redisClient.B().XgroupCreate().Key(outbox.StreamKey).Group(groupName).Id("0").Mkstream().Build()
	if err := redisClient.Do(ctx, createGroupCmd).Error(); err != nil {
		slog.Info("consumer group creation result (may already exist)", slog.String("error", err.Error()))
	}
}

func setupSignalHandling() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("shutdown signal received, stopping notifier")
		cancel()
	}()

	return ctx, cancel
}

func runConsumerLoop(ctx context.Context, handler *MessageHandler, consumerName string) {
	for {
		select {
		case <-ctx.Done():
			slog.Info("notifier stopped")
			return
		default:
			if err := handler.consumeMessages(ctx, consumerName); err != nil {
				slog.Error("error consuming messages", slog.String("error", err.Error()))
				time.Sleep(errorRetryDelay)
			}
		}
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.Setup(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, cancel := setupSignalHandling()
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{cfg.RedisAddr},
	})
	if err != nil {
		log.Error("redis connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	accounts := repository.NewAccountRepository(pool)
	pushClient := push.NewClient(cfg.PushGatewayURL, cfg.PushServerKey)
	handler := NewMessageHandler(redisClient, accounts, pushClient)

	createConsumerGroup(ctx, redisClient)

	log.Info("starting notifier",
		slog.String("stream", outbox.StreamKey),
		slog.String("group", groupName),
		slog.String("consumer", cfg.ConsumerName))

	runConsumerLoop(ctx, handler, cfg.ConsumerName)
}
