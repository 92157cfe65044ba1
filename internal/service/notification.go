// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/hangaroo/backend/internal/model"
	"github.com/hangaroo/backend/internal/repository"
)

// Notifier is the outbound side-effect contract the lifecycle manager depends
// on. Recording persists the history row and queues delivery; it happens after
// the domain write commits and its failure never propagates to the caller.
type Notifier interface {
	Record(ctx context.Context, draft *model.NotificationDraft) (*model.Notification, error)
}

// NotificationService handles the notification history and manual broadcasts.
type NotificationService struct {
	notifications repository.NotificationRepository
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(notifications repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// Record persists a notification and queues it for delivery.
func (s *NotificationService) Record(ctx context.Context, draft *model.NotificationDraft) (*model.Notification, error) {
	return s.notifications.Record(ctx, draft)
}

// History returns all recorded notifications, newest first.
func (s *NotificationService) History(ctx context.Context) ([]model.Notification, error) {
	return s.notifications.List(ctx)
}

// Broadcast validates and records a manual broadcast notification.
func (s *NotificationService) Broadcast(ctx context.Context, title, body string) (*model.Notification, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" || body == "" {
		return nil, fmt.Errorf("%w: title and body are required", model.ErrValidation)
	}
	return s.notifications.Record(ctx, &model.NotificationDraft{Title: title, Body: body})
}
