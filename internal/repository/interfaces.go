// Package repository provides data access interfaces and their PostgreSQL
// implementations. Concurrency-sensitive operations (join, complete, verified
// payment) are implemented as single transactions with a row lock on the
// event, so invariants never depend on separate read-then-write steps.
package repository

import (
	"context"

	"github.com/hangaroo/backend/internal/model"
)

// AccountRepository defines methods for account data access.
type AccountRepository interface {
	Create(ctx context.Context, email, passwordHash, firstName, lastName string) (*model.Account, error)
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	UpsertGoogle(ctx context.Context, params *model.GoogleAccountParams) (*model.Account, error)
	SetPushToken(ctx context.Context, id, token string) error
	TouchLastLogin(ctx context.Context, id string) error
	// ListPushTokens resolves delivery addresses for a notification target.
	// A nil recipient means every account with a registered token.
	ListPushTokens(ctx context.Context, recipientID *string) ([]string, error)
}

// EventRepository defines methods for event data access and the atomic state
// transitions of the event lifecycle.
type EventRepository interface {
	Create(ctx context.Context, params *model.CreateEventParams) (*model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context, filter model.EventFilter) ([]model.Event, error)
	ListJoined(ctx context.Context, accountID string) ([]model.Event, error)
	ListHosted(ctx context.Context, hostID string) ([]model.Event, error)
	ListOngoing(ctx context.Context, hostID string) ([]model.Event, error)
	// Join atomically adds the account to the participant set, enforcing the
	// membership, capacity, and not-completed invariants under a row lock.
	Join(ctx context.Context, eventID, accountID string) error
	// Complete flips is_completed exactly once, marks attendance, and awards
	// points to attended ids that are actual participants, all in one
	// transaction. A repeat call reports AlreadyCompleted with zero awards.
	Complete(ctx context.Context, eventID, hostID string, attendedIDs []string) (*model.CompletionResult, error)
}

// TransactionRepository defines methods for payment transaction data access.
type TransactionRepository interface {
	RefExists(ctx context.Context, refID string) (bool, error)
	// RecordVerified creates the COMPLETE transaction and adds the payer to
	// the event's participant set as one unit of failure. The unique ref_id
	// constraint collapses concurrent duplicates into ErrDuplicateReference.
	RecordVerified(ctx context.Context, params *model.VerifyPaymentParams) (*model.Transaction, error)
}

// NotificationRepository defines methods for notification history and the
// outbox rows that drive delivery.
type NotificationRepository interface {
	// Record persists the history row and its outbox entry in one transaction.
	Record(ctx context.Context, draft *model.NotificationDraft) (*model.Notification, error)
	List(ctx context.Context) ([]model.Notification, error)
}

// OutboxRepository defines methods for outbox event data access.
type OutboxRepository interface {
	GetUnpublished(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkPublished(ctx context.Context, id int64) error
}
