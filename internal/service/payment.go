package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hangaroo/backend/internal/model"
	"github.com/hangaroo/backend/internal/repository"
)

// PaymentGateway is the external payment-verifier contract. Only a COMPLETE
// answer gates a join through; everything else is a rejected attempt that is
// never retried server-side.
type PaymentGateway interface {
	Status(ctx context.Context, refID string, amount float64) (model.PaymentStatus, error)
}

// PaymentService verifies manual payments against the gateway and, on
// success, records the transaction and joins the payer to the event as one
// atomic unit.
type PaymentService struct {
	gateway      PaymentGateway
	transactions repository.TransactionRepository
	events       repository.EventRepository
	notifier     Notifier
	log          *slog.Logger
}

// NewPaymentService constructs a PaymentService with its dependencies.
func NewPaymentService(
	gateway PaymentGateway,
	transactions repository.TransactionRepository,
	events repository.EventRepository,
	notifier Notifier,
	log *slog.Logger,
) *PaymentService {
	return &PaymentService{
		gateway:      gateway,
		transactions: transactions,
		events:       events,
		notifier:     notifier,
		log:          log,
	}
}

// VerifyManual checks the reference against the gateway and joins the payer.
//
// The pre-check against recorded transactions keeps obvious replays away from
// the gateway, but the real duplicate guard is the unique constraint enforced
// inside RecordVerified: two concurrent submissions of the same reference
// both pass the pre-check at most once past the insert, and the loser gets
// ErrDuplicateReference. Paid joins respect the same capacity and membership
// rules as free joins; a rejection rolls the transaction record back so the
// reference stays usable.
func (s *PaymentService) VerifyManual(ctx context.Context, params *model.VerifyPaymentParams) (*model.Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	used, err := s.transactions.RefExists(ctx, params.RefID)
	if err != nil {
		return nil, fmt.Errorf("check reference: %w", err)
	}
	if used {
		return nil, model.ErrDuplicateReference
	}

	status, err := s.gateway.Status(ctx, params.RefID, params.Amount)
	if err != nil {
		return nil, err
	}
	if status != model.PaymentComplete {
		return nil, fmt.Errorf("%w: gateway reported %s", model.ErrPaymentNotVerified, status)
	}

	txn, err := s.transactions.RecordVerified(ctx, params)
	if err != nil {
		return nil, err
	}

	event, err := s.events.GetByID(ctx, params.EventID)
	if err != nil {
		s.log.Error("load event for payment notification failed",
			slog.String("event_id", params.EventID),
			slog.String("error", err.Error()))
		return txn, nil
	}

	s.notifyRecorded(ctx, &model.NotificationDraft{
		Title:       "Payment confirmed",
		Body:        fmt.Sprintf("Your payment for %s was verified. You're in!", event.Title),
		RecipientID: &params.PayerID,
	})
	s.notifyRecorded(ctx, &model.NotificationDraft{
		Title:       "New paid attendee",
		Body:        fmt.Sprintf("A verified payment joined your event %s.", event.Title),
		RecipientID: &event.HostID,
	})

	return txn, nil
}

func (s *PaymentService) notifyRecorded(ctx context.Context, draft *model.NotificationDraft) {
	if _, err := s.notifier.Record(ctx, draft); err != nil {
		s.log.Error("record notification failed",
			slog.String("title", draft.Title),
			slog.String("error", err.Error()))
	}
}
