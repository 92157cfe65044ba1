package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hangaroo/backend/internal/model"
	"github.com/hangaroo/backend/internal/repository"
)

// EventService is the event lifecycle manager: it enforces the legal state
// transitions of an event (create, capacity-bounded join, completion with
// point awards) and emits their notification side effects after the domain
// write commits.
type EventService struct {
	events   repository.EventRepository
	accounts repository.AccountRepository
	notifier Notifier
	log      *slog.Logger
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(
	events repository.EventRepository,
	accounts repository.AccountRepository,
	notifier Notifier,
	log *slog.Logger,
) *EventService {
	return &EventService{events: events, accounts: accounts, notifier: notifier, log: log}
}

// notify records a notification best-effort. Dispatch failures are logged and
// swallowed; they never roll back or fail the domain operation that triggered
// them.
func (s *EventService) notify(ctx context.Context, draft *model.NotificationDraft) {
	if _, err := s.notifier.Record(ctx, draft); err != nil {
		s.log.Error("record notification failed",
			slog.String("title", draft.Title),
			slog.String("error", err.Error()))
	}
}

// Create validates the command and persists the event, then broadcasts a
// best-effort announcement.
func (s *EventService) Create(ctx context.Context, params *model.CreateEventParams) (*model.Event, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	event, err := s.events.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.notify(ctx, &model.NotificationDraft{
		Title: "New event: " + event.Title,
		Body:  fmt.Sprintf("%s is happening at %s. Join now!", event.Title, event.Location.Address),
	})
	return event, nil
}

// Get returns a single event with host and participants resolved.
func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, model.ErrNotFound
	}
	return s.events.GetByID(ctx, id)
}

// List returns a page of events matching the filter.
func (s *EventService) List(ctx context.Context, filter model.EventFilter) ([]model.Event, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.events.List(ctx, filter)
}

// ListJoined returns the events the account participates in.
func (s *EventService) ListJoined(ctx context.Context, accountID string) ([]model.Event, error) {
	return s.events.ListJoined(ctx, accountID)
}

// ListHosted returns the events the account hosts.
func (s *EventService) ListHosted(ctx context.Context, hostID string) ([]model.Event, error) {
	return s.events.ListHosted(ctx, hostID)
}

// ListOngoing returns the host's not-yet-completed events.
func (s *EventService) ListOngoing(ctx context.Context, hostID string) ([]model.Event, error) {
	return s.events.ListOngoing(ctx, hostID)
}

// Join adds the account to the event's participant set. The membership,
// capacity, and not-completed checks run atomically in the repository, so two
// concurrent joins can never both pass validation. On success the joiner and
// the host each get a best-effort notification.
func (s *EventService) Join(ctx context.Context, eventID, accountID string) (*model.Event, error) {
	if eventID == "" {
		return nil, model.ErrNotFound
	}

	if err := s.events.Join(ctx, eventID, accountID); err != nil {
		return nil, err
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("reload event after join: %w", err)
	}

	joinerName := "Someone"
	if joiner, err := s.accounts.GetByID(ctx, accountID); err == nil {
		joinerName = joiner.FirstName
	}

	s.notify(ctx, &model.NotificationDraft{
		Title:       "You're in!",
		Body:        fmt.Sprintf("You joined %s. See you there!", event.Title),
		RecipientID: &accountID,
	})
	s.notify(ctx, &model.NotificationDraft{
		Title:       "New attendee",
		Body:        fmt.Sprintf("%s joined your event %s.", joinerName, event.Title),
		RecipientID: &event.HostID,
	})

	return event, nil
}

// Complete finalizes an event on behalf of its host and awards points to the
// attended participants. The flag flip and the awards run in one repository
// transaction guarded on the current flag value, so a repeat call reports
// AlreadyCompleted and awards nothing.
func (s *EventService) Complete(ctx context.Context, eventID, hostID string, attendedIDs []string) (*model.CompletionResult, error) {
	if eventID == "" {
		return nil, model.ErrNotFound
	}

	result, err := s.events.Complete(ctx, eventID, hostID, attendedIDs)
	if err != nil {
		return nil, err
	}

	if !result.AlreadyCompleted {
		s.notify(ctx, &model.NotificationDraft{
			Title:       "Event finalized",
			Body:        fmt.Sprintf("Attendance recorded for %d participant(s); %d points awarded each.", result.AwardedAccounts, result.PointsPerAccount),
			RecipientID: &hostID,
		})
	}
	return result, nil
}
