// Package model defines the core domain types for the event attendance platform.
package model

import (
	"strings"
	"time"
)

// PointsPerAttendance is the fixed loyalty award an attendee receives when the
// host finalizes an event.
const PointsPerAttendance = 50

// DefaultMaxParticipants applies when an event is created without an explicit
// capacity.
const DefaultMaxParticipants = 50

// Event categories form a closed enumeration; anything unrecognized falls back
// to CategoryOther.
const (
	CategorySports    = "Sports"
	CategorySocial    = "Social"
	CategoryEducation = "Education"
	CategoryBusiness  = "Business"
	CategoryOther     = "Other"
)

// Payment methods accepted at event creation.
const (
	PaymentMethodBankTransfer = "Bank Transfer"
	PaymentMethodESewa        = "eSewa"
	PaymentMethodCash         = "Cash"
)

// Account represents a registered user, host or participant.
type Account struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Points       int        `json:"points"`
	PushToken    string     `json:"-"`
	GoogleID     string     `json:"-"`
	PictureURL   string     `json:"profilePicture,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

// Summary strips an account down to the fields embedded in event responses.
func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
	}
}

// AccountSummary is the public projection of an account used when resolving
// hosts and participants on events.
type AccountSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Location is a free-text address with optional coordinates.
type Location struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// PaymentTerms describes how participation is paid for. Amount 0 means free.
type PaymentTerms struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}

// Event represents a hosted gathering with capacity, schedule, and payment
// terms. Participants is resolved on reads; the authoritative set lives in the
// event_participants table.
type Event struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	HostID          string           `json:"hostId"`
	Host            *AccountSummary  `json:"host,omitempty"`
	Location        Location         `json:"location"`
	StartTime       time.Time        `json:"startTime"`
	EndTime         time.Time        `json:"endTime"`
	MaxParticipants int              `json:"maxParticipants"`
	Category        string           `json:"category"`
	IsCompleted     bool             `json:"isCompleted"`
	Participants    []AccountSummary `json:"participants"`
	ImageURL        string           `json:"imageUrl,omitempty"`
	Payment         PaymentTerms     `json:"payment"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// IsFull returns true when no seats remain.
func (e *Event) IsFull() bool {
	return len(e.Participants) >= e.MaxParticipants
}

// TransactionStatus is the recorded outcome of an externally verified payment.
type TransactionStatus string

// Transaction statuses. Only COMPLETE is ever persisted by this service;
// PENDING and FAILED gateway answers are rejected without a record so the
// reference stays usable for a later retry.
const (
	TransactionPending  TransactionStatus = "PENDING"
	TransactionComplete TransactionStatus = "COMPLETE"
	TransactionFailed   TransactionStatus = "FAILED"
)

// Transaction is a recorded, externally-verified payment tied to one event
// join. RefID doubles as the idempotency key: the unique constraint on it is
// the sole replay guard, so a retried or duplicated reference can never
// produce a second record.
type Transaction struct {
	ID        string            `json:"id"`
	EventID   string            `json:"eventId"`
	PayerID   string            `json:"payerId"`
	Amount    float64           `json:"amount"`
	RefID     string            `json:"refId"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

// PaymentStatus is the gateway's answer for a reference code.
type PaymentStatus string

// Gateway statuses. Only PaymentComplete gates a join through.
const (
	PaymentComplete PaymentStatus = "COMPLETE"
	PaymentPending  PaymentStatus = "PENDING"
	PaymentFailed   PaymentStatus = "FAILED"
)

// Notification is a durable history record of a push message. A nil
// RecipientID means broadcast.
type Notification struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	RecipientID *string   `json:"recipientId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NotificationDraft is what domain services hand to the dispatcher after a
// state change commits.
type NotificationDraft struct {
	Title       string  `json:"title"`
	Body        string  `json:"body"`
	RecipientID *string `json:"recipientId,omitempty"`
}

// EventTypeNotification is the outbox event type for queued notifications.
const EventTypeNotification = "notification_created"

// OutboxEvent is a pending side effect persisted alongside the state change
// that produced it, published to the stream by the publisher binary.
type OutboxEvent struct {
	ID          int64      `json:"id"`
	AggregateID string     `json:"aggregate_id"`
	EventType   string     `json:"event_type"`
	Payload     []byte     `json:"payload"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at"`
}

// NotificationQueued is the outbox payload for a recorded notification.
type NotificationQueued struct {
	NotificationID string  `json:"notificationId"`
	Title          string  `json:"title"`
	Body           string  `json:"body"`
	RecipientID    *string `json:"recipientId,omitempty"`
}

// CompletionResult summarises a CompleteEvent call.
type CompletionResult struct {
	AlreadyCompleted bool `json:"alreadyCompleted"`
	AwardedAccounts  int  `json:"awardedAccounts"`
	PointsPerAccount int  `json:"pointsPerAccount"`
}

// EventFilter narrows and pages the public event listing.
type EventFilter struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// Offset converts the 1-based page into a row offset.
func (f EventFilter) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.Limit
}

// NormalizeCategory maps arbitrary input onto the closed category enumeration.
func NormalizeCategory(c string) string {
	switch strings.ToLower(strings.TrimSpace(c)) {
	case "sports":
		return CategorySports
	case "social":
		return CategorySocial
	case "education":
		return CategoryEducation
	case "business":
		return CategoryBusiness
	default:
		return CategoryOther
	}
}
