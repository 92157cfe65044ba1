package model

import "errors"

// Domain errors. Handlers map these to HTTP statuses with errors.Is; anything
// not listed here surfaces as a 500.
var (
	// ErrValidation wraps any bad-input rejection at the service boundary.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a requested resource does not exist, or
	// exists under a different owner (ownership is checked as part of the
	// lookup, so callers cannot probe for other hosts' events).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyJoined is returned when an account is already in the event's
	// participant set.
	ErrAlreadyJoined = errors.New("already joined this event")
	// ErrEventFull is returned when the participant set has reached the
	// event's capacity.
	ErrEventFull = errors.New("event is full")
	// ErrEventCompleted is returned when an operation targets a finalized
	// event; completed is terminal and accepts no further joins.
	ErrEventCompleted = errors.New("event is already completed")
	// ErrDuplicateReference is returned when a payment reference code already
	// has a recorded transaction.
	ErrDuplicateReference = errors.New("payment reference already used")
	// ErrPaymentNotVerified is returned when the gateway reports any status
	// other than COMPLETE for the reference.
	ErrPaymentNotVerified = errors.New("payment not verified by gateway")
	// ErrGatewayUnavailable is returned when the gateway status call itself
	// fails: timeout, non-2xx, or an undecodable response.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrEmailTaken is returned on signup with an email that already has an
	// account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on signin with an unknown email or a
	// wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
