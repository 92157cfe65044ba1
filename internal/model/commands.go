package model

import (
	"fmt"
	"strings"
	"time"
)

// CreateEventParams is the validated command for creating an event. Loose
// request bodies are coerced into this struct at the API boundary before they
// reach the lifecycle manager.
type CreateEventParams struct {
	HostID          string
	Title           string
	Description     string
	Address         string
	Lat             *float64
	Lng             *float64
	StartTime       time.Time
	EndTime         time.Time
	MaxParticipants int
	Category        string
	PaymentMethod   string
	Amount          float64
	ImageURL        string
}

// Validate checks required fields and applies defaults in place.
func (p *CreateEventParams) Validate() error {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.Address = strings.TrimSpace(p.Address)

	if p.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if p.Description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if p.Address == "" {
		return fmt.Errorf("%w: location is required", ErrValidation)
	}
	if p.MaxParticipants == 0 {
		p.MaxParticipants = DefaultMaxParticipants
	}
	if p.MaxParticipants < 0 {
		return fmt.Errorf("%w: maxParticipants must be positive", ErrValidation)
	}
	if p.StartTime.IsZero() {
		p.StartTime = time.Now().UTC()
	}
	if p.EndTime.IsZero() {
		p.EndTime = p.StartTime
	}
	if p.EndTime.Before(p.StartTime) {
		return fmt.Errorf("%w: endTime must not be before startTime", ErrValidation)
	}
	p.Category = NormalizeCategory(p.Category)
	if p.PaymentMethod == "" {
		p.PaymentMethod = PaymentMethodBankTransfer
	}
	if p.Amount < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	return nil
}

// SignUpParams is the command for creating a credential-backed account.
type SignUpParams struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Validate checks the signup payload.
func (p *SignUpParams) Validate() error {
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	if p.Email == "" || !strings.Contains(p.Email, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if len(p.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	if strings.TrimSpace(p.FirstName) == "" {
		return fmt.Errorf("%w: firstName is required", ErrValidation)
	}
	return nil
}

// SignInParams is the command for exchanging credentials for a token.
type SignInParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleAccountParams carries a verified external identity for upsert.
type GoogleAccountParams struct {
	Email      string
	FirstName  string
	LastName   string
	GoogleID   string
	PictureURL string
}

// VerifyPaymentParams is the command for the manual payment-verification path.
// PayerID is always the authenticated caller, never taken from the body.
type VerifyPaymentParams struct {
	RefID   string
	EventID string
	PayerID string
	Amount  float64
}

// Validate checks the verification payload. RefID is matched case-sensitively
// against recorded transactions, so it is trimmed but never case-folded.
func (p *VerifyPaymentParams) Validate() error {
	p.RefID = strings.TrimSpace(p.RefID)
	if p.RefID == "" {
		return fmt.Errorf("%w: refId is required", ErrValidation)
	}
	if p.EventID == "" {
		return fmt.Errorf("%w: eventId is required", ErrValidation)
	}
	if p.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	return nil
}
