package model

import (
	"errors"
	"testing"
	"time"
)

func TestCreateEventParamsDefaults(t *testing.T) {
	params := CreateEventParams{
		Title:       "  Morning Run  ",
		Description: "5k around the lake",
		Address:     "Lakeside park",
		Category:    "SPORTS",
	}
	if err := params.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if params.Title != "Morning Run" {
		t.Errorf("title = %q, want trimmed", params.Title)
	}
	if params.MaxParticipants != DefaultMaxParticipants {
		t.Errorf("maxParticipants = %d, want %d", params.MaxParticipants, DefaultMaxParticipants)
	}
	if params.Category != CategorySports {
		t.Errorf("category = %q, want %q", params.Category, CategorySports)
	}
	if params.PaymentMethod != PaymentMethodBankTransfer {
		t.Errorf("paymentMethod = %q, want %q", params.PaymentMethod, PaymentMethodBankTransfer)
	}
	if params.StartTime.IsZero() || params.EndTime.Before(params.StartTime) {
		t.Errorf("times not defaulted: start=%v end=%v", params.StartTime, params.EndTime)
	}
}

func TestCreateEventParamsRejections(t *testing.T) {
	base := func() CreateEventParams {
		return CreateEventParams{Title: "t", Description: "d", Address: "a"}
	}
	tests := []struct {
		name   string
		mutate func(*CreateEventParams)
	}{
		{"blank title", func(p *CreateEventParams) { p.Title = "   " }},
		{"blank description", func(p *CreateEventParams) { p.Description = "" }},
		{"blank location", func(p *CreateEventParams) { p.Address = "" }},
		{"negative capacity", func(p *CreateEventParams) { p.MaxParticipants = -1 }},
		{"negative price", func(p *CreateEventParams) { p.Amount = -10 }},
		{"end before start", func(p *CreateEventParams) {
			p.StartTime = time.Now().Add(2 * time.Hour)
			p.EndTime = time.Now().Add(time.Hour)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := base()
			tt.mutate(&params)
			if err := params.Validate(); !errors.Is(err, ErrValidation) {
				t.Fatalf("want ErrValidation, got %v", err)
			}
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sports", CategorySports},
		{"Sports", CategorySports},
		{"  social ", CategorySocial},
		{"", CategoryOther},
		{"skydiving", CategoryOther},
	}
	for _, tt := range tests {
		if got := NormalizeCategory(tt.in); got != tt.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSignUpParamsValidate(t *testing.T) {
	params := SignUpParams{Email: " Alice@Example.COM ", Password: "hunter22", FirstName: "Alice"}
	if err := params.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if params.Email != "alice@example.com" {
		t.Errorf("email = %q, want lowercased and trimmed", params.Email)
	}

	bad := []SignUpParams{
		{Email: "", Password: "hunter22", FirstName: "A"},
		{Email: "not-an-email", Password: "hunter22", FirstName: "A"},
		{Email: "a@b.com", Password: "short", FirstName: "A"},
		{Email: "a@b.com", Password: "hunter22", FirstName: "  "},
	}
	for _, p := range bad {
		params := p
		if err := params.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("%+v: want ErrValidation, got %v", p, err)
		}
	}
}

func TestVerifyPaymentParamsValidate(t *testing.T) {
	params := VerifyPaymentParams{RefID: " ESW-001 ", EventID: "e1", PayerID: "p1", Amount: 100}
	if err := params.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if params.RefID != "ESW-001" {
		t.Errorf("refId = %q, want trimmed, not case-folded", params.RefID)
	}

	mixed := VerifyPaymentParams{RefID: "esw-001", EventID: "e1", PayerID: "p1", Amount: 100}
	if err := mixed.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if mixed.RefID != "esw-001" {
		t.Errorf("refId = %q, case must be preserved", mixed.RefID)
	}
}
