package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hangaroo/backend/internal/auth"
	"github.com/hangaroo/backend/internal/model"
)

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.ErrValidation, http.StatusBadRequest},
		{fmt.Errorf("%w: title is required", model.ErrValidation), http.StatusBadRequest},
		{model.ErrNotFound, http.StatusNotFound},
		{model.ErrAlreadyJoined, http.StatusConflict},
		{model.ErrEventFull, http.StatusConflict},
		{model.ErrEventCompleted, http.StatusConflict},
		{model.ErrDuplicateReference, http.StatusConflict},
		{model.ErrEmailTaken, http.StatusConflict},
		{model.ErrPaymentNotVerified, http.StatusBadRequest},
		{model.ErrGatewayUnavailable, http.StatusBadGateway},
		{model.ErrInvalidCredentials, http.StatusForbidden},
		{auth.ErrGoogleToken, http.StatusUnauthorized},
		{errors.New("pool exhausted"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, tt.err)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestWriteDomainErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	writeDomainError(rec, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "internal server error" {
		t.Errorf("error = %q, internal detail must not leak", body.Error)
	}
}

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q, want application/json", ct)
	}
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	token, err := tokens.Mint("acc-1")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	expired, err := auth.NewTokenManager("test-secret", -time.Minute).Mint("acc-1")
	if err != nil {
		t.Fatalf("mint expired: %v", err)
	}

	var gotAccountID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccountID = AccountID(r)
		w.WriteHeader(http.StatusNoContent)
	})
	protected := Auth(tokens)(next)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + token, http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"malformed token", "Bearer not.a.token", http.StatusUnauthorized},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + mustMint(t, "other-secret"), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotAccountID = ""
			req := httptest.NewRequest(http.MethodGet, "/api/v1/user/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusNoContent && gotAccountID != "acc-1" {
				t.Errorf("account id = %q, want acc-1", gotAccountID)
			}
			if tt.want == http.StatusUnauthorized && gotAccountID != "" {
				t.Error("handler ran despite rejected token")
			}
		})
	}
}

func mustMint(t *testing.T, secret string) string {
	t.Helper()
	token, err := auth.NewTokenManager(secret, time.Hour).Mint("acc-1")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return token
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name": "x", "bogus": true}`))
	if err := decodeJSON(req, &dst); err == nil {
		t.Fatal("want error for unknown field")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name": "x"}`))
	if err := decodeJSON(req, &dst); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dst.Name != "x" {
		t.Errorf("name = %q, want x", dst.Name)
	}
}
