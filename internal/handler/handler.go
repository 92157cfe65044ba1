// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hangaroo/backend/internal/auth"
	"github.com/hangaroo/backend/internal/model"
)

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeDomainError maps domain errors onto HTTP statuses. Anything not in the
// taxonomy is a 500 with a generic message.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, model.ErrAlreadyJoined):
		writeError(w, http.StatusConflict, "already joined this event")
	case errors.Is(err, model.ErrEventFull):
		writeError(w, http.StatusConflict, "event is full")
	case errors.Is(err, model.ErrEventCompleted):
		writeError(w, http.StatusConflict, "event is already completed")
	case errors.Is(err, model.ErrDuplicateReference):
		writeError(w, http.StatusConflict, "payment reference already used")
	case errors.Is(err, model.ErrPaymentNotVerified):
		writeError(w, http.StatusBadRequest, "payment not verified by gateway")
	case errors.Is(err, model.ErrGatewayUnavailable):
		writeError(w, http.StatusBadGateway, "payment gateway unavailable")
	case errors.Is(err, model.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, model.ErrInvalidCredentials):
		writeError(w, http.StatusForbidden, "invalid email or password")
	case errors.Is(err, auth.ErrGoogleToken):
		writeError(w, http.StatusUnauthorized, "google authentication failed")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
