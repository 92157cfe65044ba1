package handler

import (
	"net/http"

	"github.com/hangaroo/backend/internal/model"
	"github.com/hangaroo/backend/internal/service"
)

// PaymentHandler holds the HTTP handler for manual payment verification.
type PaymentHandler struct {
	svc *service.PaymentService
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type verifyManualRequest struct {
	RefID   string  `json:"refId"`
	EventID string  `json:"eventId"`
	Amount  float64 `json:"amount"`
}

// VerifyManual handles POST /payment/verify-manual
// The payer is always the authenticated caller.
func (h *PaymentHandler) VerifyManual(w http.ResponseWriter, r *http.Request) {
	var req verifyManualRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	txn, err := h.svc.VerifyManual(r.Context(), &model.VerifyPaymentParams{
		RefID:   req.RefID,
		EventID: req.EventID,
		PayerID: AccountID(r),
		Amount:  req.Amount,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}
