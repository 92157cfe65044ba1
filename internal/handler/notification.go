package handler

import (
	"net/http"

	"github.com/hangaroo/backend/internal/model"
	"github.com/hangaroo/backend/internal/service"
)

// NotificationHandler holds the HTTP handlers for notification history and
// manual broadcasts.
type NotificationHandler struct {
	svc *service.NotificationService
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List handles GET /notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.svc.History(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

type broadcastRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Send handles POST /notifications/send
// Records the broadcast; delivery happens through the outbox pipeline.
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	notification, err := h.svc.Broadcast(r.Context(), req.Title, req.Body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, notification)
}
