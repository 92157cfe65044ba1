package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hangaroo/backend/internal/model"
	"github.com/hangaroo/backend/internal/service"
)

// EventHandler holds the HTTP handlers for the event lifecycle.
type EventHandler struct {
	svc     *service.EventService
	uploads *Uploads
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService, uploads *Uploads) *EventHandler {
	return &EventHandler{svc: svc, uploads: uploads}
}

const maxUploadSize = 10 << 20 // 10 MB including the cover photo

// Create handles POST /events
// Multipart body: title, description, location, category, maxParticipants,
// price, paymentMethod, startTime, endTime (RFC 3339), optional coverPhoto.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body: "+err.Error())
		return
	}

	params := &model.CreateEventParams{
		HostID:        AccountID(r),
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		Address:       r.FormValue("location"),
		Category:      r.FormValue("category"),
		PaymentMethod: r.FormValue("paymentMethod"),
	}

	if v := r.FormValue("maxParticipants"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "maxParticipants must be an integer")
			return
		}
		params.MaxParticipants = n
	}
	if v := r.FormValue("price"); v != "" {
		amount, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "price must be a number")
			return
		}
		params.Amount = amount
	}
	for field, dst := range map[string]*time.Time{
		"startTime": &params.StartTime,
		"endTime":   &params.EndTime,
	} {
		if v := r.FormValue(field); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				writeError(w, http.StatusBadRequest, field+" must be RFC 3339")
				return
			}
			*dst = t
		}
	}

	if file, header, err := r.FormFile("coverPhoto"); err == nil {
		defer file.Close()
		url, saveErr := h.uploads.Save(file, header)
		if saveErr != nil {
			writeError(w, http.StatusInternalServerError, "failed to store cover photo")
			return
		}
		params.ImageURL = url
	}

	event, err := h.svc.Create(r.Context(), params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// List handles GET /events?category&search&page&limit
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.EventFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	events, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	writeEventList(w, events)
}

// ListJoined handles GET /events/joined
func (h *EventHandler) ListJoined(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListJoined(r.Context(), AccountID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list joined events")
		return
	}
	writeEventList(w, events)
}

// ListHosted handles GET /events/hosted
func (h *EventHandler) ListHosted(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListHosted(r.Context(), AccountID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list hosted events")
		return
	}
	writeEventList(w, events)
}

// ListOngoing handles GET /events/ongoing
func (h *EventHandler) ListOngoing(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListOngoing(r.Context(), AccountID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list ongoing events")
		return
	}
	writeEventList(w, events)
}

// Get handles GET /events/{eventID}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.Get(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Join handles POST /events/{eventID}/join
func (h *EventHandler) Join(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.Join(r.Context(), chi.URLParam(r, "eventID"), AccountID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

type completeRequest struct {
	AttendedParticipantIDs []string `json:"attendedParticipantIds"`
}

// Complete handles POST /events/{eventID}/complete
func (h *EventHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.Complete(r.Context(), chi.URLParam(r, "eventID"), AccountID(r), req.AttendedParticipantIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeEventList returns an empty array rather than null for better client
// compatibility.
func writeEventList(w http.ResponseWriter, events []model.Event) {
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
