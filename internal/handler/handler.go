// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vsa-campus/vsa-site/internal/catalog"
	"github.com/vsa-campus/vsa-site/internal/model"
	"github.com/vsa-campus/vsa-site/internal/service"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20 // 1 MB

// EventHandler holds the event directory and admin console handlers.
type EventHandler struct {
	svc *service.EventService
	log *zap.Logger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService, log *zap.Logger) *EventHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventHandler{svc: svc, log: log}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// decodeForm is decodeJSON without the unknown-field check. The public
// forms post extra UI-only fields (consent boxes, honeypots).
func decodeForm(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// writeServiceError maps service and catalog errors to status codes.
// Unexpected errors are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "event not found")
	case errors.Is(err, catalog.ErrCapacityReached):
		writeError(w, http.StatusConflict, "event is fully booked")
	case errors.Is(err, catalog.ErrCapacityBelowAttendees):
		writeError(w, http.StatusConflict, "maxAttendees is below the current attendee count")
	case errors.Is(err, catalog.ErrNoAttendees):
		writeError(w, http.StatusConflict, "event has no attendees to remove")
	case errors.Is(err, service.ErrRSVPClosed):
		writeError(w, http.StatusConflict, "rsvp is closed for this event")
	default:
		log.Error("unexpected error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func nonNil(events []model.Event) []model.Event {
	if events == nil {
		return []model.Event{}
	}
	return events
}

// ─── Public directory ─────────────────────────────────────────────────────────

// ListEvents handles GET /api/events?view=upcoming|past|featured&category=<c>
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events, err := h.svc.Directory(q.Get("view"), q.Get("category"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(events))
}

// ListCategories handles GET /api/events/categories
func (h *EventHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.Categories())
}

// GetEvent handles GET /api/events/{id}
// Only published events are visible.
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.PublicEvent(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// RSVP handles POST /api/events/{id}/rsvp
func (h *EventHandler) RSVP(w http.ResponseWriter, r *http.Request) {
	var req model.RSVPRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.RSVP(chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// ─── Admin console ────────────────────────────────────────────────────────────

// AdminListEvents handles GET /api/admin/events
// Returns every event including unpublished ones.
func (h *EventHandler) AdminListEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(h.svc.ListAll()))
}

// AdminGetEvent handles GET /api/admin/events/{id}
func (h *EventHandler) AdminGetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.GetEvent(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// CreateEvent handles POST /api/admin/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var draft model.EventDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(draft)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// UpdateEvent handles PATCH /api/admin/events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var patch model.EventPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.UpdateEvent(chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /api/admin/events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEvent(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TogglePublish handles POST /api/admin/events/{id}/publish
func (h *EventHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.TogglePublish(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// AddAttendee handles POST /api/admin/events/{id}/attendees
func (h *EventHandler) AddAttendee(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.AddAttendee(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// RemoveAttendee handles DELETE /api/admin/events/{id}/attendees
func (h *EventHandler) RemoveAttendee(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.RemoveAttendee(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
