package handler

import (
	"net/http"

	"github.com/vsa-campus/vsa-site/internal/model"
	"github.com/vsa-campus/vsa-site/internal/service"
	"go.uber.org/zap"
)

// IntakeHandler serves the contact, membership, newsletter and volunteer forms.
type IntakeHandler struct {
	svc *service.IntakeService
	log *zap.Logger
}

// NewIntakeHandler constructs an IntakeHandler.
func NewIntakeHandler(svc *service.IntakeService, log *zap.Logger) *IntakeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &IntakeHandler{svc: svc, log: log}
}

// submit decodes the body into req, runs process and writes the envelope.
func submit[T any](h *IntakeHandler, w http.ResponseWriter, r *http.Request, process func(T) (string, error)) {
	var req T
	if err := decodeForm(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := process(req)
	if err != nil {
		if service.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("intake submission failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "something went wrong, please try again later")
		return
	}
	writeJSON(w, http.StatusOK, model.SuccessResponse{Success: true, Message: msg})
}

// Contact handles POST /api/contact
func (h *IntakeHandler) Contact(w http.ResponseWriter, r *http.Request) {
	submit(h, w, r, h.svc.Contact)
}

// Membership handles POST /api/membership
func (h *IntakeHandler) Membership(w http.ResponseWriter, r *http.Request) {
	submit(h, w, r, h.svc.Membership)
}

// Newsletter handles POST /api/newsletter
func (h *IntakeHandler) Newsletter(w http.ResponseWriter, r *http.Request) {
	submit(h, w, r, h.svc.Newsletter)
}

// Volunteer handles POST /api/volunteer
func (h *IntakeHandler) Volunteer(w http.ResponseWriter, r *http.Request) {
	submit(h, w, r, h.svc.Volunteer)
}
