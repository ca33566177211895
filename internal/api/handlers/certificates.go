package handlers

import (
	"errors"
	"net/http"

	"github.com/hackpoint/server/internal/api/respond"
	"github.com/hackpoint/server/internal/domain/certificates"
	"github.com/hackpoint/server/internal/domain/events"
)

type CertificatesHandler struct {
	certificates *certificates.Service
}

func NewCertificatesHandler(service *certificates.Service) *CertificatesHandler {
	return &CertificatesHandler{certificates: service}
}

type issueCertificateRequest struct {
	EventID        int64  `json:"event_id"`
	UserID         int64  `json:"user_id"`
	Title          string `json:"title"`
	CertificateURL string `json:"certificate_url"`
}

func (h *CertificatesHandler) Issue(w http.ResponseWriter, r *http.Request) {
	callerID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}

	var req issueCertificateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	cert, err := h.certificates.Issue(r.Context(), callerID, req.EventID, req.UserID, certificates.Input{
		Title:          req.Title,
		CertificateURL: req.CertificateURL,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.Created(w, "certificate issued", cert)
}

type bulkIssueRequest struct {
	EventID        int64   `json:"event_id"`
	UserIDs        []int64 `json:"user_ids"`
	Title          string  `json:"title"`
	CertificateURL string  `json:"certificate_url"`
}

func (h *CertificatesHandler) BulkIssue(w http.ResponseWriter, r *http.Request) {
	callerID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}

	var req bulkIssueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if len(req.UserIDs) == 0 {
		respond.FieldErrors(w, r, http.StatusBadRequest, "validation failed", []respond.FieldError{
			{Field: "user_ids", Message: "at least one user id is required"},
		})
		return
	}

	result, err := h.certificates.BulkIssue(r.Context(), callerID, req.EventID, req.UserIDs, certificates.Input{
		Title:          req.Title,
		CertificateURL: req.CertificateURL,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.OK(w, "bulk issue complete", result)
}

func (h *CertificatesHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	callerID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}

	eventID, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid event id", err)
		return
	}

	list, err := h.certificates.ListByEvent(r.Context(), callerID, eventID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.List(w, "certificates", list, len(list), nil)
}

func (h *CertificatesHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}

	list, err := h.certificates.ListMine(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.List(w, "certificates", list, len(list), nil)
}

func (h *CertificatesHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if writeReferenceError(w, r, err) || writeValidationError(w, r, err) {
		return
	}
	switch {
	case errors.Is(err, certificates.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "certificate not found", err)
	case errors.Is(err, events.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "event not found", err)
	case errors.Is(err, certificates.ErrNotOrganizer):
		respond.Error(w, r, http.StatusForbidden, "only the event organizer may do this", err)
	case errors.Is(err, certificates.ErrNotEnrolled):
		respond.Error(w, r, http.StatusBadRequest, "user never enrolled in this event", err)
	case errors.Is(err, certificates.ErrAlreadyIssued):
		respond.Error(w, r, http.StatusConflict, "certificate already issued", err)
	default:
		respond.Error(w, r, http.StatusInternalServerError, "certificate operation failed", err)
	}
}
