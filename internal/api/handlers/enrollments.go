package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/hackpoint/server/internal/api/pagination"
	"github.com/hackpoint/server/internal/api/respond"
	"github.com/hackpoint/server/internal/domain/enrollments"
	"github.com/hackpoint/server/internal/domain/events"
)

type EnrollmentsHandler struct {
	enrollments *enrollments.Service
}

func NewEnrollmentsHandler(service *enrollments.Service) *EnrollmentsHandler {
	return &EnrollmentsHandler{enrollments: service}
}

type enrollmentResponse struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"event_id"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	Status    string    `json:"status"`
	TeamID    *int64    `json:"team_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toEnrollmentResponse(e enrollments.Enrollment) enrollmentResponse {
	return enrollmentResponse{
		ID:        e.ID,
		EventID:   e.EventID,
		UserID:    e.UserID,
		UserName:  e.UserName,
		Status:    string(e.Status),
		TeamID:    e.TeamID,
		CreatedAt: e.CreatedAt,
	}
}

func (h *EnrollmentsHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	userID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}
	eventID, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid event id", err)
		return
	}

	enrollment, err := h.enrollments.Enroll(r.Context(), eventID, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	message := "enrolled"
	if enrollment.Status == enrollments.StatusWaitlisted {
		message = "event at capacity, placed on waitlist"
	}
	respond.Created(w, message, toEnrollmentResponse(enrollment))
}

func (h *EnrollmentsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}
	eventID, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid event id", err)
		return
	}

	if err := h.enrollments.Cancel(r.Context(), eventID, userID); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.OK(w, "enrollment cancelled", nil)
}

type associateTeamRequest struct {
	TeamID int64 `json:"team_id"`
}

func (h *EnrollmentsHandler) AssociateTeam(w http.ResponseWriter, r *http.Request) {
	userID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}
	eventID, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid event id", err)
		return
	}

	var req associateTeamRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.TeamID <= 0 {
		respond.FieldErrors(w, r, http.StatusBadRequest, "validation failed",
			[]respond.FieldError{{Field: "team_id", Message: "must be a positive integer"}})
		return
	}

	if err := h.enrollments.AssociateTeam(r.Context(), eventID, userID, req.TeamID); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.OK(w, "team associated with enrollment", nil)
}

func (h *EnrollmentsHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	userID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}
	eventID, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid event id", err)
		return
	}
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid pagination parameters", err)
		return
	}

	list, total, err := h.enrollments.ListByEvent(r.Context(), userID, eventID, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]enrollmentResponse, 0, len(list))
	for _, e := range list {
		items = append(items, toEnrollmentResponse(e))
	}
	respond.List(w, "enrollments", items, len(items), &respond.Pagination{
		Page:       page.Page,
		Limit:      page.Limit,
		TotalItems: total,
		TotalPages: page.TotalPages(total),
	})
}

func (h *EnrollmentsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}
	eventID, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid event id", err)
		return
	}

	stats, err := h.enrollments.Stats(r.Context(), userID, eventID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.OK(w, "enrollment stats", stats)
}

func (h *EnrollmentsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, events.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "event not found", err)
	case errors.Is(err, enrollments.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "enrollment not found", err)
	case errors.Is(err, enrollments.ErrAlreadyEnrolled):
		respond.Error(w, r, http.StatusConflict, "already enrolled in this event", err)
	case errors.Is(err, enrollments.ErrNotEnrolled):
		respond.Error(w, r, http.StatusBadRequest, "no active enrollment for this event", err)
	case errors.Is(err, enrollments.ErrEventInactive):
		respond.Error(w, r, http.StatusBadRequest, "event is not active", err)
	case errors.Is(err, enrollments.ErrEventStarted):
		respond.Error(w, r, http.StatusBadRequest, "event has already started", err)
	case errors.Is(err, enrollments.ErrTeamMismatch):
		respond.Error(w, r, http.StatusBadRequest, "team does not match this event or membership", err)
	case errors.Is(err, enrollments.ErrNotOrganizer):
		respond.Error(w, r, http.StatusForbidden, "only the event organizer may do this", err)
	default:
		respond.Error(w, r, http.StatusInternalServerError, "enrollment operation failed", err)
	}
}
