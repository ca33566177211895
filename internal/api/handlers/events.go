package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/hackpoint/server/internal/api/pagination"
	"github.com/hackpoint/server/internal/api/respond"
	"github.com/hackpoint/server/internal/domain/events"
)

type EventsHandler struct {
	events *events.Service
}

func NewEventsHandler(eventsService *events.Service) *EventsHandler {
	return &EventsHandler{events: eventsService}
}

type eventRequest struct {
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
	SubmissionDeadline time.Time `json:"submission_deadline"`
	MaxTeamSize        int       `json:"max_team_size"`
	ParticipantLimit   int       `json:"participant_limit"`
}

func (req eventRequest) toInput() events.EventInput {
	return events.EventInput{
		Name:               req.Name,
		Description:        req.Description,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		SubmissionDeadline: req.SubmissionDeadline,
		MaxTeamSize:        req.MaxTeamSize,
		ParticipantLimit:   req.ParticipantLimit,
	}
}

type eventResponse struct {
	ID                 int64     `json:"id"`
	OrganizerID        int64     `json:"organizer_id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
	SubmissionDeadline time.Time `json:"submission_deadline"`
	MaxTeamSize        int       `json:"max_team_size"`
	ParticipantLimit   int       `json:"participant_limit"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
}

func toEventResponse(e events.Event) eventResponse {
	return eventResponse{
		ID:                 e.ID,
		OrganizerID:        e.OrganizerID,
		Name:               e.Name,
		Description:        e.Description,
		StartTime:          e.StartTime,
		EndTime:            e.EndTime,
		SubmissionDeadline: e.SubmissionDeadline,
		MaxTeamSize:        e.MaxTeamSize,
		ParticipantLimit:   e.ParticipantLimit,
		IsActive:           e.IsActive,
		CreatedAt:          e.CreatedAt,
	}
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	organizerID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}

	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	event, err := h.events.Create(r.Context(), organizerID, req.toInput())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.Created(w, "event created", toEventResponse(event))
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid pagination parameters", err)
		return
	}

	filters := events.Filters{
		ActiveOnly: r.URL.Query().Get("include_inactive") != "true",
		Upcoming:   r.URL.Query().Get("upcoming") == "true",
	}

	list, total, err := h.events.List(r.Context(), filters, page)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "failed to list events", err)
		return
	}

	items := make([]eventResponse, 0, len(list))
	for _, e := range list {
		items = append(items, toEventResponse(e))
	}
	respond.List(w, "events", items, len(items), &respond.Pagination{
		Page:       page.Page,
		Limit:      page.Limit,
		TotalItems: total,
		TotalPages: page.TotalPages(total),
	})
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid event id", err)
		return
	}

	event, err := h.events.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.OK(w, "event", toEventResponse(event))
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	organizerID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid event id", err)
		return
	}

	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	event, err := h.events.Update(r.Context(), organizerID, id, req.toInput())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.OK(w, "event updated", toEventResponse(event))
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	organizerID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid event id", err)
		return
	}

	if err := h.events.SoftDelete(r.Context(), organizerID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.OK(w, "event deleted", nil)
}

func (h *EventsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, events.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "event not found", err)
	case errors.Is(err, events.ErrNotOrganizer):
		respond.Error(w, r, http.StatusForbidden, "only the event organizer may do this", err)
	case errors.Is(err, events.ErrInvalidWindow):
		respond.Error(w, r, http.StatusBadRequest, "invalid event schedule", err)
	default:
		respond.Error(w, r, http.StatusInternalServerError, "event operation failed", err)
	}
}
