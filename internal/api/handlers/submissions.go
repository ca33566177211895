package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/hackpoint/server/internal/api/respond"
	"github.com/hackpoint/server/internal/domain/events"
	"github.com/hackpoint/server/internal/domain/submissions"
	"github.com/hackpoint/server/internal/domain/teams"
)

type SubmissionsHandler struct {
	submissions *submissions.Service
}

func NewSubmissionsHandler(service *submissions.Service) *SubmissionsHandler {
	return &SubmissionsHandler{submissions: service}
}

type createSubmissionRequest struct {
	EventID     int64    `json:"event_id"`
	TeamID      int64    `json:"team_id"`
	Round       int      `json:"round"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Track       string   `json:"track"`
	Links       []string `json:"links"`
	Docs        []string `json:"docs"`
}

func (h *SubmissionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}

	var req createSubmissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	sub, err := h.submissions.Create(r.Context(), userID, submissions.CreateInput{
		EventID:     req.EventID,
		TeamID:      req.TeamID,
		Round:       req.Round,
		Title:       req.Title,
		Description: req.Description,
		Track:       req.Track,
		Links:       req.Links,
		Docs:        req.Docs,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.Created(w, "submission created", sub)
}

func (h *SubmissionsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := submissions.Filters{}
	if raw := r.URL.Query().Get("event_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respond.Error(w, r, http.StatusBadRequest, "invalid event_id filter", err)
			return
		}
		filters.EventID = id
	}
	if raw := r.URL.Query().Get("team_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respond.Error(w, r, http.StatusBadRequest, "invalid team_id filter", err)
			return
		}
		filters.TeamID = id
	}

	list, err := h.submissions.List(r.Context(), filters)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.List(w, "submissions", list, len(list), nil)
}

func (h *SubmissionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sub, err := h.submissions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.OK(w, "submission", sub)
}

type updateSubmissionRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Track       string   `json:"track"`
	Links       []string `json:"links"`
	Docs        []string `json:"docs"`
}

func (h *SubmissionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}

	var req updateSubmissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	sub, err := h.submissions.Update(r.Context(), userID, r.PathValue("id"), submissions.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Track:       req.Track,
		Links:       req.Links,
		Docs:        req.Docs,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.OK(w, "submission updated", sub)
}

func (h *SubmissionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}

	if err := h.submissions.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.OK(w, "submission deleted", nil)
}

func (h *SubmissionsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if writeReferenceError(w, r, err) || writeValidationError(w, r, err) {
		return
	}
	switch {
	case errors.Is(err, submissions.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "submission not found", err)
	case errors.Is(err, teams.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "team not found", err)
	case errors.Is(err, events.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "event not found", err)
	case errors.Is(err, submissions.ErrDuplicateRound):
		respond.Error(w, r, http.StatusConflict, "team already submitted for this round", err)
	case errors.Is(err, submissions.ErrNotTeamMember):
		respond.Error(w, r, http.StatusForbidden, "only team members may do this", err)
	case errors.Is(err, submissions.ErrNotTeamLeader):
		respond.Error(w, r, http.StatusForbidden, "only the team leader may do this", err)
	case errors.Is(err, submissions.ErrDeadlinePassed):
		respond.Error(w, r, http.StatusBadRequest, "submission deadline has passed", err)
	case errors.Is(err, submissions.ErrEventInactive):
		respond.Error(w, r, http.StatusBadRequest, "event is not active", err)
	case errors.Is(err, submissions.ErrTeamMismatch):
		respond.Error(w, r, http.StatusBadRequest, "team does not belong to this event", err)
	default:
		respond.Error(w, r, http.StatusInternalServerError, "submission operation failed", err)
	}
}
