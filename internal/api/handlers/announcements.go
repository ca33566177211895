package handlers

import (
	"errors"
	"net/http"

	"github.com/hackpoint/server/internal/api/respond"
	"github.com/hackpoint/server/internal/domain/announcements"
	"github.com/hackpoint/server/internal/domain/events"
)

type AnnouncementsHandler struct {
	announcements *announcements.Service
}

func NewAnnouncementsHandler(service *announcements.Service) *AnnouncementsHandler {
	return &AnnouncementsHandler{announcements: service}
}

type createAnnouncementRequest struct {
	EventID   int64  `json:"event_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Important bool   `json:"important"`
}

func (h *AnnouncementsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}

	var req createAnnouncementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ann, err := h.announcements.Create(r.Context(), userID, req.EventID, announcements.Input{
		Title:     req.Title,
		Body:      req.Body,
		Important: req.Important,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.Created(w, "announcement posted", ann)
}

func (h *AnnouncementsHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid event id", err)
		return
	}

	list, err := h.announcements.ListByEvent(r.Context(), eventID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.List(w, "announcements", list, len(list), nil)
}

type updateAnnouncementRequest struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Important bool   `json:"important"`
}

func (h *AnnouncementsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}

	var req updateAnnouncementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ann, err := h.announcements.Update(r.Context(), userID, r.PathValue("id"), announcements.Input{
		Title:     req.Title,
		Body:      req.Body,
		Important: req.Important,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.OK(w, "announcement updated", ann)
}

func (h *AnnouncementsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}

	if err := h.announcements.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.OK(w, "announcement deleted", nil)
}

func (h *AnnouncementsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if writeReferenceError(w, r, err) || writeValidationError(w, r, err) {
		return
	}
	switch {
	case errors.Is(err, announcements.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "announcement not found", err)
	case errors.Is(err, events.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "event not found", err)
	case errors.Is(err, announcements.ErrNotOrganizer):
		respond.Error(w, r, http.StatusForbidden, "only the event organizer may do this", err)
	default:
		respond.Error(w, r, http.StatusInternalServerError, "announcement operation failed", err)
	}
}
