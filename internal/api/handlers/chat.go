package handlers

import (
	"errors"
	"net/http"

	"github.com/hackpoint/server/internal/api/respond"
	"github.com/hackpoint/server/internal/domain/chat"
	"github.com/hackpoint/server/internal/domain/events"
)

type ChatHandler struct {
	chat *chat.Service
}

func NewChatHandler(service *chat.Service) *ChatHandler {
	return &ChatHandler{chat: service}
}

type chatMessageRequest struct {
	Message string `json:"message"`
}

func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
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

	var req chatMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	question, err := h.chat.Ask(r.Context(), userID, eventID, chat.MessageInput{Message: req.Message})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.Created(w, "question posted", question)
}

func (h *ChatHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid event id", err)
		return
	}

	list, err := h.chat.ListByEvent(r.Context(), eventID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.List(w, "questions", list, len(list), nil)
}

func (h *ChatHandler) Reply(w http.ResponseWriter, r *http.Request) {
	userID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}

	var req chatMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	question, err := h.chat.Reply(r.Context(), userID, r.PathValue("id"), chat.MessageInput{Message: req.Message})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.Created(w, "reply posted", question)
}

func (h *ChatHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if writeReferenceError(w, r, err) || writeValidationError(w, r, err) {
		return
	}
	switch {
	case errors.Is(err, chat.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "question not found", err)
	case errors.Is(err, events.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "event not found", err)
	case errors.Is(err, chat.ErrNotEnrolled):
		respond.Error(w, r, http.StatusForbidden, "only enrolled participants and the organizer may post", err)
	default:
		respond.Error(w, r, http.StatusInternalServerError, "chat operation failed", err)
	}
}
