package handlers

import (
	"errors"
	"net/http"

	"github.com/hackpoint/server/internal/api/respond"
	"github.com/hackpoint/server/internal/domain/users"
)

type UsersHandler struct {
	users *users.Service
}

func NewUsersHandler(usersService *users.Service) *UsersHandler {
	return &UsersHandler{users: usersService}
}

func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			respond.Error(w, r, http.StatusNotFound, "user not found", err)
			return
		}
		respond.Error(w, r, http.StatusInternalServerError, "failed to load profile", err)
		return
	}
	respond.OK(w, "profile", toUserResponse(user))
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	id, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), id, users.UpdateProfileParams{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, users.ErrEmailTaken):
			respond.Error(w, r, http.StatusConflict, "email already registered", err)
		case errors.Is(err, users.ErrNotFound):
			respond.Error(w, r, http.StatusNotFound, "user not found", err)
		case errors.Is(err, users.ErrInvalidRole):
			respond.FieldErrors(w, r, http.StatusBadRequest, "validation failed", fieldErrors(err))
		default:
			respond.Error(w, r, http.StatusInternalServerError, "failed to update profile", err)
		}
		return
	}
	respond.OK(w, "profile updated", toUserResponse(user))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *UsersHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.users.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			respond.Error(w, r, http.StatusBadRequest, "current password is incorrect", err)
			return
		}
		respond.Error(w, r, http.StatusInternalServerError, "failed to change password", err)
		return
	}
	respond.OK(w, "password changed", nil)
}
