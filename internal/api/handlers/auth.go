package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/hackpoint/server/internal/api/respond"
	"github.com/hackpoint/server/internal/auth"
	"github.com/hackpoint/server/internal/domain/users"
)

type AuthHandler struct {
	users *users.Service
	jwt   *auth.JWTManager
}

func NewAuthHandler(usersService *users.Service, jwt *auth.JWTManager) *AuthHandler {
	return &AuthHandler{users: usersService, jwt: jwt}
}

type userResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u users.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	user, err := h.users.Signup(r.Context(), users.SignupParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, users.ErrEmailTaken):
			respond.Error(w, r, http.StatusConflict, "email already registered", err)
		case errors.Is(err, users.ErrInvalidRole):
			respond.FieldErrors(w, r, http.StatusBadRequest, "validation failed", fieldErrors(err))
		default:
			respond.Error(w, r, http.StatusInternalServerError, "signup failed", err)
		}
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Role)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "signup failed", err)
		return
	}
	respond.Created(w, "account created", authResponse{Token: token, User: toUserResponse(user)})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	user, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			respond.Error(w, r, http.StatusUnauthorized, "invalid email or password", err)
			return
		}
		respond.Error(w, r, http.StatusInternalServerError, "login failed", err)
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Role)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "login failed", err)
		return
	}
	respond.OK(w, "login successful", authResponse{Token: token, User: toUserResponse(user)})
}
