package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackpoint/server/internal/api/respond"
	"github.com/hackpoint/server/internal/auth"
	"github.com/hackpoint/server/internal/domain/users"
)

type fakeUserRepo struct {
	byEmail map[string]users.User
	nextID  int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]users.User), nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, params users.CreateParams) (users.User, error) {
	if _, ok := r.byEmail[params.Email]; ok {
		return users.User{}, users.ErrEmailTaken
	}
	user := users.User{
		ID:           r.nextID,
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		AuthProvider: params.AuthProvider,
		Role:         params.Role,
	}
	r.nextID++
	r.byEmail[params.Email] = user
	return user, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (users.User, error) {
	for _, user := range r.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (users.User, error) {
	if user, ok := r.byEmail[email]; ok {
		return user, nil
	}
	return users.User{}, users.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, id int64, name, email string) error {
	for key, user := range r.byEmail {
		if user.ID == id {
			delete(r.byEmail, key)
			user.Name, user.Email = name, email
			r.byEmail[email] = user
			return nil
		}
	}
	return users.ErrNotFound
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	for key, user := range r.byEmail {
		if user.ID == id {
			user.PasswordHash = hash
			r.byEmail[key] = user
			return nil
		}
	}
	return users.ErrNotFound
}

func newAuthHandler(repo users.Repository) *AuthHandler {
	service := users.NewService(repo, zerolog.Nop())
	return NewAuthHandler(service, testJWT)
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func TestSignupReturnsTokenAndUser(t *testing.T) {
	handler := newAuthHandler(newFakeUserRepo())

	w := postJSON(t, handler.Signup, "/api/v1/auth/signup",
		`{"name":"Ada","email":"ada@example.com","password":"hunter2hunter2"}`)

	require.Equal(t, http.StatusCreated, w.Code)

	var envelope respond.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)

	data := envelope.Data.(map[string]any)
	assert.NotEmpty(t, data["token"])
	user := data["user"].(map[string]any)
	assert.Equal(t, "ada@example.com", user["email"])
	assert.Equal(t, string(auth.RoleParticipant), user["role"])
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	repo := newFakeUserRepo()
	handler := newAuthHandler(repo)

	first := postJSON(t, handler.Signup, "/api/v1/auth/signup",
		`{"name":"Ada","email":"ada@example.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusCreated, first.Code)

	second := postJSON(t, handler.Signup, "/api/v1/auth/signup",
		`{"name":"Imposter","email":"ada@example.com","password":"hunter2hunter2"}`)
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestSignupRejectsUnknownRole(t *testing.T) {
	handler := newAuthHandler(newFakeUserRepo())

	w := postJSON(t, handler.Signup, "/api/v1/auth/signup",
		`{"name":"Ada","email":"ada@example.com","password":"hunter2hunter2","role":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	repo := newFakeUserRepo()
	handler := newAuthHandler(repo)

	created := postJSON(t, handler.Signup, "/api/v1/auth/signup",
		`{"name":"Ada","email":"ada@example.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusCreated, created.Code)

	w := postJSON(t, handler.Login, "/api/v1/auth/login",
		`{"email":"ada@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
