package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackpoint/server/internal/api/handlers"
	"github.com/hackpoint/server/internal/api/middleware"
	"github.com/hackpoint/server/internal/auth"
	"github.com/hackpoint/server/internal/config"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Config{
		RateLimit: config.RateLimitConfig{
			PublicPerMinute:      1000,
			ParticipantPerMinute: 1000,
			OrganizerPerMinute:   1000,
			LoginPer15Minutes:    1000,
		},
		CORS: config.CORSConfig{AllowAllOrigins: true},
	}
	jwt := auth.NewJWTManager("router-test-secret", time.Hour, "hackpoint-test")
	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	t.Cleanup(limiter.Stop)
	deps := Deps{
		JWT:       jwt,
		RateLimit: limiter,
		Health:    handlers.NewHealthHandler(nil, nil, "test"),
		// Protected routes reject before touching the service, so nil
		// handlers are never reached in these tests.
		Users:         handlers.NewUsersHandler(nil),
		Events:        handlers.NewEventsHandler(nil),
		Teams:         handlers.NewTeamsHandler(nil),
		Enrollments:   handlers.NewEnrollmentsHandler(nil),
		Submissions:   handlers.NewSubmissionsHandler(nil),
		Announcements: handlers.NewAnnouncementsHandler(nil),
		Certificates:  handlers.NewCertificatesHandler(nil),
		Chat:          handlers.NewChatHandler(nil),
		Auth:          handlers.NewAuthHandler(nil, jwt),
	}
	return NewRouter(cfg, deps, zerolog.Nop())
}

func TestRouterLiveness(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("healthz = %d, want 200", w.Code)
	}
}

func TestRouterProtectedRouteRequiresToken(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("users/me without token = %d, want 401", w.Code)
	}
}

func TestRouterOrganizerRouteForbidsParticipant(t *testing.T) {
	router := newTestRouter(t)

	jwt := auth.NewJWTManager("router-test-secret", time.Hour, "hackpoint-test")
	token, err := jwt.Generate(7, string(auth.RoleParticipant))
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("participant creating event = %d, want 403", w.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown route = %d, want 404", w.Code)
	}
}

func TestRouterMethodNotAllowed(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/auth/login", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE on login = %d, want 405", w.Code)
	}
}
