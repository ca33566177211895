// Package api wires handlers, middleware and the route table into the
// HTTP surface served by the server command.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hackpoint/server/internal/api/handlers"
	"github.com/hackpoint/server/internal/api/middleware"
	"github.com/hackpoint/server/internal/auth"
	"github.com/hackpoint/server/internal/config"
	"github.com/hackpoint/server/internal/metrics"
)

// Deps carries the constructed handlers and the token manager the
// router needs. Wiring them stays in the serve command so the router
// itself holds no connection state.
type Deps struct {
	JWT       *auth.JWTManager
	RateLimit *middleware.RateLimiter

	Version   string
	GitCommit string
	BuildDate string

	Auth          *handlers.AuthHandler
	Users         *handlers.UsersHandler
	Events        *handlers.EventsHandler
	Teams         *handlers.TeamsHandler
	Enrollments   *handlers.EnrollmentsHandler
	Submissions   *handlers.SubmissionsHandler
	Announcements *handlers.AnnouncementsHandler
	Certificates  *handlers.CertificatesHandler
	Chat          *handlers.ChatHandler
	Health        *handlers.HealthHandler
}

func NewRouter(cfg config.Config, deps Deps, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	limit := deps.RateLimit.Middleware()
	authn := middleware.Authenticate(deps.JWT)
	organizerOnly := middleware.RequireRole(auth.RoleOrganizer)

	// Tier wrappers run outside the limiter so the budget matches the
	// caller class, not the default public bucket.
	login := chain(middleware.WithRateLimitTierHandler(middleware.TierLogin), limit)
	public := chain(limit)
	member := chain(middleware.WithRateLimitTierHandler(middleware.TierParticipant), limit, authn)
	organizer := chain(middleware.WithRateLimitTierHandler(middleware.TierOrganizer), limit, authn, organizerOnly)

	mux.Handle("GET /healthz", http.HandlerFunc(deps.Health.Healthz))
	mux.Handle("GET /readyz", http.HandlerFunc(deps.Health.Readyz))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("GET /version", VersionHandler(deps.Version, deps.GitCommit, deps.BuildDate))
	mux.Handle("GET /api/v1/openapi.json", public(OpenAPIHandler()))

	mux.Handle("POST /api/v1/auth/signup", login(deps.Auth.Signup))
	mux.Handle("POST /api/v1/auth/login", login(deps.Auth.Login))

	mux.Handle("GET /api/v1/users/me", member(deps.Users.Me))
	mux.Handle("PATCH /api/v1/users/me", member(deps.Users.UpdateMe))
	mux.Handle("PUT /api/v1/users/me/password", member(deps.Users.ChangePassword))
	mux.Handle("GET /api/v1/users/me/certificates", member(deps.Certificates.ListMine))

	mux.Handle("GET /api/v1/events", public(deps.Events.List))
	mux.Handle("POST /api/v1/events", organizer(deps.Events.Create))
	mux.Handle("GET /api/v1/events/{id}", public(deps.Events.Get))
	mux.Handle("PATCH /api/v1/events/{id}", organizer(deps.Events.Update))
	mux.Handle("DELETE /api/v1/events/{id}", organizer(deps.Events.Delete))

	mux.Handle("POST /api/v1/events/{id}/enroll", member(deps.Enrollments.Enroll))
	mux.Handle("POST /api/v1/events/{id}/cancel", member(deps.Enrollments.Cancel))
	mux.Handle("POST /api/v1/events/{id}/associate-team", member(deps.Enrollments.AssociateTeam))
	mux.Handle("GET /api/v1/events/{id}/enrollments", organizer(deps.Enrollments.ListByEvent))
	mux.Handle("GET /api/v1/events/{id}/enrollment-stats", organizer(deps.Enrollments.Stats))
	mux.Handle("GET /api/v1/events/{id}/teams", public(deps.Teams.ListByEvent))

	mux.Handle("POST /api/v1/teams", member(deps.Teams.Create))
	mux.Handle("GET /api/v1/teams/{id}", member(deps.Teams.Get))
	mux.Handle("PATCH /api/v1/teams/{id}", member(deps.Teams.Rename))
	mux.Handle("DELETE /api/v1/teams/{id}", member(deps.Teams.Delete))
	mux.Handle("POST /api/v1/teams/{id}/join", member(deps.Teams.Join))
	mux.Handle("POST /api/v1/teams/{id}/leave", member(deps.Teams.Leave))
	mux.Handle("POST /api/v1/teams/{id}/transfer-leadership", member(deps.Teams.TransferLeadership))
	mux.Handle("DELETE /api/v1/teams/{id}/members/{memberId}", member(deps.Teams.RemoveMember))

	mux.Handle("POST /api/v1/submissions", member(deps.Submissions.Create))
	mux.Handle("GET /api/v1/submissions", member(deps.Submissions.List))
	mux.Handle("GET /api/v1/submissions/{id}", member(deps.Submissions.Get))
	mux.Handle("PATCH /api/v1/submissions/{id}", member(deps.Submissions.Update))
	mux.Handle("DELETE /api/v1/submissions/{id}", member(deps.Submissions.Delete))

	mux.Handle("POST /api/v1/announcements", organizer(deps.Announcements.Create))
	mux.Handle("GET /api/v1/events/{id}/announcements", member(deps.Announcements.ListByEvent))
	mux.Handle("PATCH /api/v1/announcements/{id}", organizer(deps.Announcements.Update))
	mux.Handle("DELETE /api/v1/announcements/{id}", organizer(deps.Announcements.Delete))

	mux.Handle("POST /api/v1/certificates", organizer(deps.Certificates.Issue))
	mux.Handle("POST /api/v1/certificates/bulk-issue", organizer(deps.Certificates.BulkIssue))
	mux.Handle("GET /api/v1/events/{id}/certificates", organizer(deps.Certificates.ListByEvent))

	mux.Handle("POST /api/v1/events/{id}/questions", member(deps.Chat.Ask))
	mux.Handle("GET /api/v1/events/{id}/questions", member(deps.Chat.ListByEvent))
	mux.Handle("POST /api/v1/questions/{id}/replies", member(deps.Chat.Reply))

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}

// chain composes per-route wrappers left to right around a handler
// func: the first wrapper is outermost.
func chain(wrappers ...func(http.Handler) http.Handler) func(http.HandlerFunc) http.Handler {
	return func(fn http.HandlerFunc) http.Handler {
		var handler http.Handler = fn
		for i := len(wrappers) - 1; i >= 0; i-- {
			handler = wrappers[i](handler)
		}
		return handler
	}
}
