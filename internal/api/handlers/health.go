package handlers

import (
	"context"
	"net/http"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackpoint/server/internal/api/respond"
)

// HealthHandler serves the liveness and readiness probes. Liveness
// answers as long as the process is up; readiness pings both stores.
type HealthHandler struct {
	pool    *pgxpool.Pool
	elastic *es.Client
	version string
}

func NewHealthHandler(pool *pgxpool.Pool, elastic *es.Client, version string) *HealthHandler {
	return &HealthHandler{pool: pool, elastic: elastic, version: version}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, "ok", map[string]string{"status": "up", "version": h.version})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{"postgres": "up", "elasticsearch": "up"}
	healthy := true

	if err := h.pool.Ping(ctx); err != nil {
		checks["postgres"] = "down"
		healthy = false
	}

	if res, err := h.elastic.Info(h.elastic.Info.WithContext(ctx)); err != nil {
		checks["elasticsearch"] = "down"
		healthy = false
	} else {
		res.Body.Close()
		if res.IsError() {
			checks["elasticsearch"] = "down"
			healthy = false
		}
	}

	if !healthy {
		respond.Error(w, r, http.StatusServiceUnavailable, "dependencies unavailable", nil)
		return
	}
	respond.OK(w, "ready", checks)
}
