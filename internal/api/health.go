package api

import (
	"context"
	"log/slog"
	"net/http"
)

// Pinger reports whether a backing service answers a round-trip.
// *pgxpool.Pool satisfies it directly; other clients are adapted by the
// caller. Interface defined here because this package is the consumer.
type Pinger interface {
	Ping(ctx context.Context) error
}

// healthHandler serves the liveness, readiness, and root informational
// endpoints. Liveness never touches backends; readiness pings whichever
// backends were configured.
type healthHandler struct {
	projectName string
	version     string
	environment string
	db          Pinger
	cache       Pinger
	logger      *slog.Logger
}

// healthResponse is the liveness payload.
type healthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

// readyResponse is the readiness payload for the healthy case.
type readyResponse struct {
	Status string `json:"status"`
}

// rootResponse is the informational payload served at /.
type rootResponse struct {
	Message string `json:"message"`
	DocsURL string `json:"docs_url"`
	Version string `json:"version"`
}

// health is the liveness probe. Returns 200 as long as the process serves
// requests; backend state is readiness' concern.
func (h *healthHandler) health(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, healthResponse{
		Status:      "healthy",
		Version:     h.version,
		Environment: h.environment,
	})
}

// ready is the readiness probe. Pings every configured backend with the
// request context; any failure answers 503 with a non-secret reason.
func (h *healthHandler) ready(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		WriteError(w, http.StatusServiceUnavailable, "not_ready", "database pool not configured", h.logger)
		return
	}
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Error("readiness check failed", "backend", "database", "error", err)
		WriteError(w, http.StatusServiceUnavailable, "not_ready", "database not ready", h.logger)
		return
	}
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			h.logger.Error("readiness check failed", "backend", "cache", "error", err)
			WriteError(w, http.StatusServiceUnavailable, "not_ready", "cache not ready", h.logger)
			return
		}
	}
	WriteJSON(w, http.StatusOK, readyResponse{Status: "ready"})
}

// root serves the informational endpoint at the bare path.
func (h *healthHandler) root(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, rootResponse{
		Message: h.projectName,
		DocsURL: "/docs",
		Version: h.version,
	})
}
