package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/koopa0/rag-platform/internal/config"
	"github.com/koopa0/rag-platform/internal/metrics"
)

// ServerConfig contains the dependencies for creating the API server.
type ServerConfig struct {
	Logger *slog.Logger
	Config *config.Config // Required
	DB     Pinger         // Optional: nil makes /ready report not ready
	Cache  Pinger         // Optional: nil skips the cache probe in /ready
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Config == nil {
		return nil, errors.New("config is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	hh := &healthHandler{
		projectName: cfg.Config.ProjectName,
		version:     cfg.Config.APIVersion,
		environment: cfg.Config.Environment,
		db:          cfg.DB,
		cache:       cfg.Cache,
		logger:      logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", hh.root)
	registerV1(mux, cfg.Config.APIPrefix, cfg.Config)

	// Rate limiter: per-IP token bucket
	rl := newRateLimiter(cfg.Config.RateLimitPerSecond, cfg.Config.RateLimitBurst)

	// Build middleware stack (outermost first):
	//   Recovery → RequestID → Logging → Metrics → CORS → RateLimit → Routes
	// RequestID must be before Logging so request_id is available in log attributes.
	// CORS must be before RateLimit so preflight OPTIONS gets proper CORS headers.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.Config.TrustProxy, logger)(handler)
	handler = corsMiddleware(newCORSPolicy(cfg.Config))(handler)
	handler = metricsMiddleware(cfg.Config.APIPrefix)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Wrap with security headers
	isDev := cfg.Config.IsDevelopment()
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w, isDev)
		handler.ServeHTTP(w, r)
	})

	// Use a top-level mux to keep operational probes outside the middleware
	// stack: probes must answer even when the limiter is saturated, and their
	// high frequency would drown the request log.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", hh.health)
	topMux.HandleFunc("GET /ready", hh.ready)
	if cfg.Config.EnablePrometheusMetrics {
		topMux.Handle("GET /metrics", metrics.Handler())
	}
	topMux.Handle("/", final)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
