// Package api provides the JSON HTTP server for the RAG platform.
//
// # Architecture
//
// The server uses Go 1.22+ routing with a layered middleware stack:
//
//	Recovery → RequestID → Logging → Metrics → CORS → RateLimit → Routes
//
// Recovery is the outermost layer: any panic escaping a handler is logged
// with full request context and converted into an opaque 500 response that
// never echoes internal details. Health probes (/health, /ready) and the
// Prometheus exposition endpoint (/metrics) bypass the stack via a
// top-level mux, ensuring they remain fast and unauthenticated.
//
// # Endpoints
//
// Probes and operational surface (no middleware):
//   - GET /health: liveness, {"status":"healthy","version":...,"environment":...}
//   - GET /ready: readiness, pings configured backends, 503 when degraded
//   - GET /metrics: Prometheus exposition (only when ENABLE_PROMETHEUS_METRICS)
//
// Informational root (full middleware stack):
//   - GET /: {"message":<project>,"docs_url":"/docs","version":...}
//
// Versioned group, mounted under the configured prefix (default /api/v1).
// Route groups are registered only when their feature toggle is enabled;
// a disabled group's routes answer 404:
//   - POST /rag/ingest, POST /rag/query, GET /rag/status       (ENABLE_RAG)
//   - POST /agents/execute, GET /agents/status/{execution_id}  (ENABLE_AGENTS)
//   - POST /retrievers/retrieve                                (always)
//   - POST /evaluation/evaluate                                (ENABLE_EVALUATION)
//   - POST /tenants/create, GET /tenants/{tenant_id}           (MULTI_TENANT_ENABLED)
//
// Every versioned handler currently returns a fixed-shape placeholder
// payload. The ingestion pipeline, retriever plugins, agent engine,
// evaluation harness, and tenant store are external collaborators that
// replace these bodies without changing the routing surface.
//
// # Error Handling
//
// Error responses use a flat envelope that never carries internal detail:
//
//	{"error": "<machine-readable code>", "message": "<static text>"}
//
// # Security
//
// The middleware stack enforces:
//   - CORS with a configured origin allow-list (wildcard supported)
//   - Per-client rate limiting (token bucket, knobs from configuration)
//   - Security headers (CSP, X-Frame-Options, HSTS outside development)
//   - X-Request-ID correlation on every response
package api
