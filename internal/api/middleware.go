package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/koopa0/rag-platform/internal/config"
	"github.com/koopa0/rag-platform/internal/metrics"
)

// requestIDHeader is the HTTP header carrying the request correlation ID.
const requestIDHeader = "X-Request-ID"

// Context key types (unexported to prevent collisions).
type requestIDKey struct{}

var ctxKeyRequestID = requestIDKey{}

// requestIDFromContext retrieves the request correlation ID from the request
// context. Returns the empty string if not found.
func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}

// loggingWriter wraps http.ResponseWriter to capture status and size.
// Implements Flusher for streaming support and Unwrap for ResponseController.
type loggingWriter struct {
	w            http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (lw *loggingWriter) Header() http.Header {
	return lw.w.Header()
}

func (lw *loggingWriter) WriteHeader(code int) {
	lw.statusCode = code
	lw.w.WriteHeader(code)
}

//nolint:wrapcheck // http.ResponseWriter wrapper must return unwrapped errors
func (lw *loggingWriter) Write(b []byte) (int, error) {
	if lw.statusCode == 0 {
		lw.statusCode = http.StatusOK
	}
	n, err := lw.w.Write(b)
	lw.bytesWritten += int64(n)
	return n, err
}

// Flush implements http.Flusher for streaming support.
func (lw *loggingWriter) Flush() {
	if f, ok := lw.w.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the underlying ResponseWriter for http.ResponseController.
func (lw *loggingWriter) Unwrap() http.ResponseWriter {
	return lw.w
}

// status returns the captured status code, defaulting to 200 when the
// handler wrote a body without an explicit WriteHeader.
func (lw *loggingWriter) status() int {
	if lw.statusCode == 0 {
		return http.StatusOK
	}
	return lw.statusCode
}

// recoveryMiddleware is the outermost layer of the stack: it recovers from
// panics escaping any handler, logs them with full request context, and
// returns the opaque error envelope. The panic value never reaches the
// client.
func recoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapper := &loggingWriter{w: w}

			defer func() {
				if err := recover(); err != nil {
					metrics.PanicsRecovered.Inc()
					logger.Error("panic recovered",
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"request_id", requestIDFromContext(r.Context()),
						"headers_sent", wrapper.statusCode != 0,
					)

					if wrapper.statusCode == 0 {
						WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error", logger)
					} else {
						logger.Warn("cannot send error response, headers already sent",
							"path", r.URL.Path,
							"status", wrapper.statusCode,
						)
					}
				}
			}()
			next.ServeHTTP(wrapper, r)
		})
	}
}

// requestIDMiddleware assigns a correlation ID to every request. A valid
// UUID supplied by the client in X-Request-ID is reused; anything else is
// replaced with a fresh one. The ID is echoed in the response header and
// stored in the request context for log correlation.
func requestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.New().String()
			}

			w.Header().Set(requestIDHeader, id)
			ctx := context.WithValue(r.Context(), ctxKeyRequestID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// loggingMiddleware logs request details including latency, status, and
// response size. Reuses an existing *loggingWriter from outer middleware
// (recoveryMiddleware) to avoid double-wrapping the ResponseWriter.
func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapper, ok := w.(*loggingWriter)
			if !ok {
				wrapper = &loggingWriter{w: w}
			}

			next.ServeHTTP(wrapper, r)

			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapper.status(),
				"bytes", wrapper.bytesWritten,
				"duration", time.Since(start),
				"request_id", requestIDFromContext(r.Context()),
				"ip", r.RemoteAddr,
			)
		})
	}
}

// metricsMiddleware records request counts, latency, and in-flight gauge.
// Paths are normalized to their route group via routeLabel before being
// used as label values, keeping series cardinality bounded.
func metricsMiddleware(apiPrefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			metrics.RequestsInFlight.Inc()
			defer metrics.RequestsInFlight.Dec()

			wrapper, ok := w.(*loggingWriter)
			if !ok {
				wrapper = &loggingWriter{w: w}
			}

			next.ServeHTTP(wrapper, r)

			route := routeLabel(apiPrefix, r.URL.Path)
			metrics.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapper.status())).Inc()
			metrics.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// routeLabel maps a request path to a bounded metric label. Paths under the
// versioned prefix collapse to prefix plus route group ("/api/v1/rag");
// the root path stays as-is; everything else becomes "other" so arbitrary
// URLs cannot mint new series.
func routeLabel(apiPrefix, path string) string {
	if path == "/" {
		return "/"
	}
	if rest, ok := strings.CutPrefix(path, apiPrefix+"/"); ok {
		group, _, _ := strings.Cut(rest, "/")
		if group != "" {
			return apiPrefix + "/" + group
		}
	}
	return "other"
}

// corsPolicy holds the precomputed cross-origin response values built from
// the configured allow-lists.
type corsPolicy struct {
	allowAll    bool
	origins     map[string]struct{}
	credentials bool
	methods     string
	headers     string
}

// newCORSPolicy builds the policy from validated configuration. A "*" entry
// in the origin list allows any origin; "*" in the method or header lists is
// sent through as the literal wildcard.
func newCORSPolicy(cfg *config.Config) corsPolicy {
	p := corsPolicy{
		origins:     make(map[string]struct{}, len(cfg.CORSOrigins)),
		credentials: cfg.CORSAllowCredentials,
		methods:     joinHeaderList(cfg.CORSAllowMethods),
		headers:     joinHeaderList(cfg.CORSAllowHeaders),
	}
	for _, o := range cfg.CORSOrigins {
		if o == "*" {
			p.allowAll = true
			continue
		}
		p.origins[o] = struct{}{}
	}
	return p
}

// joinHeaderList renders a configured list as a header value. A wildcard
// anywhere in the list collapses to "*".
func joinHeaderList(values []string) string {
	for _, v := range values {
		if v == "*" {
			return "*"
		}
	}
	return strings.Join(values, ", ")
}

// corsMiddleware handles preflight requests and attaches cross-origin
// response headers per the configured policy.
//
// A wildcard policy answers with Access-Control-Allow-Origin: * and never
// allows credentials (the combination is rejected by browsers). An explicit
// allow-list echoes the matching origin and grants credentials when
// configured. Requests from unlisted origins get no CORS headers at all.
func corsMiddleware(policy corsPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			switch {
			case origin == "":
				// Same-origin or non-browser request; nothing to add.
			case policy.allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", policy.methods)
				w.Header().Set("Access-Control-Allow-Headers", policy.headers)
				w.Header().Set("Access-Control-Max-Age", "3600")
			default:
				if _, ok := policy.origins[origin]; ok {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
					w.Header().Set("Access-Control-Allow-Methods", policy.methods)
					w.Header().Set("Access-Control-Allow-Headers", policy.headers)
					w.Header().Set("Access-Control-Max-Age", "3600")
					if policy.credentials {
						w.Header().Set("Access-Control-Allow-Credentials", "true")
					}
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setSecurityHeaders applies common security headers for API responses.
// HSTS is only set outside development (requires HTTPS).
func setSecurityHeaders(w http.ResponseWriter, isDev bool) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy", "default-src 'none'")
	if !isDev {
		w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
	}
}
