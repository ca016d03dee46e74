package api

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/koopa0/rag-platform/internal/config"
	"github.com/koopa0/rag-platform/internal/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRecoveryMiddleware_Panic(t *testing.T) {
	logger := discardLogger()

	panicHandler := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("test panic")
	})

	handler := recoveryMiddleware(logger)(panicHandler)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	handler.ServeHTTP(w, r)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("recoveryMiddleware(panic) status = %d, want %d", w.Code, http.StatusInternalServerError)
	}

	body := decodeErrorEnvelope(t, w)

	if body.Error != "internal_error" {
		t.Errorf("recoveryMiddleware(panic) code = %q, want %q", body.Error, "internal_error")
	}
	if strings.Contains(w.Body.String(), "test panic") {
		t.Error("recoveryMiddleware(panic) leaked the panic value to the client")
	}
}

func TestRecoveryMiddleware_NoPanic(t *testing.T) {
	logger := discardLogger()

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"ok": "true"})
	})

	handler := recoveryMiddleware(logger)(okHandler)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("recoveryMiddleware(ok) status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRecoveryMiddleware_PanicAfterHeadersSent(t *testing.T) {
	logger := discardLogger()

	handler := recoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		panic("late panic")
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	handler.ServeHTTP(w, r)

	// Headers already committed: the original status stands and no error
	// envelope is appended to the body.
	if w.Code != http.StatusAccepted {
		t.Fatalf("recoveryMiddleware(late panic) status = %d, want %d", w.Code, http.StatusAccepted)
	}
	if strings.Contains(w.Body.String(), "internal_error") {
		t.Error("recoveryMiddleware(late panic) wrote an error envelope after headers were sent")
	}
}

func testCORSConfig(origins []string, credentials bool) *config.Config {
	return &config.Config{
		CORSOrigins:          origins,
		CORSAllowCredentials: credentials,
		CORSAllowMethods:     []string{"*"},
		CORSAllowHeaders:     []string{"*"},
	}
}

func TestCORSMiddleware_AllowedOriginPreflight(t *testing.T) {
	policy := newCORSPolicy(testCORSConfig([]string{"http://localhost:4200"}, true))
	handler := corsMiddleware(policy)(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("next handler should not be called for OPTIONS")
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodOptions, "/api/v1/rag/query", nil)
	r.Header.Set("Origin", "http://localhost:4200")

	handler.ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("CORS preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:4200" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:4200")
	}

	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want %q", got, "true")
	}

	if got := w.Header().Get("Access-Control-Allow-Headers"); got == "" {
		t.Error("Access-Control-Allow-Headers should be set")
	}

	if got := w.Header().Get("Vary"); got != "Origin" {
		t.Errorf("Vary = %q, want %q", got, "Origin")
	}
}

func TestCORSMiddleware_WildcardOrigin(t *testing.T) {
	// Wildcard never grants credentials, regardless of configuration:
	// browsers reject the combination.
	policy := newCORSPolicy(testCORSConfig([]string{"*"}, true))
	handler := corsMiddleware(policy)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/rag/status", nil)
	r.Header.Set("Origin", "http://anywhere.example")

	handler.ServeHTTP(w, r)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "*")
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want empty for wildcard policy", got)
	}
}

func TestCORSMiddleware_DisallowedOriginPreflight(t *testing.T) {
	policy := newCORSPolicy(testCORSConfig([]string{"http://localhost:4200"}, true))
	handler := corsMiddleware(policy)(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("next handler should not be called for OPTIONS")
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodOptions, "/api/v1/rag/query", nil)
	r.Header.Set("Origin", "http://evil.com")

	handler.ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("CORS disallowed preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want empty for disallowed origin", got)
	}
}

func TestCORSMiddleware_NoOriginHeader(t *testing.T) {
	policy := newCORSPolicy(testCORSConfig([]string{"*"}, false))
	called := false
	handler := corsMiddleware(policy)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/rag/status", nil)

	handler.ServeHTTP(w, r)

	if !called {
		t.Error("next handler was not called")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want empty without Origin header", got)
	}
}

func TestCORSMiddleware_NormalRequest(t *testing.T) {
	policy := newCORSPolicy(testCORSConfig([]string{"http://localhost:4200"}, true))
	called := false
	handler := corsMiddleware(policy)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/retrievers/retrieve", nil)
	r.Header.Set("Origin", "http://localhost:4200")

	handler.ServeHTTP(w, r)

	if !called {
		t.Error("next handler was not called")
	}

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:4200" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:4200")
	}
}

func TestJoinHeaderList(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"wildcard alone", []string{"*"}, "*"},
		{"wildcard among values", []string{"GET", "*", "POST"}, "*"},
		{"explicit values", []string{"GET", "POST", "OPTIONS"}, "GET, POST, OPTIONS"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinHeaderList(tt.values); got != tt.want {
				t.Errorf("joinHeaderList(%v) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	t.Run("production", func(t *testing.T) {
		w := httptest.NewRecorder()
		setSecurityHeaders(w, false)

		expected := map[string]string{
			"X-Content-Type-Options":    "nosniff",
			"X-Frame-Options":           "DENY",
			"Referrer-Policy":           "strict-origin-when-cross-origin",
			"Content-Security-Policy":   "default-src 'none'",
			"Strict-Transport-Security": "max-age=63072000; includeSubDomains",
		}

		for header, want := range expected {
			if got := w.Header().Get(header); got != want {
				t.Errorf("setSecurityHeaders(isDev=false) %q = %q, want %q", header, got, want)
			}
		}
	})

	t.Run("dev", func(t *testing.T) {
		w := httptest.NewRecorder()
		setSecurityHeaders(w, true)

		if got := w.Header().Get("Strict-Transport-Security"); got != "" {
			t.Errorf("setSecurityHeaders(isDev=true) HSTS = %q, want empty", got)
		}

		// Other headers should still be set
		if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
			t.Errorf("setSecurityHeaders(isDev=true) X-Content-Type-Options = %q, want %q", got, "nosniff")
		}
	})
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"root", "/", "/"},
		{"group with operation", "/api/v1/rag/ingest", "/api/v1/rag"},
		{"group with path value", "/api/v1/tenants/tenant-42", "/api/v1/tenants"},
		{"bare group", "/api/v1/health", "/api/v1/health"},
		{"prefix only", "/api/v1", "other"},
		{"prefix with trailing slash", "/api/v1/", "other"},
		{"unrelated path", "/wp-admin/login.php", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := routeLabel("/api/v1", tt.path); got != tt.want {
				t.Errorf("routeLabel(%q, %q) = %q, want %q", "/api/v1", tt.path, got, tt.want)
			}
		})
	}
}

func TestLoggingWriter_DefaultsTo200(t *testing.T) {
	w := httptest.NewRecorder()
	lw := &loggingWriter{w: w}

	if _, err := lw.Write([]byte("body without explicit WriteHeader")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	if got := lw.status(); got != http.StatusOK {
		t.Errorf("status() = %d, want %d", got, http.StatusOK)
	}
	if lw.bytesWritten == 0 {
		t.Error("bytesWritten was not recorded")
	}
}

func TestMetricsMiddleware_RecordsRequest(t *testing.T) {
	counter := metrics.RequestsTotal.WithLabelValues(http.MethodPatch, "other", "200")
	before := testutil.ToFloat64(counter)

	var inFlight float64
	handler := metricsMiddleware("/api/v1")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		inFlight = testutil.ToFloat64(metrics.RequestsInFlight)
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPatch, "/unmatched/path", nil)

	handler.ServeHTTP(w, r)

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("requests counter = %v, want %v", got, before+1)
	}
	if inFlight != 1 {
		t.Errorf("in-flight gauge during request = %v, want 1", inFlight)
	}
	if got := testutil.ToFloat64(metrics.RequestsInFlight); got != 0 {
		t.Errorf("in-flight gauge after request = %v, want 0", got)
	}
}

func TestLoggingMiddleware_PreservesStatus(t *testing.T) {
	logger := discardLogger()

	handler := loggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	handler.ServeHTTP(w, r)

	if w.Code != http.StatusTeapot {
		t.Fatalf("loggingMiddleware status = %d, want %d", w.Code, http.StatusTeapot)
	}
}
