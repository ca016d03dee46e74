// Package logging provides the structured logging infrastructure for the
// RAG platform service.
//
// This package provides:
//   - A type alias for *slog.Logger to use as DI dependency
//   - Setup, which installs the process logging configuration exactly once
//     at startup, built from resolved settings
//   - Named, which returns namespace-scoped application loggers and is safe
//     to call before or after Setup
//   - A Nop logger for testing
//
// Two handler styles are maintained:
//   - concise: single-line text at informational level, installed as the
//     process default. Anything logging through slog.Default (vendor
//     libraries, early boot) gets this style.
//   - detailed: source-location context at the configured level (JSON in
//     production). Application loggers obtained via Named emit through this
//     handler directly, never through the process default, so a record is
//     emitted exactly once.
//
// Design Philosophy:
//   - Use Dependency Injection (DI) for loggers, not globals
//   - Each component receives a logger via constructor
//   - Components can add context via logger.With()
//
// Usage:
//
//	// Install the configuration at application startup
//	logging.Setup(logging.Config{Level: cfg.SlogLevel(), AddSource: true})
//
//	// Inject namespace-scoped loggers into components
//	server, err := api.NewServer(api.ServerConfig{Logger: logging.Named("api"), ...})
//
//	// In tests, use the Nop logger or capture to a buffer
//	testLogger := logging.NewNop()
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"
	"sync/atomic"
)

// Logger is a type alias for *slog.Logger.
// Using the standard library type directly provides:
//   - Full compatibility with slog ecosystem
//   - Access to With() for adding context
//   - No need for custom interface definitions
//
// Components should accept logging.Logger as a dependency.
type Logger = *slog.Logger

// NamespaceKey is the attribute key carrying the logger namespace.
const NamespaceKey = "logger"

// appNamespace is the root namespace for application loggers.
const appNamespace = "app"

// Config defines the logging configuration built from resolved settings.
type Config struct {
	// Level sets the minimum level for application loggers. Default: slog.LevelInfo
	Level slog.Level

	// JSON switches the detailed handler to JSON output. Default: false (text format)
	JSON bool

	// AddSource adds source file and function information to application
	// log entries. Default: false
	AddSource bool

	// VendorLevel sets the minimum level for the process-default logger used
	// by third-party code. Default: slog.LevelInfo
	VendorLevel slog.Level
}

// installed holds the detailed handler once Setup has run.
// Application loggers resolve it on every record, so handles created before
// Setup transparently pick up the installed configuration.
var installed atomic.Pointer[slog.Handler]

// bootstrapHandler serves application records emitted before Setup runs.
var bootstrapHandler slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
	Level: slog.LevelInfo,
})

// Setup installs the process logging configuration. Call it once at startup,
// before the service accepts traffic; loggers are obtained afterwards, not
// reconfigured.
//
// Output is written to os.Stderr.
func Setup(cfg Config) Logger {
	return SetupWithWriter(os.Stderr, cfg)
}

// SetupWithWriter installs the process logging configuration with output to
// the specified writer. Useful for testing.
func SetupWithWriter(w io.Writer, cfg Config) Logger {
	// Vendor namespaces keep the concise single-line style and stay on the
	// process default logger.
	concise := slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.VendorLevel})
	slog.SetDefault(slog.New(concise))

	// Application namespaces emit through the detailed handler, bypassing
	// the process default entirely.
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}
	var detailed slog.Handler
	if cfg.JSON {
		detailed = slog.NewJSONHandler(w, opts)
	} else {
		detailed = slog.NewTextHandler(w, opts)
	}
	installed.Store(&detailed)

	return Named("")
}

// Named returns an application logger scoped to the given namespace.
// Namespaces are dot-joined under the application root: Named("api") logs
// with logger=app.api; Named("") is the application root itself.
//
// Safe to call before Setup: the handle routes records through the handler
// installed at the time of each record, so the effective configuration
// applies once Setup has run.
func Named(name string) Logger {
	ns := appNamespace
	if name != "" {
		ns = appNamespace + "." + name
	}
	return slog.New(&appHandler{}).With(slog.String(NamespaceKey, ns))
}

// New creates a standalone logger with the given configuration, independent
// of the installed process configuration. Output is written to os.Stderr.
func New(cfg Config) Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter creates a standalone logger that writes to the specified
// writer. Useful for testing or custom output destinations.
//
// Example:
//
//	var buf bytes.Buffer
//	logger := logging.NewWithWriter(&buf, logging.Config{})
//	// ... use logger
//	fmt.Println(buf.String()) // inspect log output
func NewWithWriter(w io.Writer, cfg Config) Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// NewNop creates a logger that discards all output.
//
// WARNING: This should ONLY be used in tests. Never use NewNop() in production
// code as it will silently discard all logs, making debugging impossible.
func NewNop() Logger {
	return slog.New(slog.DiscardHandler)
}

// currentHandler returns the installed detailed handler, or the bootstrap
// handler before Setup has run.
func currentHandler() slog.Handler {
	if h := installed.Load(); h != nil {
		return *h
	}
	return bootstrapHandler
}

// handlerOp records one WithAttrs or WithGroup derivation so it can be
// replayed onto whichever handler is installed when a record arrives.
type handlerOp struct {
	group string
	attrs []slog.Attr
}

// appHandler is the indirection behind application loggers. It delegates to
// the currently installed handler, caching the derived handler until the
// installed one changes.
type appHandler struct {
	ops []handlerOp

	mu     sync.Mutex
	base   slog.Handler
	cached slog.Handler
}

func (h *appHandler) resolve() slog.Handler {
	base := currentHandler()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cached == nil || h.base != base {
		derived := base
		for _, op := range h.ops {
			if op.group != "" {
				derived = derived.WithGroup(op.group)
			}
			if len(op.attrs) > 0 {
				derived = derived.WithAttrs(op.attrs)
			}
		}
		h.base = base
		h.cached = derived
	}
	return h.cached
}

func (h *appHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.resolve().Enabled(ctx, level)
}

func (h *appHandler) Handle(ctx context.Context, record slog.Record) error {
	return h.resolve().Handle(ctx, record)
}

func (h *appHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return &appHandler{ops: append(slices.Clip(h.ops), handlerOp{attrs: attrs})}
}

func (h *appHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &appHandler{ops: append(slices.Clip(h.ops), handlerOp{group: name})}
}
