// Package observability provides OpenTelemetry integration for distributed tracing.
//
// Traces are exported over OTLP HTTP to a local collector (OpenTelemetry
// Collector, Jaeger with OTLP receiver, or a vendor agent in OTLP mode).
// The collector handles authentication and forwarding, so the application
// never carries vendor credentials.
//
// Tracing is opt-in: with TRACING_ENABLED unset the setup is a no-op and
// the process runs with the default noop tracer. An unreachable collector
// is not an error either; the exporter is created lazily and failed span
// batches are dropped, so the API keeps serving.
//
// # Local collector
//
// The default endpoint is localhost:4318 (OTLP HTTP). Point OTLP_ENDPOINT
// elsewhere to use a different backend:
//
//	TRACING_ENABLED=true OTLP_ENDPOINT=otel.internal:4318 rag-platform serve
package observability

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config for OTLP trace export.
type Config struct {
	// Enabled turns span export on. When false, Setup is a no-op.
	Enabled bool
	// Endpoint is the OTLP HTTP endpoint (default: localhost:4318)
	Endpoint string
	// ServiceName is the service name attached to exported spans
	ServiceName string
	// Environment is the deployment environment (development, staging, production)
	Environment string
}

// DefaultEndpoint is the default OTLP HTTP endpoint.
const DefaultEndpoint = "localhost:4318"

// Setup installs a tracer provider exporting over OTLP HTTP and registers
// it as the global provider.
//
// Returns a shutdown function that flushes pending spans. The function is
// never nil: when tracing is disabled or the exporter cannot be created,
// it is a no-op and the service runs untraced.
func Setup(ctx context.Context, cfg Config, logger *slog.Logger) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	if !cfg.Enabled {
		return noop, nil
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	// Resource attributes travel via the environment so the SDK's default
	// resource detectors pick them up alongside host and process attributes.
	if cfg.ServiceName != "" {
		_ = os.Setenv("OTEL_SERVICE_NAME", cfg.ServiceName)
	}
	if cfg.Environment != "" {
		_ = os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment="+cfg.Environment)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(), // local collector, no TLS
	)
	if err != nil {
		logger.Warn("failed to create trace exporter, tracing disabled", "error", err)
		return noop, nil
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)

	logger.Debug("tracing enabled",
		"endpoint", endpoint,
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
	)

	return tp.Shutdown, nil
}
