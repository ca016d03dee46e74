package observability

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestSetup_Disabled(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Enabled:     false,
		ServiceName: "disabled-test",
	}

	shutdown, err := Setup(context.Background(), cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("Setup(disabled) error: %v", err)
	}
	if shutdown == nil {
		t.Fatal("Setup(disabled) returned nil shutdown")
	}

	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error: %v", err)
	}
}

func TestSetup_DefaultEndpoint(t *testing.T) {
	// Registers env restoration before Setup overwrites the variables.
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("OTEL_RESOURCE_ATTRIBUTES", "")

	cfg := Config{
		Enabled:     true,
		Endpoint:    "", // Empty should use default
		ServiceName: "default-endpoint-test",
		Environment: "test",
	}

	ctx := context.Background()
	shutdown, err := Setup(ctx, cfg, slog.New(slog.DiscardHandler))

	// Exporter creation is lazy: no collector needs to be running.
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	if shutdown == nil {
		t.Fatal("Setup() returned nil shutdown")
	}

	if err := shutdown(ctx); err != nil {
		t.Errorf("shutdown() error: %v", err)
	}
}

func TestSetup_CustomEndpoint(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("OTEL_RESOURCE_ATTRIBUTES", "")

	cfg := Config{
		Enabled:     true,
		Endpoint:    "collector.internal:4318",
		ServiceName: "custom-endpoint-test",
		Environment: "staging",
	}

	ctx := context.Background()
	shutdown, err := Setup(ctx, cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}

	if err := shutdown(ctx); err != nil {
		t.Errorf("shutdown() error: %v", err)
	}
}

func TestSetup_SetsResourceAttributes(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("OTEL_RESOURCE_ATTRIBUTES", "")

	cfg := Config{
		Enabled:     true,
		ServiceName: "resource-attr-test",
		Environment: "production",
	}

	ctx := context.Background()
	shutdown, err := Setup(ctx, cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			t.Errorf("shutdown() error: %v", err)
		}
	}()

	if got := os.Getenv("OTEL_SERVICE_NAME"); got != "resource-attr-test" {
		t.Errorf("OTEL_SERVICE_NAME = %q, want %q", got, "resource-attr-test")
	}
	if got := os.Getenv("OTEL_RESOURCE_ATTRIBUTES"); !strings.Contains(got, "deployment.environment=production") {
		t.Errorf("OTEL_RESOURCE_ATTRIBUTES = %q, want deployment.environment=production", got)
	}
}

func TestSetup_DisabledLeavesEnvironmentAlone(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "preexisting")

	cfg := Config{
		Enabled:     false,
		ServiceName: "should-not-appear",
	}

	shutdown, err := Setup(context.Background(), cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("Setup(disabled) error: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			t.Errorf("shutdown() error: %v", err)
		}
	}()

	if got := os.Getenv("OTEL_SERVICE_NAME"); got != "preexisting" {
		t.Errorf("OTEL_SERVICE_NAME = %q, want %q (untouched)", got, "preexisting")
	}
}

func TestDefaultEndpoint_Value(t *testing.T) {
	t.Parallel()

	if DefaultEndpoint != "localhost:4318" {
		t.Errorf("DefaultEndpoint = %q, want %q", DefaultEndpoint, "localhost:4318")
	}
}
