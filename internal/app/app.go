// Package app provides application initialization and dependency wiring.
//
// App is the container holding everything with a lifecycle: the database
// pool, the cache client, and the tracer provider. Setup constructs the
// container in dependency order and Close releases it in reverse. Setup
// never blocks on backend connectivity: the API comes up even when backends
// are down, and /ready reports the actual state.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/koopa0/rag-platform/internal/config"
	"github.com/koopa0/rag-platform/internal/observability"
)

// tracerServiceName identifies this service in exported spans.
const tracerServiceName = "rag-platform"

// App is the core application container.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	// Pool is the PostgreSQL connection pool. The pool warms up in the
	// background; construction does not block on connectivity.
	Pool *pgxpool.Pool

	// Cache is the Redis client; nil when REDIS_URL is empty.
	Cache *redis.Client

	traceShutdown func(context.Context) error
}

// Setup creates and initializes the application.
// Returns an App with embedded cleanup; call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, retErr error) {
	if cfg == nil {
		return nil, config.ErrConfigNil
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{Config: cfg, Logger: logger}

	// On error, clean up everything already initialized
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	// Tracing first, so every later component sees the global provider.
	shutdown, err := provideTracing(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.traceShutdown = shutdown

	pool, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Pool = pool

	cache, err := provideCache(cfg)
	if err != nil {
		return nil, err
	}
	a.Cache = cache

	return a, nil
}

// Close gracefully releases all resources in reverse construction order.
// Safe to call more than once.
func (a *App) Close() error {
	var errs []error

	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing cache client: %w", err))
		}
		a.Cache = nil
	}

	if a.Pool != nil {
		a.Pool.Close()
		a.Pool = nil
	}

	if a.traceShutdown != nil {
		// Independent context: Close runs during teardown when the run
		// context is already canceled.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.traceShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutting down tracer provider: %w", err))
		}
		a.traceShutdown = nil
	}

	return errors.Join(errs...)
}

// provideTracing wires OTLP span export per configuration. Runs before any
// component that might create spans.
func provideTracing(ctx context.Context, cfg *config.Config, logger *slog.Logger) (func(context.Context) error, error) {
	shutdown, err := observability.Setup(ctx, observability.Config{
		Enabled:     cfg.TracingEnabled,
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: tracerServiceName,
		Environment: cfg.Environment,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("setting up tracing: %w", err)
	}
	return shutdown, nil
}

// provideDBPool creates the PostgreSQL connection pool. Construction does
// not block on connectivity: the service starts even when the database is
// down, and /ready surfaces the state.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	poolCfg.MaxConns = cfg.DatabaseMaxConns
	poolCfg.MinConns = cfg.DatabaseMinConns
	poolCfg.MaxConnLifetime = cfg.DatabaseConnLifetime
	poolCfg.MaxConnIdleTime = cfg.DatabaseConnIdleTime
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	return pool, nil
}

// provideCache constructs the Redis client from the configured URL. The URL
// is only parsed here; no connection is made. An empty URL disables the
// cache.
func provideCache(cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	return redis.NewClient(opts), nil
}
