package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/koopa0/rag-platform/internal/api"
	"github.com/koopa0/rag-platform/internal/app"
	"github.com/koopa0/rag-platform/internal/config"
	"github.com/koopa0/rag-platform/internal/logging"
)

// Server timeout configuration.
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 2 * time.Minute // streaming answers need the longer timeout
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 30 * time.Second
)

// runServe initializes and starts the HTTP API server.
func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	addr, err := parseServeAddr(cfg.Addr())
	if err != nil {
		return fmt.Errorf("parsing address: %w", err)
	}

	logger := logging.Setup(logging.Config{
		Level:     cfg.SlogLevel(),
		JSON:      cfg.IsProduction(),
		AddSource: true,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	apiServer, err := api.NewServer(api.ServerConfig{
		Logger: logging.Named("api"),
		Config: cfg,
		DB:     dbPinger(a),
		Cache:  cachePinger(a),
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	logger.Info("starting application",
		"project", cfg.ProjectName,
		"version", cfg.APIVersion,
		"environment", cfg.Environment,
		"addr", addr,
		"api", cfg.APIPrefix+"/*",
		"health", "/health, /ready",
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down application")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server: %w", err)
	}
}

// dbPinger exposes the pool to the readiness probe. A missing pool must
// become a nil interface, not a typed nil.
func dbPinger(a *app.App) api.Pinger {
	if a.Pool == nil {
		return nil
	}
	return a.Pool
}

// redisPinger adapts the go-redis client to the readiness Pinger,
// collapsing the StatusCmd result to a plain error.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func cachePinger(a *app.App) api.Pinger {
	if a.Cache == nil {
		return nil
	}
	return redisPinger{client: a.Cache}
}
