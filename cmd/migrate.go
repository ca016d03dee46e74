package cmd

import (
	"fmt"

	"github.com/koopa0/rag-platform/db"
	"github.com/koopa0/rag-platform/internal/config"
	"github.com/koopa0/rag-platform/internal/logging"
)

// runMigrate applies pending database migrations and exits. serve never
// migrates on its own, so deploys run this first.
func runMigrate() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	logger := logging.Setup(logging.Config{
		Level: cfg.SlogLevel(),
		JSON:  cfg.IsProduction(),
	})
	logger.Info("running database migrations", "environment", cfg.Environment)

	return db.Migrate(cfg.DatabaseURL, logging.Named("db"))
}
