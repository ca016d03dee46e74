// Package cmd provides CLI commands for the RAG platform.
//
// Commands:
//   - serve: HTTP API server with health probes and Prometheus metrics
//   - migrate: apply pending database migrations
//
// Signal handling and graceful shutdown are implemented
// for all commands via context cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
)

// Execute is the main entry point for the rag-platform CLI.
func Execute() error {
	// Bootstrap logger for everything that runs before settings are
	// loaded. serve replaces it with the configured handler.
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "serve":
		return runServe()
	case "migrate":
		return runMigrate()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("rag-platform - Production RAG platform API server")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  rag-platform serve [addr]  Start HTTP API server (default: 0.0.0.0:8000)")
	fmt.Println("  rag-platform migrate       Apply pending database migrations")
	fmt.Println("  rag-platform --version     Show version information")
	fmt.Println("  rag-platform --help        Show this help")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DATABASE_URL               PostgreSQL connection URL")
	fmt.Println("  REDIS_URL                  Redis connection URL (empty disables caching)")
	fmt.Println("  ENVIRONMENT                development, staging or production")
	fmt.Println("  LOG_LEVEL                  DEBUG, INFO, WARNING or ERROR")
	fmt.Println("  DEBUG                      Enable debug logging before settings load")
	fmt.Println()
	fmt.Println("Settings are read from the environment first, then a .env file,")
	fmt.Println("then built-in defaults. See .env.example for the full list.")
}
