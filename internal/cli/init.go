// Package cli provides common CLI initialization utilities shared by
// cmd/presupuesto and cmd/presupuesto-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"presupuesto/internal/config"
	"presupuesto/internal/log"
)

// ShutdownTimeout bounds graceful shutdown of servers and workers.
const ShutdownTimeout = 30 * time.Second

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile(files ...string) {
	_ = godotenv.Load(files...)
}

// SetupLogger initializes structured logging at the given level and makes
// it the default logger.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadConfig loads the env files (.env when none are given), then the
// environment, and validates the result.
func LoadConfig(envFiles ...string) (*config.Config, error) {
	LoadEnvFile(envFiles...)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
