// Package cli consolidates the initialization steps shared by cmd/budget
// and cmd/budget-worker.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"budget/internal/config"
	applog "budget/internal/log"
)

// Bootstrap loads the .env file, builds the config, installs the default
// logger, and validates. A validation failure exits the process; there is
// nothing useful either binary can do without a valid config.
func Bootstrap(name string) (*config.Config, *applog.Logger) {
	// .env is for local development only, errors are ignored elsewhere
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{Level: applog.ParseLevel(cfg.LogLevel)})
	applog.SetDefault(logger)

	logger.Info("Starting " + name)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	return cfg, logger
}
