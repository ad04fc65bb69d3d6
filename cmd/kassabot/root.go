package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"kassabot/internal/backend"
	"kassabot/internal/config"
	"kassabot/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "kassabot",
	Short: "Income and expense ledger for the salon till",
	Long: `Kassabot keeps the daily cash ledger of a small salon. Entries are
written in free-form German ("40 Euro Haarschnitt", "12 Euro Shampoo
gekauft") and parsed into typed income/expense records.

The serve command runs the JSON API; add, list, stats, and export work
directly on the local store.`,
	SilenceUsage: true,
}

var (
	cfg    *config.Config
	logger *log.Logger
)

func init() {
	cobra.OnInitialize(initApp)
}

// initApp loads .env and the configuration before any command runs.
func initApp() {
	// .env is a local development convenience, absence is fine
	_ = godotenv.Load()

	cfg = config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	logger = log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: "kassabot",
	})
	log.SetDefault(logger)
}

// openStore initializes the configured backend, with SQLite degrading to
// the flat-list store on failure.
func openStore(ctx context.Context) (*backend.Result, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.Open(ctx, bcfg, logger)
}
