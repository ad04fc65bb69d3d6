package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"kassabot/internal/amqp"
	"kassabot/internal/backend"
	"kassabot/internal/config"
	"kassabot/internal/log"
	"kassabot/internal/worker"
)

// kassabot-worker consumes entry events and maintains a CSV backup
// snapshot of the ledger. It reads the same store the server writes.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		os.Stderr.WriteString("configuration validation failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentWorker,
	})
	log.SetDefault(logger)

	logger.Info("Starting kassabot-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.Open(ctx, bcfg, logger)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer result.Store.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	backupWorker := worker.NewBackupWorker(result.Store, cfg.BackupDir, cfg.BackupMinInterval)

	// Cover any events missed while the worker was down.
	logger.Info("Writing startup snapshot", "dir", cfg.BackupDir)
	if err := backupWorker.WriteSnapshot(ctx); err != nil {
		logger.Error("Startup snapshot failed", "error", err)
		// Don't exit - continue with normal operation
	}

	err = amqpClient.ConsumeEntryEvents(ctx, func(msg *amqp.EntryEventMessage) error {
		return backupWorker.HandleEntryEvent(ctx, msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Event consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
