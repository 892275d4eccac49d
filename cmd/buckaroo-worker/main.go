package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"buckaroo/internal/amqp"
	"buckaroo/internal/config"
	"buckaroo/internal/log"
	"buckaroo/internal/repository/guest"
	"buckaroo/internal/repository/remote"
	"buckaroo/internal/storage"
	"buckaroo/internal/worker"
)

func main() {
	migrate := flag.Bool("migrate", false, "push the local guest ledger to the remote account and exit")
	flag.Parse()

	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.FromEnv()).WithComponent(log.ComponentWorker)
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	kv, err := storage.OpenKV(cfg.GuestDBPath)
	if err != nil {
		logger.Error("Failed to open guest store",
			log.FieldError, err.Error(), "path", cfg.GuestDBPath)
		os.Exit(1)
	}
	defer kv.Close()

	store := guest.NewStore(kv)

	if *migrate {
		runMigration(cfg, store, logger)
		return
	}

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required to run the export worker")
		os.Exit(1)
	}

	events, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer events.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	w := worker.NewExportWorker(store, cfg.ExportDir, cfg.ExportDebounce)

	logger.Info("Starting buckaroo-worker",
		"export_dir", cfg.ExportDir,
		"debounce", cfg.ExportDebounce.String())

	if err := w.Run(ctx, events); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}

// runMigration copies the guest ledger into the configured remote account.
// It requires remote credentials even when SESSION_MODE is guest.
func runMigration(cfg *config.Config, store *guest.Store, logger *log.Logger) {
	if cfg.APIBaseURL == "" || cfg.APIToken == "" {
		logger.Error("API_BASE_URL and API_TOKEN are required for migration")
		os.Exit(1)
	}

	client := remote.NewClient(cfg.APIBaseURL, cfg.APIToken)

	result, err := worker.Migrate(context.Background(), store, client)
	if err != nil {
		logger.Error("Migration failed",
			log.FieldError, err.Error(),
			"migrated", result.Migrated,
			"failed", result.Failed)
		os.Exit(1)
	}

	logger.Info("Migration completed",
		"total", result.Total,
		"migrated", result.Migrated)
}
