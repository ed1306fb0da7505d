package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cuentas/internal/amqp"
	"cuentas/internal/config"
	"cuentas/internal/export"
	"cuentas/internal/log"
	"cuentas/internal/storage"
	"cuentas/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentWorker,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if !cfg.ExportEnabled() {
		logger.Error("no GOOGLE_SPREADSHEET_ID provided, nothing to export")
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("no AMQP_URL provided, cannot consume state changes")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to initialize storage", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exporter, err := export.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize exporter", log.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(repo, exporter, logger)

	go func() {
		err := amqpClient.ConsumeStateChanged(ctx, func(msg *amqp.StateChangedMessage) error {
			return exportWorker.HandleStateChanged(ctx, msg)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("message consumption failed", log.FieldError, err)
		}
		cancel()
	}()

	// Backstop for lost messages.
	go exportWorker.RunPeriodic(ctx, cfg.ExportInterval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("context cancelled")
	}

	cancel()
	time.Sleep(time.Second)
	logger.Info("worker shutdown complete")
}
