package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budget/internal/amqp"
	"budget/internal/cli"
	"budget/internal/storage"
	"budget/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap("budget-worker")

	if cfg.DataBackend != "local" {
		logger.Error("The export worker reads the local slot store", "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required to consume mutation events")
		os.Exit(1)
	}

	store, err := storage.NewSlotStore(cfg.SQLiteDBPath, cfg.SlotName)
	if err != nil {
		logger.Error("Failed to open slot store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exportWorker := worker.NewExportWorker(store, cfg.ExportDir)

	// Seed the snapshots so consumers have files before the first event.
	if err := exportWorker.RegenerateAll(ctx); err != nil {
		logger.Error("Initial snapshot generation failed", "error", err)
	}

	go func() {
		if err := amqpClient.ConsumeExpenseEvents(ctx, exportWorker.HandleExpenseEvent); err != nil {
			if err != context.Canceled {
				logger.Error("Event consumption failed", "error", err)
			}
			cancel()
		}
	}()

	// Periodic regeneration catches events lost while the worker was down.
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := exportWorker.RegenerateAll(ctx); err != nil {
					logger.Error("Periodic snapshot regeneration failed", "error", err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	case <-ctx.Done():
	}

	logger.Info("Worker stopped gracefully")
}
