package main

import (
	"context"
	"time"

	"budgetbook/internal/cli"
	"budgetbook/internal/ledger"
	"budgetbook/internal/log"
	"budgetbook/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.OpenStore(logger, cfg.SQLiteDBPath)
	defer store.Close()

	l := ledger.Open(context.Background(), store)
	processor := services.NewRecurringProcessor(store, l)

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	logger.Info("Recurring processor configured",
		"interval", cfg.RecurringInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()

	// Process once on startup, then on every tick.
	runOnce(ctx, logger, processor)
	for {
		select {
		case <-ticker.C:
			runOnce(ctx, logger, processor)
		case <-ctx.Done():
			cli.WaitForShutdown(ctx, done)
			logger.Info("Recurring-worker stopped")
			return
		}
	}
}

func runOnce(ctx context.Context, logger *log.Logger, processor *services.RecurringProcessor) {
	count, err := processor.ProcessDue(ctx)
	if err != nil {
		logger.Error("Recurring processing failed", "error", err)
		return
	}
	if count > 0 {
		logger.Info("Recurring processing complete", "materialized", count)
	}
}
