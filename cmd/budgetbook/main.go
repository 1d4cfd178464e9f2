package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetbook/internal/amqp"
	"budgetbook/internal/cli"
	apphttp "budgetbook/internal/http"
	"budgetbook/internal/ledger"
	"budgetbook/internal/log"
	"budgetbook/internal/services"
	"budgetbook/internal/sheets"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.OpenStore(logger, cfg.SQLiteDBPath)
	defer store.Close()

	// Optional collaborators are assembled before the ledger so change
	// events flow from the first mutation on.
	var listeners ledger.MultiListener

	if cfg.AMQPEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without event publishing", "error", err)
		} else {
			defer amqpClient.Close()
			listeners = append(listeners, amqpClient)
			logger.Info("AMQP event publishing enabled", "exchange", cfg.AMQPExchange)
		}
	}

	if cfg.SheetsEnabled() {
		sheetsClient, err := sheets.NewClient(context.Background(), sheets.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			CredentialsFile: cfg.GoogleCredentialsFile,
		})
		if err != nil {
			logger.Warn("Sheets backup unavailable, continuing without it", "error", err)
		} else {
			listeners = append(listeners, sheetsClient)
			logger.Info("Sheets backup enabled", "spreadsheet", cfg.GoogleSpreadsheetID)
		}
	}

	var opts []ledger.Option
	if len(listeners) > 0 {
		opts = append(opts, ledger.WithListener(listeners))
	}
	l := ledger.Open(context.Background(), store, opts...)

	srv := apphttp.NewServer(l,
		services.NewRecurringProcessor(store, l),
		services.NewGoalService(store),
		services.NewAlertService(store),
		apphttp.Options{
			Addr:      ":" + cfg.Port,
			CacheSize: cfg.CacheSize,
			Logger:    logger,
		})

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	g, _ := errgroup.WithContext(shutdownCtx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
