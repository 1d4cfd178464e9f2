package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"budgetbook/internal/cli"
	"budgetbook/internal/ledger"
	"budgetbook/internal/log"
	"budgetbook/internal/report"
)

// One-shot: renders the current month's report to REPORT_DIR and exits.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentReport)
	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.OpenStore(logger, cfg.SQLiteDBPath)
	defer store.Close()

	l := ledger.Open(context.Background(), store)

	now := time.Now()
	if err := os.MkdirAll(cfg.ReportDir, 0755); err != nil {
		logger.Error("Failed to create report directory", "error", err, "dir", cfg.ReportDir)
		os.Exit(1)
	}
	path := filepath.Join(cfg.ReportDir, report.FileName(now))
	if err := os.WriteFile(path, []byte(report.Monthly(l, now)), 0644); err != nil {
		logger.Error("Failed to write report", "error", err, "path", path)
		os.Exit(1)
	}
	logger.Info("Report written", "path", path)
}
