package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"amplo/internal/amqp"
	"amplo/internal/cli"
	"amplo/internal/mapping"
	ports "amplo/internal/sheets"
	gsheet "amplo/internal/sheets/google"
	mem "amplo/internal/sheets/memory"
	"amplo/internal/worker"
)

// The worker exports at most once per fallbackInterval even when no export
// request arrives, so missed messages never strand the spreadsheets.
const fallbackInterval = 30 * time.Minute

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting amplo-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mirror   ports.TransactionMirror
		sheetDir ports.ManagerDirectory
		ledger   ports.MonthlyLedger
	)

	switch cfg.ExportBackend {
	case "sheets":
		gs, err := gsheet.New(ctx, gsheet.Options{
			GeneralSpreadsheetID: cfg.GeneralSpreadsheetID,
			GeneralSheetName:     cfg.GeneralSheetName,
			MappingSpreadsheetID: cfg.MappingSpreadsheetID,
			MappingRange:         cfg.MappingRange,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		mirror, sheetDir, ledger = gs, gs, gs
		logger.Info("Initialized Google Sheets backend",
			"general_spreadsheet", cfg.GeneralSpreadsheetID,
			"mapping_spreadsheet", cfg.MappingSpreadsheetID)
	default:
		store := mem.New(nil)
		mirror, sheetDir, ledger = store, store, store
		logger.Info("Initialized memory backend", "backend", cfg.ExportBackend)
	}

	directory := &mapping.Directory{Sheet: sheetDir, FilePath: cfg.MappingFile}
	exportWorker := worker.NewExportWorker(repo, mirror, directory, ledger)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeExportRequests(gctx, exportWorker.HandleExportRequest)
	})

	g.Go(func() error {
		ticker := time.NewTicker(fallbackInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				stats, err := exportWorker.Export(gctx)
				if err != nil {
					logger.Error("Periodic export failed", "error", err)
					continue
				}
				logger.Info("Periodic export completed",
					"mirrored", stats.Mirrored,
					"ledger_rows", stats.LedgerRows,
					"skipped_rows", stats.SkippedRows)
			}
		}
	})

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	case <-gctx.Done():
		logger.Info("Worker context cancelled")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
