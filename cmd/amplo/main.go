package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"amplo/internal/amqp"
	"amplo/internal/cli"
	"amplo/internal/core"
	apphttp "amplo/internal/http"
	"amplo/internal/services"
	"amplo/internal/tracker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	client := tracker.NewClient(cfg.TrackerBaseURL, tracker.WithPageLimit(cfg.PageLimit))

	window := tracker.DateRange{}
	if floor, err := time.Parse("2006-01-02", cfg.StartDateFloor); err != nil {
		logger.Error("Invalid TRACKER_START_DATE", "error", err, "value", cfg.StartDateFloor)
		os.Exit(1)
	} else {
		window.Start = core.NewDate(floor.Year(), int(floor.Month()), floor.Day())
	}

	// The export queue is optional for the panel: without it the worker falls
	// back to its periodic full export.
	var publisher services.ExportPublisher
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, export requests will not be published", "error", err)
	} else {
		defer amqpClient.Close()
		publisher = amqpClient
	}

	refreshSvc := services.NewRefreshService(client, repo, publisher, window)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go refreshSvc.RunPeriodic(ctx, cfg.RefreshInterval)

	srv := apphttp.NewServer(":"+cfg.Port, repo, refreshSvc, cfg.Location())

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second // exports can be slow on large snapshots
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting amplo server",
		"port", cfg.Port,
		"tracker", cfg.TrackerBaseURL,
		"refresh_interval", cfg.RefreshInterval.String())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
