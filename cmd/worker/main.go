package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tusharelectronics/storefront/internal/config"
	"github.com/tusharelectronics/storefront/internal/queue"
	"github.com/tusharelectronics/storefront/internal/telemetry"
	"github.com/tusharelectronics/storefront/internal/usecase"
)

func main() {
	var (
		mode   = flag.String("mode", "worker", "Mode to run: 'worker', 'scheduler', 'reconcile'")
		dryRun = flag.Bool("dry-run", false, "With -mode reconcile, report orphans without removing them")
	)
	flag.Parse()

	logger := telemetry.NewLogger(os.Getenv(config.ENV_KEY_LOG_LEVEL))

	shutdown, err := telemetry.Setup(context.Background(), "storefront-"+*mode)
	if err != nil {
		logger.Warn("telemetry disabled", slog.String("err", err.Error()))
	}
	defer func() {
		if shutdown == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown", slog.String("err", err.Error()))
		}
	}()

	switch *mode {
	case "worker":
		runWorker(logger)
	case "scheduler":
		runScheduler(logger)
	case "reconcile":
		if !runReconcile(logger, *dryRun) {
			os.Exit(1)
		}
	default:
		logger.Error("Invalid mode. Use 'worker', 'scheduler' or 'reconcile'", slog.String("mode", *mode))
		os.Exit(1)
	}
}

func runWorker(logger *slog.Logger) {
	logger.Info("Starting in WORKER mode...")

	worker, err := queue.NewWorker(logger)
	if err != nil {
		logger.Error("Failed to create worker", slog.String("err", err.Error()))
		os.Exit(1)
	}

	if err := worker.Start(); err != nil {
		logger.Error("Worker error", slog.String("err", err.Error()))
		os.Exit(1)
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	worker.Stop()
	logger.Info("Worker exited properly")
}

func runScheduler(logger *slog.Logger) {
	logger.Info("Starting in SCHEDULER mode...")

	scheduler, err := queue.NewScheduler(logger)
	if err != nil {
		logger.Error("Failed to create scheduler", slog.String("err", err.Error()))
		os.Exit(1)
	}

	if err := scheduler.Start(); err != nil {
		logger.Error("Scheduler error", slog.String("err", err.Error()))
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down scheduler...")
	scheduler.Stop()
	logger.Info("Scheduler exited properly")
}

// runReconcile sweeps the asset store once without going through redis.
func runReconcile(logger *slog.Logger, dryRun bool) bool {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := queue.RunReconcile(ctx, logger, usecase.ReconcileOption{
		DryRun:      dryRun,
		GracePeriod: config.EnvDuration(config.ENV_KEY_RECONCILE_GRACE_PERIOD, config.DEFAULT_RECONCILE_GRACE_PERIOD),
	})
	if err != nil {
		logger.Error("Reconcile failed", slog.String("err", err.Error()))
		return false
	}

	logger.Info("Reconcile finished",
		slog.Bool("dry_run", dryRun),
		slog.Int("scanned", report.Scanned),
		slog.Int("orphans", len(report.Orphans)),
		slog.Int("removed", len(report.Removed)),
		slog.Int("missing", len(report.Missing)),
	)
	for _, ref := range report.Missing {
		logger.Warn("missing_asset", slog.String("ref", ref.String()))
	}
	return true
}
