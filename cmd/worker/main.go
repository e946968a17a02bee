// Command worker runs the ingestion pipeline on a cron schedule, with
// health and metrics HTTP endpoints for operation.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"newsbrief/internal/app"
	workerPkg "newsbrief/internal/infra/worker"
	"newsbrief/internal/observability/logging"
)

func main() {
	// os.Exit in the middle of main would skip the deferred cleanup, so
	// main stays a thin wrapper around run.
	os.Exit(run())
}

func run() int {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	workerMetrics := workerPkg.NewWorkerMetrics()
	workerCfg, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		return 1
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerCfg.CronSchedule),
		slog.String("timezone", workerCfg.Timezone),
		slog.Duration("run_timeout", workerCfg.RunTimeout),
		slog.Int("health_port", workerCfg.HealthPort),
		slog.Int("metrics_port", workerCfg.MetricsPort))

	application, err := app.Build(ctx, logger)
	if err != nil {
		logger.Error("failed to build pipeline", slog.Any("error", err))
		return 1
	}
	defer application.Close()

	workerPkg.StartMetricsServer(ctx, workerCfg.MetricsPort, logger)

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", workerCfg.HealthPort), logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	if err := runCron(ctx, logger, application, workerCfg, workerMetrics, healthServer); err != nil {
		logger.Error("scheduler failed", slog.Any("error", err))
		return 1
	}
	return 0
}

// runCron installs the pipeline job on the configured schedule and
// blocks until the process receives a shutdown signal.
func runCron(
	ctx context.Context,
	logger *slog.Logger,
	application *app.App,
	cfg *workerPkg.WorkerConfig,
	metrics *workerPkg.WorkerMetrics,
	healthServer *workerPkg.HealthServer,
) error {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC",
			slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(cfg.CronSchedule, func() {
		runJob(logger, application, cfg, metrics)
	}); err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone))

	<-ctx.Done()

	healthServer.SetReady(false)
	stopCtx := c.Stop()
	// Let an in-flight run finish before exiting.
	select {
	case <-stopCtx.Done():
	case <-time.After(cfg.RunTimeout):
		logger.Warn("shutdown timed out waiting for running job")
	}
	logger.Info("worker stopped")
	return nil
}

// runJob executes one pipeline run under the configured timeout.
func runJob(logger *slog.Logger, application *app.App, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	start := time.Now()
	metrics.RecordJobRun("started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()

	state, err := application.Controller.Run(ctx)
	metrics.RecordJobDuration(time.Since(start).Seconds())
	if err != nil {
		metrics.RecordJobRun("failure")
		logger.Error("pipeline run failed",
			slog.String("run_id", state.RunID),
			slog.Any("error", err))
		return
	}

	metrics.RecordJobRun("success")
	metrics.RecordItemsDelivered(len(state.Admitted))
	metrics.RecordLastSuccess()
}
