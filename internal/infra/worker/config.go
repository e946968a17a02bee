// Package worker provides the scheduled-run infrastructure: worker
// configuration, the health and metrics HTTP servers, and the metrics
// tracking cron job execution.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"newsbrief/internal/pkg/config"
)

// WorkerConfig controls the scheduling and operational parameters of
// the worker process. All fields have defaults and loading is fail-open:
// an invalid environment value falls back to the default with a warning
// instead of refusing to start.
type WorkerConfig struct {
	// CronSchedule is the five-field cron expression for pipeline runs.
	// Default: "30 6 * * *" (daily at 6:30).
	CronSchedule string

	// Timezone is the IANA timezone the schedule is evaluated in.
	// Default: "UTC".
	Timezone string

	// RunTimeout caps one pipeline run. Default: 10 minutes.
	RunTimeout time.Duration

	// HealthPort is the port for the liveness/readiness HTTP server.
	// Default: 9091.
	HealthPort int

	// MetricsPort is the port for the Prometheus scrape endpoint.
	// Default: 9090.
	MetricsPort int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule: "30 6 * * *",
		Timezone:     "UTC",
		RunTimeout:   10 * time.Minute,
		HealthPort:   9091,
		MetricsPort:  9090,
	}
}

// Validate checks every field, collecting all failures into one error.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDuration(c.RunTimeout, time.Minute, 2*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads the worker configuration from environment
// variables with validated fallback to defaults. It never returns an
// error; every fallback is logged and counted in the metrics.
//
// Environment variables:
//   - CRON_SCHEDULE: cron expression (default "30 6 * * *")
//   - WORKER_TIMEZONE: IANA timezone (default "UTC")
//   - RUN_TIMEOUT: duration string, e.g. "10m" (default 10 minutes)
//   - WORKER_HEALTH_PORT: 1024-65535 (default 9091)
//   - METRICS_PORT: 1024-65535 (default 9090)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	applyFallback := func(field string, result config.ConfigLoadResult) {
		if !result.FallbackApplied {
			return
		}
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field, "default")
		for _, warning := range result.Warnings {
			logger.Warn("configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	result := config.LoadEnvWithFallback("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	applyFallback("cron_schedule", result)

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	applyFallback("timezone", result)

	result = config.LoadEnvDuration("RUN_TIMEOUT", cfg.RunTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Minute, 2*time.Hour)
	})
	cfg.RunTimeout = result.Value.(time.Duration)
	applyFallback("run_timeout", result)

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	applyFallback("health_port", result)

	result = config.LoadEnvInt("METRICS_PORT", cfg.MetricsPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.MetricsPort = result.Value.(int)
	applyFallback("metrics_port", result)

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
