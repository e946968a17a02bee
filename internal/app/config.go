package app

import (
	"log/slog"
	"strings"
	"time"

	"newsbrief/internal/pkg/config"
	"newsbrief/internal/resilience/retry"
	"newsbrief/internal/usecase/dedup"
	"newsbrief/internal/usecase/fetch"
	"newsbrief/internal/usecase/filter"
	"newsbrief/internal/usecase/pipeline"
	"newsbrief/internal/usecase/score"
)

// The loaders below follow the fail-open convention: every invalid
// value is logged and replaced by its default.

func warnAll(logger *slog.Logger, result config.ConfigLoadResult) config.ConfigLoadResult {
	for _, w := range result.Warnings {
		logger.Warn("configuration fallback applied", slog.String("warning", w))
	}
	return result
}

// loadPipelineConfig loads the stage thresholds.
//
// Environment variables:
//   - RECENCY_WINDOW: filter window (default 48h)
//   - MIN_CONTENT_LENGTH: bytes (default 80)
//   - FILTER_KEYWORDS: comma-separated allow list (default none)
//   - MIN_IMPORTANCE, MIN_RELEVANCE, MIN_DECLARED_PRIORITY: 0-10
//   - PER_SOURCE_CAP, TOTAL_CAP: brief size caps, 0 disables
//   - REPORT_DIR: report output directory (default "reports")
func loadPipelineConfig(logger *slog.Logger) pipeline.Config {
	filterCfg := filter.DefaultConfig()
	admission := score.DefaultConfig()

	result := warnAll(logger, config.LoadEnvDuration("RECENCY_WINDOW", filterCfg.RecencyWindow,
		func(d time.Duration) error { return config.ValidateDuration(d, time.Hour, 14*24*time.Hour) }))
	filterCfg.RecencyWindow = result.Value.(time.Duration)

	result = warnAll(logger, config.LoadEnvInt("MIN_CONTENT_LENGTH", filterCfg.MinContentLength,
		func(v int) error { return config.ValidateIntRange(v, 0, 100000) }))
	filterCfg.MinContentLength = result.Value.(int)

	if raw := config.LoadEnvString("FILTER_KEYWORDS", ""); raw != "" {
		for _, kw := range strings.Split(raw, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				filterCfg.Keywords = append(filterCfg.Keywords, kw)
			}
		}
	}

	scoreRange := func(v int) error { return config.ValidateIntRange(v, 0, 10) }

	result = warnAll(logger, config.LoadEnvInt("MIN_IMPORTANCE", admission.MinImportance, scoreRange))
	admission.MinImportance = result.Value.(int)

	result = warnAll(logger, config.LoadEnvInt("MIN_RELEVANCE", admission.MinRelevance, scoreRange))
	admission.MinRelevance = result.Value.(int)

	result = warnAll(logger, config.LoadEnvInt("MIN_DECLARED_PRIORITY", admission.MinDeclaredPriority, scoreRange))
	admission.MinDeclaredPriority = result.Value.(int)

	capRange := func(v int) error { return config.ValidateIntRange(v, 0, 1000) }

	result = warnAll(logger, config.LoadEnvInt("PER_SOURCE_CAP", 0, capRange))
	perSourceCap := result.Value.(int)

	result = warnAll(logger, config.LoadEnvInt("TOTAL_CAP", 0, capRange))
	totalCap := result.Value.(int)

	return pipeline.Config{
		Filter:       filterCfg,
		Admission:    admission,
		PerSourceCap: perSourceCap,
		TotalCap:     totalCap,
		ReportDir:    config.LoadEnvString("REPORT_DIR", "reports"),
	}
}

// loadOrchestratorConfig loads the fetch stage timeouts.
//
// Environment variables:
//   - PER_SOURCE_TIMEOUT: per-source fetch deadline (default 45s)
//   - GLOBAL_FETCH_TIMEOUT: whole batch deadline (default 2m)
func loadOrchestratorConfig(logger *slog.Logger) fetch.OrchestratorConfig {
	cfg := fetch.DefaultOrchestratorConfig()

	result := warnAll(logger, config.LoadEnvDuration("PER_SOURCE_TIMEOUT", cfg.PerSourceTimeout,
		func(d time.Duration) error { return config.ValidateDuration(d, time.Second, 10*time.Minute) }))
	cfg.PerSourceTimeout = result.Value.(time.Duration)

	result = warnAll(logger, config.LoadEnvDuration("GLOBAL_FETCH_TIMEOUT", cfg.GlobalTimeout,
		func(d time.Duration) error { return config.ValidateDuration(d, time.Second, 30*time.Minute) }))
	cfg.GlobalTimeout = result.Value.(time.Duration)

	return cfg
}

// loadDedupConfig loads the dedup thresholds.
//
// Environment variables:
//   - SIMILARITY_THRESHOLD: title similarity ratio, 0.5-1.0 (default 0.8)
//   - HISTORY_RETENTION: fingerprint retention (default 168h)
func loadDedupConfig(logger *slog.Logger) dedup.Config {
	cfg := dedup.DefaultConfig()

	result := warnAll(logger, config.LoadEnvFloat("SIMILARITY_THRESHOLD", cfg.SimilarityThreshold,
		func(v float64) error { return config.ValidateFloatRange(v, 0.5, 1.0) }))
	cfg.SimilarityThreshold = result.Value.(float64)

	result = warnAll(logger, config.LoadEnvDuration("HISTORY_RETENTION", cfg.Retention,
		func(d time.Duration) error { return config.ValidateDuration(d, time.Hour, 90*24*time.Hour) }))
	cfg.Retention = result.Value.(time.Duration)

	return cfg
}

// loadRetryConfig loads the per-source retry policy.
//
// Environment variables:
//   - SOURCE_RETRY_MAX_ATTEMPTS: 1-10 (default 3)
func loadRetryConfig(logger *slog.Logger) retry.Config {
	cfg := retry.SourceFetchConfig()

	result := warnAll(logger, config.LoadEnvInt("SOURCE_RETRY_MAX_ATTEMPTS", cfg.MaxAttempts,
		func(v int) error { return config.ValidateIntRange(v, 1, 10) }))
	cfg.MaxAttempts = result.Value.(int)

	return cfg
}

// loadBreakerConfig loads the per-source circuit breaker policy.
//
// Environment variables:
//   - BREAKER_FAILURE_THRESHOLD: consecutive failures to open, 1-10 (default 3)
//   - BREAKER_COOLDOWN: open-state cooldown, 1m-24h (default 30m)
func loadBreakerConfig(logger *slog.Logger) (threshold int, cooldown time.Duration) {
	result := warnAll(logger, config.LoadEnvInt("BREAKER_FAILURE_THRESHOLD", 3,
		func(v int) error { return config.ValidateIntRange(v, 1, 10) }))
	threshold = result.Value.(int)

	result = warnAll(logger, config.LoadEnvDuration("BREAKER_COOLDOWN", 30*time.Minute,
		func(d time.Duration) error { return config.ValidateDuration(d, time.Minute, 24*time.Hour) }))
	cooldown = result.Value.(time.Duration)

	return threshold, cooldown
}
