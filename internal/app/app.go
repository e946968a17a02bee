// Package app assembles the pipeline from configuration. Both the
// scheduled worker and the one-shot brief command build the same object
// graph through Build, so wiring lives in exactly one place.
package app

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"newsbrief/internal/adapter/source"
	"newsbrief/internal/enrich"
	"newsbrief/internal/infra/db"
	"newsbrief/internal/infra/fetcher"
	"newsbrief/internal/infra/notifier"
	"newsbrief/internal/infra/persistence/postgres"
	"newsbrief/internal/infra/persistence/sqlite"
	"newsbrief/internal/pkg/config"
	"newsbrief/internal/repository"
	"newsbrief/internal/resilience/circuitbreaker"
	"newsbrief/internal/usecase/dedup"
	"newsbrief/internal/usecase/fetch"
	"newsbrief/internal/usecase/pipeline"
)

// App holds the assembled pipeline and the resources behind it.
type App struct {
	Controller *pipeline.Controller
	Logger     *slog.Logger

	database *sql.DB
}

// Close releases the app's resources.
func (a *App) Close() {
	if a.database != nil {
		if err := a.database.Close(); err != nil {
			a.Logger.Error("failed to close database", slog.Any("error", err))
		}
	}
}

// Build assembles the full pipeline from environment configuration and
// the sources file, opens and migrates the history store, and restores
// persisted circuit breaker state. The returned App owns the database
// connection; call Close when done.
func Build(ctx context.Context, logger *slog.Logger) (*App, error) {
	driver := db.DriverFromEnv()
	database, err := db.Open(driver)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	if err := db.MigrateUp(database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("migrate history store: %w", err)
	}

	var (
		history  repository.HistoryRepository
		circuits repository.CircuitStateRepository
	)
	switch driver {
	case db.DriverPostgres:
		history = postgres.NewHistoryRepo(database)
		circuits = postgres.NewCircuitRepo(database)
	default:
		history = sqlite.NewHistoryRepo(database)
		circuits = sqlite.NewCircuitRepo(database)
	}

	sources, err := buildSources(logger)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	orchestrator := fetch.NewOrchestrator(sources, loadOrchestratorConfig(logger), logger)
	engine := dedup.NewEngine(history, loadDedupConfig(logger), logger)

	backend, err := enrich.NewFromEnv()
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("enrichment backend: %w", err)
	}
	enricher := enrich.NewService(backend, logger)

	controller := pipeline.NewController(
		orchestrator,
		sources,
		engine,
		buildEnhancer(logger),
		enricher,
		buildDispatcher(logger),
		circuits,
		loadPipelineConfig(logger),
		logger,
	)

	if err := controller.RestoreCircuitState(ctx); err != nil {
		logger.Warn("circuit state restore failed, starting with closed breakers",
			slog.Any("error", err))
	}

	return &App{
		Controller: controller,
		Logger:     logger,
		database:   database,
	}, nil
}

// buildSources loads the sources file and wraps each adapter with its
// retry policy and circuit breaker.
func buildSources(logger *slog.Logger) ([]*fetch.ResilientSource, error) {
	path := config.LoadEnvString("SOURCES_FILE", "sources.yaml")
	specs, err := config.LoadSources(path)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	factory := source.NewFactory(newSourceHTTPClient())
	adapters, err := factory.BuildAll(specs)
	if err != nil {
		return nil, fmt.Errorf("build sources: %w", err)
	}

	retryCfg := loadRetryConfig(logger)
	threshold, cooldown := loadBreakerConfig(logger)

	wrapped := make([]*fetch.ResilientSource, 0, len(adapters))
	for _, a := range adapters {
		breaker := circuitbreaker.NewSourceBreaker(circuitbreaker.SourceConfig{
			SourceName:       a.Name(),
			FailureThreshold: threshold,
			Cooldown:         cooldown,
		})
		wrapped = append(wrapped, fetch.NewResilientSource(a, breaker, retryCfg, logger))
	}

	logger.Info("sources configured",
		slog.Int("count", len(wrapped)),
		slog.String("file", path))
	return wrapped, nil
}

// newSourceHTTPClient builds the HTTP client shared by the adapters.
// TLS 1.2+ enforced.
func newSourceHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

func buildEnhancer(logger *slog.Logger) pipeline.Enhancer {
	settings, warnings := fetcher.LoadSettingsFromEnv()
	for _, w := range warnings {
		logger.Warn("configuration fallback applied", slog.String("warning", w))
	}
	if !settings.Enabled {
		logger.Info("content enhancement disabled")
		return nil
	}
	logger.Info("content enhancement enabled",
		slog.Int("threshold", settings.Threshold),
		slog.Int("parallelism", settings.Parallelism),
		slog.Duration("timeout", settings.Fetch.Timeout))
	return fetcher.NewEnhancer(
		fetcher.NewReadabilityFetcher(settings.Fetch),
		settings.Threshold,
		settings.Parallelism,
		logger,
	)
}

// buildDispatcher configures the delivery channels from the
// environment. With no channel enabled the noop channel keeps the
// pipeline runnable and the brief visible in the logs and report file.
func buildDispatcher(logger *slog.Logger) *notifier.Dispatcher {
	var channels []notifier.Channel

	if tg := loadTelegramConfig(logger); tg.Enabled {
		channels = append(channels, notifier.NewTelegramNotifier(tg))
		logger.Info("telegram channel enabled")
	}
	if sl := loadSlackConfig(logger); sl.Enabled {
		channels = append(channels, notifier.NewSlackNotifier(sl))
		logger.Info("slack channel enabled")
	}
	if len(channels) == 0 {
		logger.Info("no delivery channel configured, using noop")
		channels = append(channels, notifier.NewNoOp())
	}

	return notifier.NewDispatcher(channels, logger)
}

// loadTelegramConfig reads TELEGRAM_ENABLED, TELEGRAM_BOT_TOKEN, and
// TELEGRAM_CHAT_ID. Missing credentials disable the channel with a
// warning rather than failing the process.
func loadTelegramConfig(logger *slog.Logger) notifier.TelegramConfig {
	if !envBool(logger, "TELEGRAM_ENABLED") {
		return notifier.TelegramConfig{Enabled: false}
	}

	token := config.LoadEnvString("TELEGRAM_BOT_TOKEN", "")
	chatID := config.LoadEnvString("TELEGRAM_CHAT_ID", "")
	if token == "" || chatID == "" {
		logger.Warn("telegram credentials missing, disabling channel")
		return notifier.TelegramConfig{Enabled: false}
	}

	return notifier.TelegramConfig{
		Enabled:  true,
		BotToken: token,
		ChatID:   chatID,
		Timeout:  15 * time.Second,
	}
}

// loadSlackConfig reads SLACK_ENABLED and SLACK_WEBHOOK_URL. The
// webhook URL must be an HTTPS hooks.slack.com /services/ URL; anything
// else disables the channel with a warning.
func loadSlackConfig(logger *slog.Logger) notifier.SlackConfig {
	if !envBool(logger, "SLACK_ENABLED") {
		return notifier.SlackConfig{Enabled: false}
	}

	webhookURL := config.LoadEnvString("SLACK_WEBHOOK_URL", "")
	if webhookURL == "" {
		logger.Warn("slack webhook URL is empty, disabling channel")
		return notifier.SlackConfig{Enabled: false}
	}

	u, err := url.Parse(webhookURL)
	if err != nil || u.Scheme != "https" || u.Host != "hooks.slack.com" ||
		!strings.HasPrefix(u.Path, "/services/") {
		logger.Warn("invalid slack webhook URL, disabling channel")
		return notifier.SlackConfig{Enabled: false}
	}

	return notifier.SlackConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    15 * time.Second,
	}
}

func envBool(logger *slog.Logger, key string) bool {
	result := config.LoadEnvBool(key, false)
	for _, w := range result.Warnings {
		logger.Warn("configuration fallback applied", slog.String("warning", w))
	}
	return result.Value.(bool)
}
