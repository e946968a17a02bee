package fetch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"newsbrief/internal/domain/entity"
)

// OrchestratorConfig bounds the fetch stage.
type OrchestratorConfig struct {
	// PerSourceTimeout caps one source's fetch including its retries.
	PerSourceTimeout time.Duration

	// GlobalTimeout caps the whole batch. Sources still running at the
	// deadline are cancelled and recorded as failed.
	GlobalTimeout time.Duration
}

// DefaultOrchestratorConfig returns the production timeouts.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		PerSourceTimeout: 45 * time.Second,
		GlobalTimeout:    2 * time.Minute,
	}
}

// Orchestrator runs all enabled sources concurrently and merges their
// results. It fails open: one source's failure or timeout never aborts
// the batch, and results collected before the global deadline are kept.
type Orchestrator struct {
	sources []*ResilientSource
	cfg     OrchestratorConfig
	logger  *slog.Logger
}

// NewOrchestrator creates an Orchestrator over the wrapped sources.
func NewOrchestrator(sources []*ResilientSource, cfg OrchestratorConfig, logger *slog.Logger) *Orchestrator {
	if cfg.PerSourceTimeout <= 0 {
		cfg.PerSourceTimeout = DefaultOrchestratorConfig().PerSourceTimeout
	}
	if cfg.GlobalTimeout <= 0 {
		cfg.GlobalTimeout = DefaultOrchestratorConfig().GlobalTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{sources: sources, cfg: cfg, logger: logger}
}

// FetchAll issues exactly one logical call per source, each under its own
// timeout, the batch under the global timeout. The merged item list is in
// completion order of the successful sources; one FetchOutcome is
// returned per source.
func (o *Orchestrator) FetchAll(ctx context.Context) ([]entity.Item, []entity.FetchOutcome) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, o.cfg.GlobalTimeout)
	defer cancel()

	var (
		mu       sync.Mutex
		items    []entity.Item
		outcomes []entity.FetchOutcome
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range o.sources {
		g.Go(func() error {
			sctx, scancel := context.WithTimeout(gctx, o.cfg.PerSourceTimeout)
			defer scancel()

			res := src.Fetch(sctx)

			mu.Lock()
			items = append(items, res.Items...)
			outcomes = append(outcomes, res.Outcome)
			mu.Unlock()
			return nil
		})
	}
	// Goroutines never return errors; failures live in the outcomes.
	_ = g.Wait()

	ok, failed := 0, 0
	for _, out := range outcomes {
		if out.Status == entity.FetchFailed {
			failed++
		} else {
			ok++
		}
	}
	o.logger.Info("fetch batch completed",
		slog.Int("sources", len(o.sources)),
		slog.Int("succeeded", ok),
		slog.Int("failed", failed),
		slog.Int("items", len(items)),
		slog.Duration("duration", time.Since(start)))

	return items, outcomes
}
