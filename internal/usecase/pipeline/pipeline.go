// Package pipeline implements the fixed-sequence run controller:
// Fetch -> Filter -> Dedup -> Enrich -> Admit -> Format -> Deliver.
// Each stage consumes the previous stage's immutable output; item-level
// enrichment failures degrade to fallback scoring while history store
// and delivery failures terminate the run with a reported error.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"newsbrief/internal/domain/entity"
	"newsbrief/internal/format"
	"newsbrief/internal/observability/logging"
	"newsbrief/internal/observability/metrics"
	"newsbrief/internal/repository"
	"newsbrief/internal/usecase/dedup"
	"newsbrief/internal/usecase/fetch"
	"newsbrief/internal/usecase/filter"
	"newsbrief/internal/usecase/score"
)

// Enricher scores a batch of items, one result per input item.
type Enricher interface {
	EnrichAll(ctx context.Context, items []entity.Item) []score.ScoredItem
}

// Enhancer optionally replaces teaser bodies with full article text
// before enrichment.
type Enhancer interface {
	Enhance(ctx context.Context, items []entity.Item) []entity.Item
}

// Deliverer sends the formatted brief to the configured channels.
type Deliverer interface {
	Deliver(ctx context.Context, text string) error
}

// Config holds the controller's stage parameters.
type Config struct {
	Filter    filter.Config
	Admission score.Config

	// PerSourceCap and TotalCap bound the final brief. Zero disables.
	PerSourceCap int
	TotalCap     int

	// ReportDir, when set, receives a dated markdown copy of each brief.
	ReportDir string
}

// RunState is the immutable trace of one pipeline run. Each field is the
// output of the stage that produced it; later stages never mutate it.
type RunState struct {
	RunID     string
	StartedAt time.Time

	Raw      []entity.Item
	Outcomes []entity.FetchOutcome
	Filtered []entity.Item
	Deduped  []entity.Item
	Enriched []score.ScoredItem
	Admitted []score.ScoredItem

	Formatted string
	Delivered bool
}

// Controller sequences one ingestion run over its collaborators.
type Controller struct {
	orchestrator *fetch.Orchestrator
	sources      []*fetch.ResilientSource
	engine       *dedup.Engine
	enhancer     Enhancer
	enricher     Enricher
	deliverer    Deliverer
	circuits     repository.CircuitStateRepository

	cfg    Config
	logger *slog.Logger
}

// NewController wires the pipeline. enhancer and circuits may be nil;
// without a circuit store, breaker state resets at process start.
func NewController(
	orchestrator *fetch.Orchestrator,
	sources []*fetch.ResilientSource,
	engine *dedup.Engine,
	enhancer Enhancer,
	enricher Enricher,
	deliverer Deliverer,
	circuits repository.CircuitStateRepository,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		orchestrator: orchestrator,
		sources:      sources,
		engine:       engine,
		enhancer:     enhancer,
		enricher:     enricher,
		deliverer:    deliverer,
		circuits:     circuits,
		cfg:          cfg,
		logger:       logger,
	}
}

// RestoreCircuitState seeds the source breakers from the persisted
// snapshots. Called once at process start, before the first run.
func (c *Controller) RestoreCircuitState(ctx context.Context) error {
	if c.circuits == nil {
		return nil
	}
	snapshots, err := c.circuits.Load(ctx)
	if err != nil {
		return fmt.Errorf("load circuit state: %w", err)
	}
	for _, src := range c.sources {
		if snap, ok := snapshots[src.Name()]; ok {
			src.Breaker().Restore(snap)
			c.logger.Info("circuit state restored",
				slog.String("source", src.Name()),
				slog.String("state", string(snap.State)))
		}
	}
	return nil
}

// Run executes one full pipeline pass. The returned RunState is always
// populated as far as the run progressed, including on error, so a
// failed delivery still leaves the formatted brief inspectable.
func (c *Controller) Run(ctx context.Context) (*RunState, error) {
	state := &RunState{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
	logger := logging.WithRunID(c.logger, state.RunID)
	logger.Info("pipeline run started")

	err := c.run(ctx, state, logger)

	status := "ok"
	if err != nil {
		status = "failed"
	}
	metrics.RecordRun(status, time.Since(state.StartedAt))
	logger.Info("pipeline run finished",
		slog.String("status", status),
		slog.Int("fetched", len(state.Raw)),
		slog.Int("admitted", len(state.Admitted)),
		slog.Bool("delivered", state.Delivered),
		slog.Duration("duration", time.Since(state.StartedAt)))

	return state, err
}

func (c *Controller) run(ctx context.Context, state *RunState, logger *slog.Logger) error {
	now := state.StartedAt

	// Fetch. Fail-open: per-source failures live in the outcomes.
	state.Raw, state.Outcomes = c.orchestrator.FetchAll(ctx)
	c.persistCircuitState(ctx, logger)

	// Filter.
	state.Filtered = filter.Apply(state.Raw, c.cfg.Filter, now)

	// Dedup: intra-batch, then historical. A history store failure is
	// fatal; continuing would leak duplicates across runs.
	batchDeduped := c.engine.DedupBatch(state.Filtered)
	deduped, err := c.engine.DedupHistorical(ctx, batchDeduped, now)
	if err != nil {
		return err
	}
	state.Deduped = deduped

	// Enrich, with optional content enhancement first. Item-level
	// failures surface as fallback scores inside the results.
	toEnrich := state.Deduped
	if c.enhancer != nil {
		toEnrich = c.enhancer.Enhance(ctx, toEnrich)
	}
	state.Enriched = c.enricher.EnrichAll(ctx, toEnrich)

	// Admit, order, cap.
	admitted := score.Admit(state.Enriched, c.cfg.Admission)
	admitted = score.Order(admitted)
	state.Admitted = score.ApplyCaps(admitted, c.cfg.PerSourceCap, c.cfg.TotalCap)

	// Format, and keep a local copy before attempting delivery.
	state.Formatted = format.Markdown(format.Brief{
		Date:     now,
		Items:    state.Admitted,
		Outcomes: state.Outcomes,
	})
	if err := c.saveReport(state, logger); err != nil {
		logger.Warn("report save failed", slog.Any("error", err))
	}

	// Deliver. Failure is terminal but the formatted output remains in
	// the state and on disk.
	if err := c.deliverer.Deliver(ctx, state.Formatted); err != nil {
		return err
	}
	state.Delivered = true

	// End-of-run bookkeeping.
	if err := c.engine.PruneExpired(ctx, now); err != nil {
		return err
	}
	return nil
}

// persistCircuitState snapshots every breaker after the fetch stage.
// Best effort: a failed save is logged, not fatal, since breakers also
// rebuild from live traffic.
func (c *Controller) persistCircuitState(ctx context.Context, logger *slog.Logger) {
	if c.circuits == nil {
		return
	}
	for _, src := range c.sources {
		snap := src.Breaker().Snapshot()
		if err := c.circuits.Save(ctx, snap); err != nil {
			logger.Warn("circuit state save failed",
				slog.String("source", src.Name()),
				slog.Any("error", err))
		}
	}
}

// saveReport writes the formatted brief to ReportDir as YYYY-MM-DD.md.
func (c *Controller) saveReport(state *RunState, logger *slog.Logger) error {
	if c.cfg.ReportDir == "" {
		return nil
	}
	if err := os.MkdirAll(c.cfg.ReportDir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(c.cfg.ReportDir, state.StartedAt.Format("2006-01-02")+".md")
	if err := os.WriteFile(path, []byte(state.Formatted), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logger.Info("report saved", slog.String("path", path))
	return nil
}
