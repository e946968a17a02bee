// Package enrich provides AI-powered item enrichment implementations.
// It includes adapters for Claude (Anthropic) and OpenAI APIs with
// reliability patterns, plus a no-op backend for running without API
// keys. Every backend implements the same Enricher contract and is
// selected at configuration load time.
package enrich

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"newsbrief/internal/domain/entity"
	"newsbrief/internal/observability/metrics"
	"newsbrief/internal/usecase/score"
)

// enrichParallelism bounds concurrent enrichment API calls (rate-limited).
const enrichParallelism = 5

// Enricher produces a summary and quality scores for one item.
// Failure is per-item and non-fatal to the run.
type Enricher interface {
	Enrich(ctx context.Context, item entity.Item) (entity.Enrichment, error)
}

// Service runs an Enricher over a batch with bounded parallelism.
type Service struct {
	enricher Enricher
	logger   *slog.Logger
}

// NewService creates a batch enrichment service.
func NewService(enricher Enricher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{enricher: enricher, logger: logger}
}

// EnrichAll enriches every item, preserving input order. A failed item
// carries its error and fallback scores instead of aborting the batch.
func (s *Service) EnrichAll(ctx context.Context, items []entity.Item) []score.ScoredItem {
	results := make([]score.ScoredItem, len(items))

	var mu sync.Mutex
	failures := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichParallelism)

	for i, item := range items {
		g.Go(func() error {
			start := time.Now()
			enrichment, err := s.enricher.Enrich(gctx, item)
			metrics.RecordEnrichment(err == nil, time.Since(start))

			if err != nil {
				enrichErr := &entity.EnrichmentError{ItemID: item.ID, Err: err}
				s.logger.Warn("item enrichment failed, using fallback scores",
					slog.String("item_id", item.ID),
					slog.String("source", item.SourceName),
					slog.Any("error", err))
				results[i] = score.ScoredItem{
					Item:       item,
					Enrichment: entity.FallbackEnrichment(),
					EnrichErr:  enrichErr,
				}
				mu.Lock()
				failures++
				mu.Unlock()
				return nil
			}

			results[i] = score.ScoredItem{Item: item, Enrichment: enrichment}
			return nil
		})
	}
	// Goroutines never return errors; per-item failures live in results.
	_ = g.Wait()

	s.logger.Info("batch enrichment completed",
		slog.Int("items", len(items)),
		slog.Int("failures", failures))

	return results
}

// clampScore bounds a model-reported score to the 0-10 range.
func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
