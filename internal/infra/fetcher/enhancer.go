package fetcher

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"newsbrief/internal/domain/entity"
)

// ContentFetcher extracts full article text from a URL. Callers fall
// back to the original item body on error.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// Enhancer replaces teaser-length item bodies with the full article text
// before enrichment. Sources that only publish summaries produce much
// better scores with the real content.
type Enhancer struct {
	fetcher     ContentFetcher
	threshold   int
	parallelism int
	logger      *slog.Logger
}

// NewEnhancer creates an Enhancer. Items with a body at or above
// threshold bytes are left untouched.
func NewEnhancer(fetcher ContentFetcher, threshold, parallelism int, logger *slog.Logger) *Enhancer {
	if threshold <= 0 {
		threshold = 600
	}
	if parallelism <= 0 {
		parallelism = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enhancer{fetcher: fetcher, threshold: threshold, parallelism: parallelism, logger: logger}
}

// Enhance returns a new slice with short bodies replaced by extracted
// article text. A failed extraction keeps the original body; order is
// preserved and the input is never mutated.
func (e *Enhancer) Enhance(ctx context.Context, items []entity.Item) []entity.Item {
	out := make([]entity.Item, len(items))
	copy(out, items)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)

	var enhanced atomic.Int64
	for i := range out {
		if out[i].ContentLength() >= e.threshold || out[i].URL == "" {
			continue
		}
		g.Go(func() error {
			text, err := e.fetcher.FetchContent(gctx, out[i].URL)
			if err != nil {
				e.logger.Debug("content enhancement skipped",
					slog.String("item_id", out[i].ID),
					slog.Any("error", err))
				return nil
			}
			if len(text) > out[i].ContentLength() {
				out[i].Body = text
				enhanced.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	if n := enhanced.Load(); n > 0 {
		e.logger.Info("item content enhanced",
			slog.Int("items", len(items)),
			slog.Int64("enhanced", n))
	}
	return out
}
