package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsbrief/internal/domain/entity"
	"newsbrief/internal/observability/metrics"
	"newsbrief/internal/repository"
	"newsbrief/internal/resilience/retry"
)

// Config holds the tunable dedup parameters.
type Config struct {
	// SimilarityThreshold is the normalized-title similarity above which
	// two items are treated as the same story. Defaults to 0.8.
	SimilarityThreshold float64

	// Retention is how long an admitted item's fingerprints block
	// resurfacing duplicates. Defaults to 7 days.
	Retention time.Duration
}

// DefaultConfig returns the production dedup parameters.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.8,
		Retention:           7 * 24 * time.Hour,
	}
}

// Engine removes duplicates in two stages. Stage A is pure and operates
// on one batch; Stage B consults and updates the persisted history store.
type Engine struct {
	history repository.HistoryRepository
	cfg     Config
	logger  *slog.Logger
}

// NewEngine creates an Engine backed by the given history store.
func NewEngine(history repository.HistoryRepository, cfg Config, logger *slog.Logger) *Engine {
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultConfig().SimilarityThreshold
	}
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultConfig().Retention
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{history: history, cfg: cfg, logger: logger}
}

// DedupBatch removes intra-batch duplicates, first-admitted-wins.
//
// Two items are duplicates when their normalized URLs match exactly or
// their normalized-title similarity exceeds the threshold. On a match
// the item with higher declared priority survives, then the one with the
// earlier publish time; the already-kept item wins remaining ties.
// The function is deterministic and idempotent: re-applying it to its
// own output removes nothing further.
func (e *Engine) DedupBatch(items []entity.Item) []entity.Item {
	type keyed struct {
		item    entity.Item
		normURL string
		title   string
	}

	kept := make([]keyed, 0, len(items))
	urlDrops, titleDrops := 0, 0

	for _, item := range items {
		cand := keyed{
			item:    item,
			normURL: NormalizeURL(item.URL),
			title:   NormalizeTitle(item.Title),
		}

		dupIdx := -1
		for i := range kept {
			if kept[i].normURL != "" && kept[i].normURL == cand.normURL {
				dupIdx = i
				urlDrops++
				break
			}
			if Similarity(kept[i].title, cand.title) > e.cfg.SimilarityThreshold {
				dupIdx = i
				titleDrops++
				break
			}
		}

		if dupIdx == -1 {
			kept = append(kept, cand)
			continue
		}
		if !wins(cand.item, kept[dupIdx].item) {
			continue
		}

		// Similarity is not transitive. The winner was only compared
		// against kept items up to the incumbent, so later kept items may
		// duplicate the winner without having matched the incumbent.
		// Collapse the whole cluster, keeping its single best entry at
		// the incumbent's position.
		winner := cand
		rest := append([]keyed(nil), kept[dupIdx+1:]...)
		kept = kept[:dupIdx+1]
		for _, other := range rest {
			switch {
			case other.normURL != "" && other.normURL == winner.normURL:
				urlDrops++
			case Similarity(other.title, winner.title) > e.cfg.SimilarityThreshold:
				titleDrops++
			default:
				kept = append(kept, other)
				continue
			}
			if wins(other.item, winner.item) {
				winner = other
			}
		}
		kept[dupIdx] = winner
	}

	metrics.RecordItemsDropped("dedup_batch", "url_match", urlDrops)
	metrics.RecordItemsDropped("dedup_batch", "similar_title", titleDrops)

	result := make([]entity.Item, len(kept))
	for i, k := range kept {
		result[i] = k.item
	}

	if dropped := len(items) - len(result); dropped > 0 {
		e.logger.Info("intra-batch dedup completed",
			slog.Int("input", len(items)),
			slog.Int("kept", len(result)),
			slog.Int("dropped", dropped))
	}
	return result
}

// wins reports whether challenger replaces incumbent under the duplicate
// tie-break: higher declared priority first, then earlier publish time.
func wins(challenger, incumbent entity.Item) bool {
	if challenger.DeclaredPriority != incumbent.DeclaredPriority {
		return challenger.DeclaredPriority > incumbent.DeclaredPriority
	}
	return challenger.PublishedAt.Before(incumbent.PublishedAt)
}

// DedupHistorical drops items whose content or URL fingerprint matches a
// non-expired history record, and records the fingerprints of admitted
// items with expiry = now + retention. A store failure is fatal to the
// run; dedup correctness depends on it.
func (e *Engine) DedupHistorical(ctx context.Context, items []entity.Item, now time.Time) ([]entity.Item, error) {
	admitted := make([]entity.Item, 0, len(items))
	dropped := 0

	for _, item := range items {
		contentFP := ContentFingerprint(item.Title, item.SourceName)
		urlFP := URLFingerprint(item.URL)

		var rec *entity.HistoryRecord
		err := retry.WithBackoff(ctx, retry.StoreConfig(), nil, func() error {
			var lookupErr error
			rec, lookupErr = e.history.Lookup(ctx, contentFP, urlFP)
			return lookupErr
		})
		if err != nil {
			return nil, fmt.Errorf("%w: lookup: %v", entity.ErrHistoryStore, err)
		}

		if rec != nil && !rec.Expired(now) {
			dropped++
			continue
		}

		newRec := &entity.HistoryRecord{
			ContentFingerprint: contentFP,
			URLFingerprint:     urlFP,
			FirstSeenAt:        now,
			ExpiresAt:          now.Add(e.cfg.Retention),
		}
		err = retry.WithBackoff(ctx, retry.StoreConfig(), nil, func() error {
			return e.history.Insert(ctx, newRec)
		})
		if err != nil {
			return nil, fmt.Errorf("%w: insert: %v", entity.ErrHistoryStore, err)
		}
		admitted = append(admitted, item)
	}

	metrics.RecordItemsDropped("dedup_history", "seen", dropped)
	if dropped > 0 {
		e.logger.Info("historical dedup completed",
			slog.Int("input", len(items)),
			slog.Int("kept", len(admitted)),
			slog.Int("dropped", dropped))
	}
	return admitted, nil
}

// PruneExpired removes history records past their retention window.
// Called at the end of a successful run.
func (e *Engine) PruneExpired(ctx context.Context, now time.Time) error {
	var pruned int64
	err := retry.WithBackoff(ctx, retry.StoreConfig(), nil, func() error {
		var pruneErr error
		pruned, pruneErr = e.history.PruneExpired(ctx, now)
		return pruneErr
	})
	if err != nil {
		return fmt.Errorf("%w: prune: %v", entity.ErrHistoryStore, err)
	}

	metrics.RecordHistoryPruned(pruned)
	if pruned > 0 {
		e.logger.Info("expired history records pruned", slog.Int64("count", pruned))
	}
	return nil
}
