// Package score implements dual-threshold admission and final ordering
// of enriched items.
package score

import (
	"log/slog"
	"sort"

	"newsbrief/internal/domain/entity"
	"newsbrief/internal/observability/metrics"
)

// ScoredItem pairs an item with its enrichment result. EnrichErr is set
// when enrichment failed for this item; such items carry fallback scores.
type ScoredItem struct {
	Item       entity.Item
	Enrichment entity.Enrichment
	EnrichErr  error
}

// Config holds the per-dimension admission thresholds. Admission requires
// every dimension to meet its minimum independently.
type Config struct {
	// MinImportance is the minimum importance score (0-10).
	MinImportance int

	// MinRelevance is the minimum topical relevance score (0-10).
	MinRelevance int

	// MinDeclaredPriority is the minimum source-declared priority (0-10).
	MinDeclaredPriority int
}

// DefaultConfig returns the production admission thresholds.
func DefaultConfig() Config {
	return Config{
		MinImportance:       6,
		MinRelevance:        5,
		MinDeclaredPriority: 0,
	}
}

// Admit returns the items meeting every configured threshold, in input
// order. The comparison is a logical AND across dimensions: raising any
// single threshold above an item's score excludes it regardless of the
// others. Items whose enrichment failed are scored with the
// exclusion-biased fallback first.
func Admit(items []ScoredItem, cfg Config) []ScoredItem {
	admitted := make([]ScoredItem, 0, len(items))
	belowThreshold, enrichFailed := 0, 0

	for _, si := range items {
		if si.EnrichErr != nil {
			si.Enrichment = entity.FallbackEnrichment()
			enrichFailed++
		}

		if si.Enrichment.Importance < cfg.MinImportance ||
			si.Enrichment.Relevance < cfg.MinRelevance ||
			si.Item.DeclaredPriority < cfg.MinDeclaredPriority {
			belowThreshold++
			continue
		}
		admitted = append(admitted, si)
	}

	metrics.RecordItemsDropped("admission", "below_threshold", belowThreshold)
	metrics.RecordItemsAdmitted(len(admitted))

	slog.Info("admission completed",
		slog.Int("input", len(items)),
		slog.Int("admitted", len(admitted)),
		slog.Int("below_threshold", belowThreshold),
		slog.Int("enrichment_fallbacks", enrichFailed))

	return admitted
}

// Order sorts admitted items for presentation: importance first, then
// relevance, then declared priority, newest publish time last as the
// tie-break. The sort is stable so equal items keep admission order.
func Order(items []ScoredItem) []ScoredItem {
	out := make([]ScoredItem, len(items))
	copy(out, items)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Enrichment.Importance != b.Enrichment.Importance {
			return a.Enrichment.Importance > b.Enrichment.Importance
		}
		if a.Enrichment.Relevance != b.Enrichment.Relevance {
			return a.Enrichment.Relevance > b.Enrichment.Relevance
		}
		if a.Item.DeclaredPriority != b.Item.DeclaredPriority {
			return a.Item.DeclaredPriority > b.Item.DeclaredPriority
		}
		return a.Item.PublishedAt.After(b.Item.PublishedAt)
	})
	return out
}

// ApplyCaps limits the ordered item list to at most perSource items from
// any one source and total items overall. Zero disables a cap. Order is
// preserved, so caps keep the highest-ranked items.
func ApplyCaps(items []ScoredItem, perSource, total int) []ScoredItem {
	if perSource <= 0 && total <= 0 {
		return items
	}

	perSourceCount := map[string]int{}
	out := make([]ScoredItem, 0, len(items))
	capped := 0

	for _, si := range items {
		if total > 0 && len(out) >= total {
			capped++
			continue
		}
		if perSource > 0 && perSourceCount[si.Item.SourceName] >= perSource {
			capped++
			continue
		}
		perSourceCount[si.Item.SourceName]++
		out = append(out, si)
	}

	metrics.RecordItemsDropped("cap", "over_cap", capped)
	return out
}
