// Package filter implements the time and quality filter applied to the
// merged fetch output before deduplication.
package filter

import (
	"log/slog"
	"strings"
	"time"

	"newsbrief/internal/domain/entity"
	"newsbrief/internal/observability/metrics"
)

// Config holds the filter thresholds.
type Config struct {
	// RecencyWindow drops items published before now - window.
	RecencyWindow time.Duration

	// MinContentLength drops items whose body is shorter, in bytes.
	MinContentLength int

	// Keywords, when non-empty, keeps only items whose title or body
	// contains at least one keyword (case-insensitive).
	Keywords []string
}

// DefaultConfig returns the production filter thresholds.
func DefaultConfig() Config {
	return Config{
		RecencyWindow:    48 * time.Hour,
		MinContentLength: 80,
	}
}

// Apply is a pure function over the merged item list. It drops items
// older than the recency window, items with an undetermined publish
// time, and items with too little content. Input order is preserved and
// the input slice is never mutated.
func Apply(items []entity.Item, cfg Config, now time.Time) []entity.Item {
	cutoff := now.Add(-cfg.RecencyWindow)
	keywords := lowerAll(cfg.Keywords)

	kept := make([]entity.Item, 0, len(items))
	stale, undated, short, offTopic := 0, 0, 0, 0

	for _, item := range items {
		switch {
		case item.PublishedAt.IsZero():
			undated++
		case item.PublishedAt.Before(cutoff):
			stale++
		case item.ContentLength() < cfg.MinContentLength:
			short++
		case !matchesKeywords(item, keywords):
			offTopic++
		default:
			kept = append(kept, item)
		}
	}

	metrics.RecordItemsDropped("filter", "undated", undated)
	metrics.RecordItemsDropped("filter", "stale", stale)
	metrics.RecordItemsDropped("filter", "too_short", short)
	metrics.RecordItemsDropped("filter", "off_topic", offTopic)

	if dropped := len(items) - len(kept); dropped > 0 {
		slog.Debug("quality filter applied",
			slog.Int("input", len(items)),
			slog.Int("kept", len(kept)),
			slog.Int("stale", stale),
			slog.Int("undated", undated),
			slog.Int("too_short", short),
			slog.Int("off_topic", offTopic))
	}
	return kept
}

func lowerAll(ss []string) []string {
	if len(ss) == 0 {
		return nil
	}
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}

func matchesKeywords(item entity.Item, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	haystack := strings.ToLower(item.Title + " " + item.Body)
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
