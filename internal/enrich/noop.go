package enrich

import (
	"context"

	"newsbrief/internal/domain/entity"
)

// NoOp is an enricher that derives scores locally without any API call.
// This is useful for testing and development when no API key is configured.
type NoOp struct{}

// NewNoOp creates a new NoOp enricher.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Enrich returns a truncated body as the summary, the source-declared
// priority as importance, and a mid-scale relevance. Items flow through
// admission on their declared priority alone.
func (n *NoOp) Enrich(_ context.Context, item entity.Item) (entity.Enrichment, error) {
	const maxLength = 400
	summary := item.Body
	if len(summary) > maxLength {
		summary = summary[:maxLength] + "..."
	}
	return entity.Enrichment{
		Summary:    summary,
		Importance: clampScore(item.DeclaredPriority),
		Relevance:  5,
	}, nil
}
