package entity

// Enrichment carries the externally supplied scores and summary for one
// item. Scores range 0-10.
type Enrichment struct {
	Summary    string
	Importance int
	Relevance  int
}

// FallbackEnrichment is the conservative default assigned when enrichment
// fails for an item. Scores of zero keep low-confidence content below any
// sane admission threshold.
func FallbackEnrichment() Enrichment {
	return Enrichment{Importance: 0, Relevance: 0}
}
