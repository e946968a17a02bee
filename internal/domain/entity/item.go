// Package entity defines the core domain entities for the ingestion pipeline.
// It contains the canonical Item produced by source adapters, the per-source
// fetch outcome, and the records persisted across runs for deduplication and
// circuit breaker state.
package entity

import "time"

// SourceKind identifies the kind of external origin an Item came from.
type SourceKind string

const (
	// SourceKindFeed is a pull-based RSS/Atom feed.
	SourceKindFeed SourceKind = "feed"

	// SourceKindAPI is a plain REST API origin.
	SourceKindAPI SourceKind = "api"

	// SourceKindScrape is a scraped web frontend.
	SourceKindScrape SourceKind = "scrape"

	// SourceKindQuotaAPI is a quota-limited API origin (e.g. GitHub).
	SourceKindQuotaAPI SourceKind = "quota_api"
)

// Item is the canonical content unit produced by a source adapter.
// Every adapter tags items with its source name, kind, and declared priority.
type Item struct {
	ID               string
	SourceName       string
	SourceKind       SourceKind
	Title            string
	Body             string
	URL              string
	PublishedAt      time.Time
	FetchedAt        time.Time
	DeclaredPriority int // 0-10
}

// ContentLength returns the length of the item body in bytes.
func (i *Item) ContentLength() int {
	return len(i.Body)
}

// FetchStatus describes the terminal status of one source fetch.
type FetchStatus string

const (
	FetchOK      FetchStatus = "ok"
	FetchPartial FetchStatus = "partial"
	FetchFailed  FetchStatus = "failed"
)

// FetchOutcome records the result of the single logical fetch call issued
// to one source during a pipeline run.
type FetchOutcome struct {
	SourceName string
	Status     FetchStatus
	ItemsCount int
	ErrorKind  string // empty on success
	Attempts   int
}

// HistoryRecord is the persisted trace of an admitted item, used to drop
// the same story when it resurfaces in a later run. Records expire after
// the configured retention window and are pruned on expiry.
type HistoryRecord struct {
	ContentFingerprint string
	URLFingerprint     string
	FirstSeenAt        time.Time
	ExpiresAt          time.Time
}

// Expired reports whether the record's retention window has passed at t.
func (r *HistoryRecord) Expired(t time.Time) bool {
	return !r.ExpiresAt.After(t)
}
