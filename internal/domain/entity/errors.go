package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline-level failures.
var (
	// ErrHistoryStore indicates a failure in the persisted dedup history.
	// Dedup correctness depends on the store, so this is fatal to the run.
	ErrHistoryStore = errors.New("history store failure")

	// ErrDelivery indicates the final brief could not be delivered.
	// The run is reported as failed but the formatted output is retained.
	ErrDelivery = errors.New("delivery failure")
)

// SourceErrorKind classifies source-level fetch errors for retry and
// reporting decisions.
type SourceErrorKind string

const (
	// ErrorKindTransient covers timeouts, 5xx responses, and connection
	// failures. Retryable with backoff.
	ErrorKindTransient SourceErrorKind = "transient"

	// ErrorKindPermanent covers auth failures, malformed responses, and
	// non-rate-limit 4xx. Never retried.
	ErrorKindPermanent SourceErrorKind = "permanent"

	// ErrorKindQuota covers rate-limit/quota exhaustion. Transient, but
	// retrying within the run is pointless; the source is skipped.
	ErrorKindQuota SourceErrorKind = "quota"

	// ErrorKindCircuitOpen marks calls short-circuited by an open breaker.
	ErrorKindCircuitOpen SourceErrorKind = "circuit_open"

	// ErrorKindTimeout marks calls cancelled by the per-source or global
	// fetch deadline.
	ErrorKindTimeout SourceErrorKind = "timeout"
)

// SourceError is a typed error produced by a source adapter or by the
// resilience wrapper around it. It never escapes the fetch stage; the
// orchestrator surfaces it only as a FetchOutcome entry.
type SourceError struct {
	Source string
	Kind   SourceErrorKind
	Err    error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %s: %v", e.Source, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *SourceError) Unwrap() error { return e.Err }

// NewSourceError wraps err with a source name and classification.
func NewSourceError(source string, kind SourceErrorKind, err error) *SourceError {
	return &SourceError{Source: source, Kind: kind, Err: err}
}

// Retryable reports whether the error class is worth retrying within
// the current run. Quota errors are transient but skip-until-reset.
func (e *SourceError) Retryable() bool {
	return e.Kind == ErrorKindTransient
}

// EnrichmentError is a per-item, non-fatal enrichment failure. Items
// carrying one receive exclusion-biased fallback scores instead of
// aborting the run.
type EnrichmentError struct {
	ItemID string
	Err    error
}

// Error implements the error interface.
func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("enrich item %s: %v", e.ItemID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *EnrichmentError) Unwrap() error { return e.Err }
