// Package fetch implements concurrent multi-source fetch orchestration.
// Each source adapter is wrapped with bounded retry and a per-source
// circuit breaker so that one bad origin cannot degrade the others, and
// the orchestrator runs all wrapped sources under a global deadline.
package fetch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"newsbrief/internal/domain/entity"
	"newsbrief/internal/observability/metrics"
	"newsbrief/internal/resilience/circuitbreaker"
	"newsbrief/internal/resilience/retry"
)

// Source is the capability consumed from a source adapter. Fetch must be
// idempotent and side-effect-free beyond network I/O.
type Source interface {
	Fetch(ctx context.Context) ([]entity.Item, error)
	Name() string
	Kind() entity.SourceKind
	Priority() int
}

// Result pairs the items a source produced with its recorded outcome.
type Result struct {
	Items   []entity.Item
	Outcome entity.FetchOutcome
}

// ResilientSource wraps one Source with retry and a circuit breaker.
// It never panics outward and never returns an error: every failure mode
// is contained and surfaces only through the FetchOutcome.
type ResilientSource struct {
	source   Source
	breaker  *circuitbreaker.SourceBreaker
	retryCfg retry.Config
	logger   *slog.Logger
}

// NewResilientSource wraps source with the given breaker and retry policy.
func NewResilientSource(source Source, breaker *circuitbreaker.SourceBreaker, retryCfg retry.Config, logger *slog.Logger) *ResilientSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResilientSource{
		source:   source,
		breaker:  breaker,
		retryCfg: retryCfg,
		logger:   logger,
	}
}

// Name returns the wrapped source's name.
func (r *ResilientSource) Name() string { return r.source.Name() }

// Breaker exposes the wrapped breaker for state persistence.
func (r *ResilientSource) Breaker() *circuitbreaker.SourceBreaker { return r.breaker }

// Fetch issues the single logical call for this source within a run.
//
// An open breaker short-circuits without invoking the adapter. Otherwise
// the adapter runs under the retry policy; only transient errors are
// retried, quota and permanent errors fail immediately. The breaker sees
// one success or failure per logical call regardless of retry attempts.
func (r *ResilientSource) Fetch(ctx context.Context) Result {
	name := r.source.Name()
	start := time.Now()

	if !r.breaker.Allow() {
		r.logger.Warn("source skipped, circuit open",
			slog.String("source", name))
		metrics.RecordSourceFetch(name, string(entity.FetchFailed), time.Since(start), 0)
		metrics.RecordSourceFetchError(name, string(entity.ErrorKindCircuitOpen))
		return Result{Outcome: entity.FetchOutcome{
			SourceName: name,
			Status:     entity.FetchFailed,
			ErrorKind:  string(entity.ErrorKindCircuitOpen),
		}}
	}
	stateBefore := r.breaker.State()

	var (
		items    []entity.Item
		attempts int
	)
	err := retry.WithBackoff(ctx, r.retryCfg, isTransient, func() error {
		attempts++
		var fetchErr error
		items, fetchErr = r.fetchSafe(ctx)
		return fetchErr
	})

	duration := time.Since(start)
	outcome := entity.FetchOutcome{
		SourceName: name,
		ItemsCount: len(items),
		Attempts:   attempts,
	}

	switch {
	case err == nil:
		r.breaker.RecordSuccess()
		outcome.Status = entity.FetchOK
		r.logger.Info("source fetch completed",
			slog.String("source", name),
			slog.Int("items", len(items)),
			slog.Int("attempts", attempts),
			slog.Duration("duration", duration))

	case len(items) > 0:
		// Some origins return what they collected alongside the error.
		// The source responded, so the breaker counts it as a success.
		r.breaker.RecordSuccess()
		outcome.Status = entity.FetchPartial
		outcome.ErrorKind = string(classify(err))
		r.logger.Warn("source fetch partially failed",
			slog.String("source", name),
			slog.Int("items", len(items)),
			slog.Int("attempts", attempts),
			slog.Any("error", err))

	default:
		r.breaker.RecordFailure()
		kind := classify(err)
		outcome.Status = entity.FetchFailed
		outcome.ErrorKind = string(kind)
		metrics.RecordSourceFetchError(name, string(kind))
		r.logger.Warn("source fetch failed",
			slog.String("source", name),
			slog.String("error_kind", string(kind)),
			slog.Int("attempts", attempts),
			slog.Any("error", err))
	}

	if after := r.breaker.State(); after != stateBefore {
		metrics.RecordCircuitTransition(name, string(after))
	}
	metrics.RecordSourceFetch(name, string(outcome.Status), duration, len(items))

	return Result{Items: items, Outcome: outcome}
}

// fetchSafe invokes the adapter and converts a panic into an error so a
// misbehaving adapter cannot crash the orchestrator.
func (r *ResilientSource) fetchSafe(ctx context.Context) (items []entity.Item, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = entity.NewSourceError(r.source.Name(), entity.ErrorKindPermanent,
				errorFromPanic(rec))
		}
	}()
	return r.source.Fetch(ctx)
}

func errorFromPanic(rec any) error {
	if e, ok := rec.(error); ok {
		return e
	}
	return errors.New("adapter panic")
}

// isTransient is the retry classifier: only transient source errors are
// retried within a run. Quota errors skip until the quota window resets
// and permanent errors never retry.
func isTransient(err error) bool {
	var srcErr *entity.SourceError
	if errors.As(err, &srcErr) {
		return srcErr.Retryable()
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	return retry.IsRetryable(err)
}

// classify maps an adapter error to its SourceErrorKind for reporting.
func classify(err error) entity.SourceErrorKind {
	var srcErr *entity.SourceError
	if errors.As(err, &srcErr) {
		return srcErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return entity.ErrorKindTimeout
	}

	var httpErr *retry.HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == http.StatusTooManyRequests:
			return entity.ErrorKindQuota
		case httpErr.StatusCode >= 500, httpErr.StatusCode == http.StatusRequestTimeout:
			return entity.ErrorKindTransient
		default:
			return entity.ErrorKindPermanent
		}
	}

	if retry.IsRetryable(err) {
		return entity.ErrorKindTransient
	}
	return entity.ErrorKindPermanent
}
