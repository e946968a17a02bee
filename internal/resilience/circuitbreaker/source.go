// Package circuitbreaker provides circuit breaker implementations for external calls.
// SourceBreaker is a per-source breaker with consecutive-failure semantics and
// optional state persistence across runs; CircuitBreaker wraps
// github.com/sony/gobreaker for AI enrichment API calls.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"newsbrief/internal/domain/entity"
)

// ErrOpen is returned when a call is short-circuited because the breaker
// is open. The wrapped adapter is not invoked, preserving its time and
// quota budget.
var ErrOpen = errors.New("circuit breaker open")

// SourceConfig holds configuration for a per-source circuit breaker.
type SourceConfig struct {
	// SourceName identifies the protected source in logs and persisted state.
	SourceName string

	// FailureThreshold is the number of consecutive failures required to
	// open the circuit.
	FailureThreshold int

	// Cooldown is how long the circuit stays open before a half-open probe
	// is permitted.
	Cooldown time.Duration

	// Clock provides time abstraction for testing. Defaults to SystemClock.
	Clock Clock
}

// SourceBreaker is a fail-closed circuit breaker guarding one source adapter.
//
// Transitions:
//   - Closed -> Open after FailureThreshold consecutive failures
//   - Open -> HalfOpen once Cooldown has elapsed
//   - HalfOpen -> Closed on the next success, HalfOpen -> Open on failure
//
// While open, Allow reports false and callers must not invoke the adapter.
// In half-open state exactly one probe call is permitted.
//
// State is mutated only by the single logical call path for its source
// within a run; the mutex covers the persisted-state reload path.
type SourceBreaker struct {
	cfg SourceConfig

	mu                  sync.Mutex
	state               entity.BreakerState
	consecutiveFailures int
	openedAt            time.Time
	probeInFlight       bool
}

// NewSourceBreaker creates a breaker in the closed state.
// FailureThreshold defaults to 3 and Cooldown to 30 minutes when unset.
func NewSourceBreaker(cfg SourceConfig) *SourceBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Minute
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	return &SourceBreaker{
		cfg:   cfg,
		state: entity.BreakerClosed,
	}
}

// Restore seeds the breaker from a persisted snapshot. It is called once
// at process start when a circuit state store is configured; without a
// store the breaker stays closed.
func (b *SourceBreaker) Restore(s entity.CircuitState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = s.State
	b.consecutiveFailures = s.ConsecutiveFailures
	b.openedAt = s.OpenedAt
	b.probeInFlight = false
}

// Allow reports whether a call may proceed, transitioning Open -> HalfOpen
// when the cool-down has elapsed. In half-open state only the first caller
// gets the probe slot.
func (b *SourceBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case entity.BreakerClosed:
		return true

	case entity.BreakerOpen:
		if b.cfg.Clock.Now().Sub(b.openedAt) < b.cfg.Cooldown {
			return false
		}
		b.transition(entity.BreakerHalfOpen)
		b.probeInFlight = true
		return true

	case entity.BreakerHalfOpen:
		if b.probeInFlight {
			return false
		}
		b.probeInFlight = true
		return true

	default:
		return true
	}
}

// RecordSuccess records a successful call, closing the circuit from
// half-open and resetting the failure count.
func (b *SourceBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probeInFlight = false
	b.consecutiveFailures = 0
	if b.state != entity.BreakerClosed {
		b.transition(entity.BreakerClosed)
		b.openedAt = time.Time{}
	}
}

// RecordFailure records a failed call. The circuit opens after
// FailureThreshold consecutive failures, and a failed half-open probe
// reopens it immediately.
func (b *SourceBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probeInFlight = false
	b.consecutiveFailures++

	switch b.state {
	case entity.BreakerClosed:
		if b.consecutiveFailures >= b.cfg.FailureThreshold {
			b.transition(entity.BreakerOpen)
			b.openedAt = b.cfg.Clock.Now()
		}
	case entity.BreakerHalfOpen:
		b.transition(entity.BreakerOpen)
		b.openedAt = b.cfg.Clock.Now()
	}
}

// State returns the current breaker state.
func (b *SourceBreaker) State() entity.BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Snapshot returns the persistable view of the breaker.
func (b *SourceBreaker) Snapshot() entity.CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return entity.CircuitState{
		SourceName:          b.cfg.SourceName,
		State:               b.state,
		ConsecutiveFailures: b.consecutiveFailures,
		OpenedAt:            b.openedAt,
	}
}

// transition changes state and emits a structured event. Caller holds the lock.
func (b *SourceBreaker) transition(to entity.BreakerState) {
	from := b.state
	b.state = to
	slog.Warn("source circuit breaker state changed",
		slog.String("source", b.cfg.SourceName),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		slog.Int("consecutive_failures", b.consecutiveFailures),
		slog.Duration("cooldown", b.cfg.Cooldown))
}
