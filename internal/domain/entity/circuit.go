package entity

import "time"

// BreakerState is the state of a per-source circuit breaker.
type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half_open"
)

// CircuitState is the persisted snapshot of one source's circuit breaker.
// If no backing store is configured the breaker resets to closed at
// process start.
type CircuitState struct {
	SourceName          string
	State               BreakerState
	ConsecutiveFailures int
	OpenedAt            time.Time // zero unless State is open or half_open
}
