// Package repository defines persistence interfaces consumed by the pipeline.
// Concrete implementations live under internal/infra/persistence.
package repository

import (
	"context"
	"time"

	"newsbrief/internal/domain/entity"
)

// HistoryRepository is the persisted fingerprint store backing historical
// deduplication (Stage B). It must survive process restarts. Record-level
// reads and writes are atomic; concurrent pipeline runs against the same
// store are out of scope.
type HistoryRepository interface {
	// Lookup returns the non-expired record matching either fingerprint,
	// or nil when no live record exists. Expired records are ignored.
	Lookup(ctx context.Context, contentFP, urlFP string) (*entity.HistoryRecord, error)

	// Insert stores a new record. Inserting an already-present fingerprint
	// refreshes its expiry.
	Insert(ctx context.Context, rec *entity.HistoryRecord) error

	// PruneExpired deletes records whose expiry is at or before now and
	// returns the number removed.
	PruneExpired(ctx context.Context, now time.Time) (int64, error)
}

// CircuitStateRepository persists per-source circuit breaker snapshots
// across runs. A nil repository means breakers reset to closed at start.
type CircuitStateRepository interface {
	// Load returns all persisted snapshots keyed by source name.
	Load(ctx context.Context) (map[string]entity.CircuitState, error)

	// Save upserts one snapshot. Access is serialized by the single
	// pipeline run assumption.
	Save(ctx context.Context, state entity.CircuitState) error
}
