package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"newsbrief/internal/domain/entity"
	"newsbrief/internal/repository"
)

// CircuitRepo implements the CircuitStateRepository interface using PostgreSQL.
type CircuitRepo struct{ db *sql.DB }

// NewCircuitRepo creates a new PostgreSQL-backed circuit state repository.
func NewCircuitRepo(db *sql.DB) repository.CircuitStateRepository {
	return &CircuitRepo{db: db}
}

// Load returns all persisted breaker snapshots keyed by source name.
func (repo *CircuitRepo) Load(ctx context.Context) (map[string]entity.CircuitState, error) {
	const query = `
SELECT source_name, state, consecutive_failures, opened_at
FROM circuit_states
`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("Load: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	states := make(map[string]entity.CircuitState)
	for rows.Next() {
		var s entity.CircuitState
		var state string
		var openedAt sql.NullTime
		if err := rows.Scan(&s.SourceName, &state, &s.ConsecutiveFailures, &openedAt); err != nil {
			return nil, fmt.Errorf("Load: Scan: %w", err)
		}
		s.State = entity.BreakerState(state)
		if openedAt.Valid {
			s.OpenedAt = openedAt.Time
		}
		states[s.SourceName] = s
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Load: rows.Err: %w", err)
	}

	return states, nil
}

// Save upserts one breaker snapshot.
func (repo *CircuitRepo) Save(ctx context.Context, state entity.CircuitState) error {
	const query = `
INSERT INTO circuit_states (source_name, state, consecutive_failures, opened_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (source_name) DO UPDATE SET
    state                = EXCLUDED.state,
    consecutive_failures = EXCLUDED.consecutive_failures,
    opened_at            = EXCLUDED.opened_at
`
	var openedAt sql.NullTime
	if !state.OpenedAt.IsZero() {
		openedAt = sql.NullTime{Time: state.OpenedAt, Valid: true}
	}

	_, err := repo.db.ExecContext(ctx, query,
		state.SourceName, string(state.State), state.ConsecutiveFailures, openedAt)
	if err != nil {
		return fmt.Errorf("Save: ExecContext: %w", err)
	}
	return nil
}
