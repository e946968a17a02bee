// Package postgres provides PostgreSQL implementations of the pipeline's
// persistence interfaces, for deployments where the history store is shared
// infrastructure rather than a local file.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"newsbrief/internal/domain/entity"
	"newsbrief/internal/repository"
)

// HistoryRepo implements the HistoryRepository interface using PostgreSQL.
type HistoryRepo struct{ db *sql.DB }

// NewHistoryRepo creates a new PostgreSQL-backed history repository.
func NewHistoryRepo(db *sql.DB) repository.HistoryRepository {
	return &HistoryRepo{db: db}
}

// Lookup returns the newest non-expired record matching either fingerprint.
func (repo *HistoryRepo) Lookup(ctx context.Context, contentFP, urlFP string) (*entity.HistoryRecord, error) {
	const query = `
SELECT content_fingerprint, url_fingerprint, first_seen_at, expires_at
FROM history_records
WHERE (content_fingerprint = $1 OR url_fingerprint = $2)
AND expires_at > $3
ORDER BY first_seen_at DESC
LIMIT 1
`
	var rec entity.HistoryRecord
	err := repo.db.QueryRowContext(ctx, query, contentFP, urlFP, time.Now().UTC()).Scan(
		&rec.ContentFingerprint, &rec.URLFingerprint, &rec.FirstSeenAt, &rec.ExpiresAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("Lookup: QueryRowContext: %w", err)
	}
	return &rec, nil
}

// Insert stores a record, refreshing expiry when the fingerprint already exists.
func (repo *HistoryRepo) Insert(ctx context.Context, rec *entity.HistoryRecord) error {
	const query = `
INSERT INTO history_records (content_fingerprint, url_fingerprint, first_seen_at, expires_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (content_fingerprint) DO UPDATE SET
    url_fingerprint = EXCLUDED.url_fingerprint,
    expires_at      = EXCLUDED.expires_at
`
	_, err := repo.db.ExecContext(ctx, query,
		rec.ContentFingerprint, rec.URLFingerprint, rec.FirstSeenAt, rec.ExpiresAt)
	if err != nil {
		return fmt.Errorf("Insert: ExecContext: %w", err)
	}
	return nil
}

// PruneExpired removes records whose retention window has passed.
func (repo *HistoryRepo) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM history_records WHERE expires_at <= $1`

	res, err := repo.db.ExecContext(ctx, query, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("PruneExpired: ExecContext: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("PruneExpired: RowsAffected: %w", err)
	}
	return affected, nil
}
