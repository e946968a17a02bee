// Package sqlite provides SQLite implementations of the pipeline's
// persistence interfaces. The history and circuit state tables back
// cross-run deduplication and breaker recovery.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"newsbrief/internal/domain/entity"
	"newsbrief/internal/repository"
)

// HistoryRepo implements the HistoryRepository interface using SQLite.
type HistoryRepo struct{ db *sql.DB }

// NewHistoryRepo creates a new SQLite-backed history repository.
func NewHistoryRepo(db *sql.DB) repository.HistoryRepository {
	return &HistoryRepo{db: db}
}

// Lookup returns the newest non-expired record matching either fingerprint.
func (repo *HistoryRepo) Lookup(ctx context.Context, contentFP, urlFP string) (*entity.HistoryRecord, error) {
	const query = `
SELECT content_fingerprint, url_fingerprint, first_seen_at, expires_at
FROM history_records
WHERE (content_fingerprint = ? OR url_fingerprint = ?)
AND expires_at > ?
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
VALUES (?, ?, ?, ?)
ON CONFLICT(content_fingerprint) DO UPDATE SET
    url_fingerprint = excluded.url_fingerprint,
    expires_at      = excluded.expires_at
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
	const query = `DELETE FROM history_records WHERE expires_at <= ?`

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
