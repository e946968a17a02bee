package db

import "database/sql"

// MigrateUp creates the history and circuit state tables if missing.
// The DDL is kept to the dialect subset both SQLite and PostgreSQL accept.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS history_records (
    content_fingerprint TEXT PRIMARY KEY,
    url_fingerprint     TEXT NOT NULL,
    first_seen_at       TIMESTAMP NOT NULL,
    expires_at          TIMESTAMP NOT NULL
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS circuit_states (
    source_name          TEXT PRIMARY KEY,
    state                TEXT NOT NULL,
    consecutive_failures INTEGER NOT NULL DEFAULT 0,
    opened_at            TIMESTAMP
)`); err != nil {
		return err
	}

	indexes := []string{
		// Stage B lookup probes both fingerprints
		`CREATE INDEX IF NOT EXISTS idx_history_url_fp ON history_records(url_fingerprint)`,
		// Prune scans by expiry
		`CREATE INDEX IF NOT EXISTS idx_history_expires_at ON history_records(expires_at)`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
