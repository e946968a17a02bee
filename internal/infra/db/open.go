// Package db opens and migrates the backing store for dedup history and
// circuit breaker state. SQLite is the default for single-host deployments;
// PostgreSQL is selected via HISTORY_DB_DRIVER for shared stores.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Driver identifies the configured backing store.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// DriverFromEnv reads HISTORY_DB_DRIVER, defaulting to sqlite.
func DriverFromEnv() Driver {
	switch os.Getenv("HISTORY_DB_DRIVER") {
	case "postgres":
		return DriverPostgres
	default:
		return DriverSQLite
	}
}

// Open creates a database connection for the given driver.
// SQLite uses HISTORY_DB_PATH (default newsbrief.db); PostgreSQL uses
// DATABASE_URL. The connection is verified with a short ping.
func Open(driver Driver) (*sql.DB, error) {
	var (
		database *sql.DB
		err      error
	)

	switch driver {
	case DriverPostgres:
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_URL not set")
		}
		database, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		database.SetMaxOpenConns(10)
		database.SetMaxIdleConns(5)
		database.SetConnMaxLifetime(1 * time.Hour)

	default:
		path := os.Getenv("HISTORY_DB_PATH")
		if path == "" {
			path = "newsbrief.db"
		}
		database, err = sql.Open("sqlite", path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// Serialized writes; the run is the only writer anyway.
		database.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.PingContext(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("history store connection established",
		slog.String("driver", string(driver)))
	return database, nil
}
