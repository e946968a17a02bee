package sqlite

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"newsbrief/internal/domain/entity"
)

func TestHistoryRepo_Lookup_Found(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = db.Close() }()

	firstSeen := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	expires := firstSeen.Add(30 * 24 * time.Hour)

	rows := sqlmock.NewRows([]string{"content_fingerprint", "url_fingerprint", "first_seen_at", "expires_at"}).
		AddRow("abc123", "url456", firstSeen, expires)
	mock.ExpectQuery("SELECT content_fingerprint, url_fingerprint").
		WithArgs("abc123", "url456", sqlmock.AnyArg()).
		WillReturnRows(rows)

	repo := NewHistoryRepo(db)
	rec, err := repo.Lookup(context.Background(), "abc123", "url456")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec == nil {
		t.Fatal("expected record, got nil")
	}
	if rec.ContentFingerprint != "abc123" {
		t.Errorf("unexpected content fingerprint %q", rec.ContentFingerprint)
	}
	if !rec.ExpiresAt.Equal(expires) {
		t.Errorf("unexpected expiry %v", rec.ExpiresAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestHistoryRepo_Lookup_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT content_fingerprint, url_fingerprint").
		WithArgs("missing", "missing", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"content_fingerprint", "url_fingerprint", "first_seen_at", "expires_at"}))

	repo := NewHistoryRepo(db)
	rec, err := repo.Lookup(context.Background(), "missing", "missing")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record, got %+v", rec)
	}
}

func TestHistoryRepo_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = db.Close() }()

	now := time.Now().UTC()
	rec := &entity.HistoryRecord{
		ContentFingerprint: "abc123",
		URLFingerprint:     "url456",
		FirstSeenAt:        now,
		ExpiresAt:          now.Add(30 * 24 * time.Hour),
	}

	mock.ExpectExec("INSERT INTO history_records").
		WithArgs(rec.ContentFingerprint, rec.URLFingerprint, rec.FirstSeenAt, rec.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewHistoryRepo(db)
	if err := repo.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestHistoryRepo_PruneExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec("DELETE FROM history_records").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 7))

	repo := NewHistoryRepo(db)
	n, err := repo.PruneExpired(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("PruneExpired: %v", err)
	}
	if n != 7 {
		t.Errorf("expected 7 pruned, got %d", n)
	}
}

func TestCircuitRepo_LoadAndSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = db.Close() }()

	openedAt := time.Date(2026, 8, 29, 6, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"source_name", "state", "consecutive_failures", "opened_at"}).
		AddRow("hackernews", "open", 4, openedAt).
		AddRow("rss", "closed", 0, nil)
	mock.ExpectQuery("SELECT source_name, state").WillReturnRows(rows)

	repo := NewCircuitRepo(db)
	states, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("expected 2 states, got %d", len(states))
	}
	hn := states["hackernews"]
	if hn.State != entity.BreakerOpen || hn.ConsecutiveFailures != 4 {
		t.Errorf("unexpected hackernews state %+v", hn)
	}
	if !states["rss"].OpenedAt.IsZero() {
		t.Errorf("closed breaker should have zero opened_at")
	}

	mock.ExpectExec("INSERT INTO circuit_states").
		WithArgs("hackernews", "closed", 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Save(context.Background(), entity.CircuitState{
		SourceName: "hackernews",
		State:      entity.BreakerClosed,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
