package storage

import (
	"testing"
	"time"

	"github.com/GonzalezFJR/geiger/src/logger"
	"github.com/GonzalezFJR/geiger/src/models"
)

func newTestSQLiteDB(t *testing.T) *SQLiteDB {
	t.Helper()
	cfg := &models.MConfig{
		Storage: models.MStorageConfig{
			DBType:        "sqlite",
			DBPath:        ":memory:",
			RetentionDays: 7,
		},
	}
	db, err := NewSQLiteDB(cfg, logger.NewLogger("CRITICAL", "test"))
	if err != nil {
		t.Fatalf("failed to create db: %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("failed to initialize db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func countRows(t *testing.T, db *SQLiteDB, table string) int {
	t.Helper()
	var n int
	if err := db.DB.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	return n
}

// -----------------------------------------------------------------------------

func TestSaveBin(t *testing.T) {
	db := newTestSQLiteDB(t)

	now := time.Now().Unix()
	bins := []models.MBinCount{
		{SessionID: "s1", Timestamp: now, Count: 3},
		{SessionID: "s1", Timestamp: now + 1, Count: 0},
		{SessionID: "s2", Timestamp: now, Count: 7},
	}
	for _, b := range bins {
		if err := db.SaveBin(b); err != nil {
			t.Fatalf("save bin failed: %v", err)
		}
	}

	if n := countRows(t, db, "pulse_bins"); n != 3 {
		t.Errorf("expected 3 bins, got %d", n)
	}

	// Re-saving the same second overwrites instead of failing
	if err := db.SaveBin(models.MBinCount{SessionID: "s1", Timestamp: now, Count: 9}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	var count int
	if err := db.DB.QueryRow(
		"SELECT count FROM pulse_bins WHERE session_id = ? AND timestamp = ?", "s1", now,
	).Scan(&count); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if count != 9 {
		t.Errorf("expected upserted count 9, got %d", count)
	}
}

func TestSaveSessionSummary(t *testing.T) {
	db := newTestSQLiteDB(t)

	now := time.Now().Unix()
	summary := models.MSessionSummary{
		ID:        "session-1",
		StartedAt: now - 600,
		EndedAt:   now,
		Total:     1234,
		RateBq:    2.056,
		RateErr:   0.058,
	}
	if err := db.SaveSessionSummary(summary); err != nil {
		t.Fatalf("save summary failed: %v", err)
	}

	var total uint64
	var rate float64
	if err := db.DB.QueryRow(
		"SELECT total, rate_bq FROM sessions WHERE id = ?", "session-1",
	).Scan(&total, &rate); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if total != 1234 {
		t.Errorf("expected total 1234, got %d", total)
	}
	if rate != 2.056 {
		t.Errorf("expected rate 2.056, got %f", rate)
	}
}

func TestCleanupOldData(t *testing.T) {
	db := newTestSQLiteDB(t)

	now := time.Now().Unix()
	old := time.Now().AddDate(0, 0, -30).Unix()

	db.SaveBin(models.MBinCount{SessionID: "old", Timestamp: old, Count: 1})
	db.SaveBin(models.MBinCount{SessionID: "new", Timestamp: now, Count: 1})
	db.SaveSessionSummary(models.MSessionSummary{ID: "old", StartedAt: old - 60, EndedAt: old})
	db.SaveSessionSummary(models.MSessionSummary{ID: "new", StartedAt: now - 60, EndedAt: now})

	if err := db.CleanupOldData(); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	if n := countRows(t, db, "pulse_bins"); n != 1 {
		t.Errorf("expected 1 bin after cleanup, got %d", n)
	}
	if n := countRows(t, db, "sessions"); n != 1 {
		t.Errorf("expected 1 session after cleanup, got %d", n)
	}
	var id string
	if err := db.DB.QueryRow("SELECT id FROM sessions").Scan(&id); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if id != "new" {
		t.Errorf("expected the recent session to survive, got %q", id)
	}
}
