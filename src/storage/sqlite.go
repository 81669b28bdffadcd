package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/GonzalezFJR/geiger/src/logger"
	"github.com/GonzalezFJR/geiger/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*SQLiteDB, error) {
	return &SQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) createTables() error {
	// Tables are kept across restarts, session history is the point of
	// persisting at all.
	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string
	query := `
		CREATE TABLE IF NOT EXISTS pulse_bins (
			session_id TEXT,
			timestamp INTEGER,
			count INTEGER,
			PRIMARY KEY (session_id, timestamp)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create pulse_bins: %w", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at INTEGER,
			ended_at INTEGER,
			total INTEGER,
			rate_bq REAL,
			rate_err REAL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create sessions: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) SaveBin(bin models.MBinCount) error {
	_, err := d.DB.Exec(`
		INSERT INTO pulse_bins (session_id, timestamp, count)
		VALUES (?, ?, ?)
		ON CONFLICT (session_id, timestamp) DO UPDATE SET count = excluded.count
	`, bin.SessionID, bin.Timestamp, bin.Count)
	return err
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) SaveSessionSummary(summary models.MSessionSummary) error {
	_, err := d.DB.Exec(`
		INSERT INTO sessions (id, started_at, ended_at, total, rate_bq, rate_err)
		VALUES (?, ?, ?, ?, ?, ?)
	`, summary.ID, summary.StartedAt, summary.EndedAt, summary.Total, summary.RateBq, summary.RateErr)
	return err
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	d.Logger.Info("Cleaning up data older than %d days (timestamp < %d)...", retentionDays, cutoff)

	if _, err := d.DB.Exec("DELETE FROM pulse_bins WHERE timestamp < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup pulse_bins error: %v", err)
	}
	if _, err := d.DB.Exec("DELETE FROM sessions WHERE ended_at < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup sessions error: %v", err)
	}

	d.Logger.Info("Cleanup completed")
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
