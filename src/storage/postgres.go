package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GonzalezFJR/geiger/src/logger"
	"github.com/GonzalezFJR/geiger/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	// Use the executable name as the schema so several counters can share one
	// database without stepping on each other
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresDB{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."pulse_bins" (
			session_id TEXT,
			timestamp BIGINT,
			count INTEGER,
			PRIMARY KEY (session_id, timestamp)
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create pulse_bins: %w", err)
	}

	query = fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."sessions" (
			id TEXT PRIMARY KEY,
			started_at BIGINT,
			ended_at BIGINT,
			total BIGINT,
			rate_bq DOUBLE PRECISION,
			rate_err DOUBLE PRECISION
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create sessions: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveBin(bin models.MBinCount) error {
	query := fmt.Sprintf(`
		INSERT INTO "%s"."pulse_bins" (session_id, timestamp, count)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id, timestamp) DO UPDATE SET count = EXCLUDED.count
	`, d.Schema)
	_, err := d.DB.Exec(query, bin.SessionID, bin.Timestamp, bin.Count)
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveSessionSummary(summary models.MSessionSummary) error {
	query := fmt.Sprintf(`
		INSERT INTO "%s"."sessions" (id, started_at, ended_at, total, rate_bq, rate_err)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, d.Schema)
	_, err := d.DB.Exec(query, summary.ID, summary.StartedAt, summary.EndedAt, summary.Total, summary.RateBq, summary.RateErr)
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	d.Logger.Info("Cleaning up data older than %d days (timestamp < %d)...", retentionDays, cutoff)

	query := fmt.Sprintf(`DELETE FROM "%s"."pulse_bins" WHERE timestamp < $1`, d.Schema)
	if _, err := d.DB.Exec(query, cutoff); err != nil {
		d.Logger.Error("Cleanup pulse_bins error: %v", err)
	}
	query = fmt.Sprintf(`DELETE FROM "%s"."sessions" WHERE ended_at < $1`, d.Schema)
	if _, err := d.DB.Exec(query, cutoff); err != nil {
		d.Logger.Error("Cleanup sessions error: %v", err)
	}

	d.Logger.Info("Cleanup completed")
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
