package storage

import (
	"github.com/GonzalezFJR/geiger/src/models"
)

// -----------------------------------------------------------------------------

// NoopDB satisfies the database interface when db_type is "none". Counting
// works entirely in memory without it.
type NoopDB struct{}

// -----------------------------------------------------------------------------

func NewNoopDB() (*NoopDB, error) {
	return &NoopDB{}, nil
}

func (d *NoopDB) Initialize() error { return nil }

func (d *NoopDB) SaveBin(bin models.MBinCount) error { return nil }

func (d *NoopDB) SaveSessionSummary(summary models.MSessionSummary) error { return nil }

func (d *NoopDB) CleanupOldData() error { return nil }

func (d *NoopDB) Close() error { return nil }
