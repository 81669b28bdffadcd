package interfaces

import "github.com/GonzalezFJR/geiger/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for storage operations.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveBin inserts one closed one-second bin.
	SaveBin(bin models.MBinCount) error

	// -----------------------------------------------------------------------------

	// SaveSessionSummary records a finished counting session.
	SaveSessionSummary(summary models.MSessionSummary) error

	// -----------------------------------------------------------------------------

	// CleanupOldData removes data older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
