package models

// -----------------------------------------------------------------------------
// Persisted rows (counting sessions and their closed one-second bins)
// -----------------------------------------------------------------------------

// MBinCount is one closed one-second bin.
type MBinCount struct {
	SessionID string `json:"session_id"`
	Timestamp int64  `json:"timestamp"` // unix seconds at bin close
	Count     int    `json:"count"`
}

// MSessionSummary is written when a session ends (reset or shutdown).
type MSessionSummary struct {
	ID        string  `json:"id"`
	StartedAt int64   `json:"started_at"` // unix seconds
	EndedAt   int64   `json:"ended_at"`
	Total     uint64  `json:"total"`
	RateBq    float64 `json:"rate_bq"`
	RateErr   float64 `json:"rate_err"`
}
