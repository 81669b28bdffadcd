package models

// -----------------------------------------------------------------------------
// MSnapshot is an immutable computed view of the counter state.
// Field names match the original wire format exactly.
// -----------------------------------------------------------------------------

type MSnapshot struct {
	Total       uint64    `json:"total"`
	Elapsed     float64   `json:"elapsed"`      // seconds since session start, >= 0
	LastAge     *float64  `json:"last_age"`     // seconds since last pulse, null before the first one
	PerSecond   []int     `json:"per_second"`   // closed one-second bins only
	RunningMean []float64 `json:"running_mean"` // prefix average of PerSecond, same length
	RateBq      float64   `json:"rate_bq"`      // total/elapsed
	RateErr     float64   `json:"rate_err"`     // sqrt(total)/elapsed (Poisson counting error)
	Deltas      []float64 `json:"deltas"`       // inter-pulse intervals in seconds
}
