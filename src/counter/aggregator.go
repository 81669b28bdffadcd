package counter

import (
	"math"
	"sync"
	"time"

	"github.com/GonzalezFJR/geiger/src/models"
	"github.com/GonzalezFJR/geiger/src/utils"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Aggregator is the thread-safe pulse counter. All state is guarded by one
// mutex; critical sections are short and perform no I/O. OnPulse may be
// called concurrently from any number of producer goroutines.
// -----------------------------------------------------------------------------

type Aggregator struct {
	mu  sync.Mutex
	now func() time.Time // injectable clock

	sessionID  string
	t0         time.Time
	total      uint64
	lastTS     time.Time
	hasLast    bool
	deltas     *utils.Ring[float64] // inter-pulse intervals, seconds
	perSecond  *utils.Ring[int]     // closed one-second bins
	currentBin int                  // count accumulating in the open bin
}

// -----------------------------------------------------------------------------

// NewAggregator creates an Aggregator with the configured buffer capacities.
func NewAggregator(cfg models.MCounterConfig) *Aggregator {
	a := &Aggregator{
		now:       time.Now,
		deltas:    utils.NewRing[float64](cfg.MaxDeltas),
		perSecond: utils.NewRing[int](cfg.MaxSeries),
	}
	a.resetLocked()
	return a
}

// -----------------------------------------------------------------------------

// OnPulse folds one detection event into the state.
// A pulse whose timestamp precedes the last one is still counted and still
// overwrites lastTS, but contributes no delta (matches the Python counter).
func (a *Aggregator) OnPulse(ts time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	if a.hasLast && !ts.Before(a.lastTS) {
		a.deltas.Append(ts.Sub(a.lastTS).Seconds())
	}
	a.lastTS = ts
	a.hasLast = true
	a.currentBin++
}

// -----------------------------------------------------------------------------

// TickSecond closes the current one-second bin and returns its count along
// with the id of the session it belongs to, read under the same lock so a
// concurrent reset can never mislabel the bin. Called once per second by the
// Ticker.
func (a *Aggregator) TickSecond() (int, string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	closed := a.currentBin
	a.perSecond.Append(closed)
	a.currentBin = 0
	return closed, a.sessionID
}

// -----------------------------------------------------------------------------

// Reset atomically reinitializes all state and returns a summary of the
// session that just ended. No caller can observe a partially-reset state.
func (a *Aggregator) Reset() models.MSessionSummary {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	summary := models.MSessionSummary{
		ID:        a.sessionID,
		StartedAt: a.t0.Unix(),
		EndedAt:   now.Unix(),
		Total:     a.total,
	}
	elapsed := now.Sub(a.t0).Seconds()
	if elapsed > 0 {
		summary.RateBq = float64(a.total) / elapsed
		if a.total > 0 {
			summary.RateErr = math.Sqrt(float64(a.total)) / elapsed
		}
	}

	a.resetLocked()
	return summary
}

// -----------------------------------------------------------------------------

// resetLocked starts a fresh session. Caller holds the lock (or owns the
// aggregator exclusively, as in NewAggregator).
func (a *Aggregator) resetLocked() {
	a.sessionID = uuid.NewString()
	a.t0 = a.now()
	a.total = 0
	a.lastTS = time.Time{}
	a.hasLast = false
	a.deltas.Clear()
	a.perSecond.Clear()
	a.currentBin = 0
}

// -----------------------------------------------------------------------------

// Snapshot produces an immutable derived view. Side-effect free; the open
// bin is never included in PerSecond.
func (a *Aggregator) Snapshot() models.MSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	elapsed := now.Sub(a.t0).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	var rate, rateErr float64
	if elapsed > 0 {
		rate = float64(a.total) / elapsed
		if a.total > 0 {
			rateErr = math.Sqrt(float64(a.total)) / elapsed
		}
	}

	series := a.perSecond.Values()
	runningMean := make([]float64, len(series))
	sum := 0
	for i, c := range series {
		sum += c
		runningMean[i] = float64(sum) / float64(i+1)
	}

	var lastAge *float64
	if a.hasLast {
		age := now.Sub(a.lastTS).Seconds()
		lastAge = &age
	}

	return models.MSnapshot{
		Total:       a.total,
		Elapsed:     elapsed,
		LastAge:     lastAge,
		PerSecond:   series,
		RunningMean: runningMean,
		RateBq:      rate,
		RateErr:     rateErr,
		Deltas:      a.deltas.Values(),
	}
}

// -----------------------------------------------------------------------------

// SessionID returns the identifier of the current counting session.
func (a *Aggregator) SessionID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessionID
}

// -----------------------------------------------------------------------------

// SetClock replaces the time source. Test helper; call before use.
func (a *Aggregator) SetClock(now func() time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.now = now
	a.t0 = now()
}
