package counter

import (
	"context"
	"time"

	"github.com/GonzalezFJR/geiger/src/helpers"
	"github.com/GonzalezFJR/geiger/src/interfaces"
	"github.com/GonzalezFJR/geiger/src/logger"
	"github.com/GonzalezFJR/geiger/src/models"
)

// -----------------------------------------------------------------------------
// Ticker closes the open one-second bin at a fixed cadence and pushes a fresh
// snapshot to the broadcaster. Best-effort periodic scheduling; missed ticks
// are not backfilled.
// -----------------------------------------------------------------------------

type Ticker struct {
	Agg         *Aggregator
	Broadcaster interfaces.IBroadcaster
	DB          interfaces.IDatabase
	Logger      *logger.Logger
	Errors      *helpers.ErrorHandler
	Interval    time.Duration
}

// -----------------------------------------------------------------------------

func NewTicker(agg *Aggregator, b interfaces.IBroadcaster, db interfaces.IDatabase, log *logger.Logger) *Ticker {
	return &Ticker{
		Agg:         agg,
		Broadcaster: b,
		DB:          db,
		Logger:      log,
		Errors:      helpers.NewErrorHandler(log),
		Interval:    time.Second,
	}
}

// -----------------------------------------------------------------------------

// Run blocks until ctx is cancelled. Call from a dedicated goroutine.
func (t *Ticker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	t.Logger.Debug("Bin ticker running (interval %v)", t.Interval)

	for {
		select {
		case <-ctx.Done():
			t.Logger.Debug("Bin ticker stopped")
			return
		case <-ticker.C:
			t.tick()
		}
	}
}

// -----------------------------------------------------------------------------

func (t *Ticker) tick() {
	closed, sessionID := t.Agg.TickSecond()

	// Persistence is best-effort; a failed write never stops the loop.
	bin := models.MBinCount{
		SessionID: sessionID,
		Timestamp: time.Now().Unix(),
		Count:     closed,
	}
	t.Errors.Handle(t.DB.SaveBin(bin), "bin persistence")

	t.Broadcaster.Broadcast(models.NewSnapshotMessage(t.Agg.Snapshot()))
}
