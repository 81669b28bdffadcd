package pulsesource

import (
	"context"
	"sync"
	"time"

	"github.com/GonzalezFJR/geiger/src/interfaces"
	"github.com/GonzalezFJR/geiger/src/logger"
	"github.com/GonzalezFJR/geiger/src/models"
)

// -----------------------------------------------------------------------------
// Startup policy: hardware acquisition failure must never be fatal. When the
// line cannot be claimed the service keeps running on the synthetic source.
// -----------------------------------------------------------------------------

// Start constructs the configured source, registers cb and starts it.
// With mock set the synthetic source is used directly; otherwise the
// hardware reader is tried first and, on any acquisition error, replaced by
// the synthetic source with a warning.
func Start(ctx context.Context, wg *sync.WaitGroup, cfg models.MSourceConfig, log *logger.Logger, cb func(ts time.Time)) (interfaces.IPulseSource, error) {
	if !cfg.Mock {
		hw := NewHardwareSource(cfg, log)
		hw.SetCallback(cb)
		err := hw.Start(ctx, wg)
		if err == nil {
			return hw, nil
		}
		log.Warning("Hardware source unavailable, falling back to synthetic: %v", err)
	}

	syn := NewSyntheticSource(cfg, log)
	syn.SetCallback(cb)
	if err := syn.Start(ctx, wg); err != nil {
		return nil, err
	}
	return syn, nil
}
