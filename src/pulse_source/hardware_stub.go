//go:build !linux

package pulsesource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GonzalezFJR/geiger/src/logger"
	"github.com/GonzalezFJR/geiger/src/models"
)

// -----------------------------------------------------------------------------
// HardwareSource stub for platforms without the GPIO character device.
// Start always fails, which routes startup through the synthetic fallback.
// -----------------------------------------------------------------------------

type HardwareSource struct {
	cfg    models.MSourceConfig
	Logger *logger.Logger

	mu sync.Mutex
	cb func(time.Time)
}

// -----------------------------------------------------------------------------

func NewHardwareSource(cfg models.MSourceConfig, log *logger.Logger) *HardwareSource {
	return &HardwareSource{
		cfg:    cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (s *HardwareSource) Name() string {
	return fmt.Sprintf("gpio-%s-%d", s.cfg.Chip, s.cfg.Pin)
}

// -----------------------------------------------------------------------------

func (s *HardwareSource) IsHardware() bool {
	return true
}

// -----------------------------------------------------------------------------

func (s *HardwareSource) SetCallback(cb func(ts time.Time)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cb = cb
}

// -----------------------------------------------------------------------------

func (s *HardwareSource) Start(ctx context.Context, wg *sync.WaitGroup) error {
	return fmt.Errorf("GPIO character device is only available on linux")
}

// -----------------------------------------------------------------------------

func (s *HardwareSource) Stop() error {
	return nil
}
