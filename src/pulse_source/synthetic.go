package pulsesource

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GonzalezFJR/geiger/src/logger"
	"github.com/GonzalezFJR/geiger/src/models"
)

// minRate guards against a zero or negative configured rate.
const minRate = 0.0001

// -----------------------------------------------------------------------------
// SyntheticSource simulates a Poisson arrival process: it repeatedly samples
// an exponential inter-arrival interval from the configured rate, waits that
// long on its own goroutine, then fires the callback.
// -----------------------------------------------------------------------------

type SyntheticSource struct {
	cfg        models.MSourceConfig
	Logger     *logger.Logger
	cb         func(time.Time)
	cancelFunc context.CancelFunc
	isRunning  atomic.Bool
	mu         sync.Mutex
}

// -----------------------------------------------------------------------------

func NewSyntheticSource(cfg models.MSourceConfig, log *logger.Logger) *SyntheticSource {
	return &SyntheticSource{
		cfg:    cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (s *SyntheticSource) Name() string {
	return "synthetic"
}

// -----------------------------------------------------------------------------

func (s *SyntheticSource) IsHardware() bool {
	return false
}

// -----------------------------------------------------------------------------

func (s *SyntheticSource) SetCallback(cb func(ts time.Time)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cb = cb
}

// -----------------------------------------------------------------------------

// Start launches the generator goroutine.
func (s *SyntheticSource) Start(ctx context.Context, wg *sync.WaitGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning.Load() {
		return fmt.Errorf("source %s is already running", s.Name())
	}
	if s.cb == nil {
		return fmt.Errorf("source %s has no callback registered", s.Name())
	}

	// Derive a context so we can stop just this source via Stop()
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelFunc = cancel
	s.isRunning.Store(true)

	wg.Add(1)
	go s.runLoop(runCtx, wg)

	s.Logger.Info("Started synthetic source at ~%.2f pulses/s", s.cfg.MockRate)
	return nil
}

// -----------------------------------------------------------------------------

// Stop signals the generator to exit. Idempotent.
func (s *SyntheticSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning.Load() {
		return nil
	}
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning.Store(false)
	s.Logger.Info("Stopped synthetic source")
	return nil
}

// -----------------------------------------------------------------------------

func (s *SyntheticSource) runLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	lam := s.cfg.MockRate
	if lam < minRate {
		lam = minRate
	}

	for {
		wait := time.Duration(rand.ExpFloat64() / lam * float64(time.Second))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.cb(time.Now())
		}
	}
}
