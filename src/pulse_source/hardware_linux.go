//go:build linux

package pulsesource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GonzalezFJR/geiger/src/logger"
	"github.com/GonzalezFJR/geiger/src/models"

	"github.com/warthog618/go-gpiocdev"
)

// debounceWindow suppresses spurious re-triggers from tube ringing.
const debounceWindow = time.Millisecond

// -----------------------------------------------------------------------------
// HardwareSource reads detector pulses from a GPIO line via the character
// device. The kernel delivers edge events to handleEvent on its own thread.
// -----------------------------------------------------------------------------

type HardwareSource struct {
	cfg    models.MSourceConfig
	Logger *logger.Logger

	mu      sync.Mutex
	cb      func(time.Time)
	line    *gpiocdev.Line
	started bool
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

// Start claims the line and enables edge detection. On failure the line is
// left unclaimed and the caller may fall back to the synthetic source.
func (s *HardwareSource) Start(ctx context.Context, wg *sync.WaitGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("source %s is already running", s.Name())
	}
	if s.cb == nil {
		return fmt.Errorf("source %s has no callback registered", s.Name())
	}

	// Active polarity follows the pull configuration: with a pull-down the
	// pulse drives the line high (rising edge); with a pull-up the
	// open-collector output pulls it low (falling edge).
	opts := []gpiocdev.LineReqOption{
		gpiocdev.WithConsumer("geiger"),
		gpiocdev.WithDebounce(debounceWindow),
		gpiocdev.WithEventHandler(s.handleEvent),
	}
	if s.cfg.PullUp {
		opts = append(opts, gpiocdev.WithPullUp, gpiocdev.WithFallingEdge)
	} else {
		opts = append(opts, gpiocdev.WithPullDown, gpiocdev.WithRisingEdge)
	}

	line, err := gpiocdev.RequestLine(s.cfg.Chip, s.cfg.Pin, opts...)
	if err != nil {
		return fmt.Errorf("failed to request edge events on %s line %d: %w", s.cfg.Chip, s.cfg.Pin, err)
	}

	s.line = line
	s.started = true

	// Release the hardware claim when the lifecycle context ends.
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		s.Stop()
	}()

	s.Logger.Info("Edge detection enabled on %s line %d (pull_up=%v)", s.cfg.Chip, s.cfg.Pin, s.cfg.PullUp)
	return nil
}

// -----------------------------------------------------------------------------

// Stop releases the line. Idempotent.
func (s *HardwareSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false

	if s.line != nil {
		if err := s.line.Close(); err != nil {
			s.Logger.Error("Failed to release %s line %d: %v", s.cfg.Chip, s.cfg.Pin, err)
		}
		s.line = nil
	}

	s.Logger.Info("Released %s line %d", s.cfg.Chip, s.cfg.Pin)
	return nil
}

// -----------------------------------------------------------------------------

// handleEvent runs on the gpiocdev event goroutine for every qualifying edge.
func (s *HardwareSource) handleEvent(evt gpiocdev.LineEvent) {
	s.mu.Lock()
	cb := s.cb
	s.mu.Unlock()

	if cb != nil {
		cb(time.Now())
	}
}
