package pulsesource

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GonzalezFJR/geiger/src/logger"
	"github.com/GonzalezFJR/geiger/src/models"
)

func testLogger() *logger.Logger {
	return logger.NewLogger("CRITICAL", "test")
}

// -----------------------------------------------------------------------------

func TestSyntheticSourceEmitsPulses(t *testing.T) {
	cfg := models.MSourceConfig{Mock: true, MockRate: 500}
	src := NewSyntheticSource(cfg, testLogger())

	var count atomic.Int64
	src.SetCallback(func(ts time.Time) { count.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup

	if err := src.Start(ctx, &wg); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// At 500 cps the first pulse arrives almost immediately; the generous
	// deadline keeps slow CI machines from flaking
	deadline := time.Now().Add(2 * time.Second)
	for count.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if count.Load() == 0 {
		t.Fatal("synthetic source produced no pulses")
	}

	if err := src.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	wg.Wait()

	// No more pulses after stop
	settled := count.Load()
	time.Sleep(50 * time.Millisecond)
	if count.Load() != settled {
		t.Errorf("pulses after stop: %d vs %d", count.Load(), settled)
	}
}

func TestSyntheticSourceRequiresCallback(t *testing.T) {
	src := NewSyntheticSource(models.MSourceConfig{MockRate: 1}, testLogger())

	var wg sync.WaitGroup
	if err := src.Start(context.Background(), &wg); err == nil {
		t.Error("expected an error when starting without a callback")
	}
}

func TestSyntheticSourceDoubleStart(t *testing.T) {
	src := NewSyntheticSource(models.MSourceConfig{MockRate: 1}, testLogger())
	src.SetCallback(func(time.Time) {})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup

	if err := src.Start(ctx, &wg); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := src.Start(ctx, &wg); err == nil {
		t.Error("expected an error on second start")
	}

	src.Stop()
	wg.Wait()
}

func TestStopIsIdempotent(t *testing.T) {
	src := NewSyntheticSource(models.MSourceConfig{MockRate: 1}, testLogger())

	if err := src.Stop(); err != nil {
		t.Errorf("stop of an idle source should be a no-op, got %v", err)
	}

	src.SetCallback(func(time.Time) {})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	src.Start(ctx, &wg)

	if err := src.Stop(); err != nil {
		t.Errorf("first stop failed: %v", err)
	}
	if err := src.Stop(); err != nil {
		t.Errorf("second stop failed: %v", err)
	}
	wg.Wait()
}

// -----------------------------------------------------------------------------

func TestStartFallsBackToSynthetic(t *testing.T) {
	// A chip that cannot exist forces the hardware path to fail
	cfg := models.MSourceConfig{Chip: "gpiochip-does-not-exist", Pin: 18, MockRate: 100}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup

	var count atomic.Int64
	src, err := Start(ctx, &wg, cfg, testLogger(), func(time.Time) { count.Add(1) })
	if err != nil {
		t.Fatalf("expected a fallback source, got error: %v", err)
	}
	defer func() {
		src.Stop()
		wg.Wait()
	}()

	if src.IsHardware() {
		t.Error("expected the synthetic fallback, got a hardware source")
	}
	if src.Name() != "synthetic" {
		t.Errorf("expected source 'synthetic', got %q", src.Name())
	}

	// The fallback keeps producing pulses
	deadline := time.Now().Add(2 * time.Second)
	for count.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if count.Load() == 0 {
		t.Error("fallback source produced no pulses")
	}
}

func TestStartUsesSyntheticWhenMocked(t *testing.T) {
	cfg := models.MSourceConfig{Mock: true, MockRate: 100}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup

	src, err := Start(ctx, &wg, cfg, testLogger(), func(time.Time) {})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer func() {
		src.Stop()
		wg.Wait()
	}()

	if src.IsHardware() {
		t.Error("mock mode must never touch the hardware")
	}
}
