package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/GonzalezFJR/geiger/src/config"
	"github.com/GonzalezFJR/geiger/src/counter"
	"github.com/GonzalezFJR/geiger/src/logger"
	"github.com/GonzalezFJR/geiger/src/models"
	pulsesource "github.com/GonzalezFJR/geiger/src/pulse_source"
)

// Console harness: runs the counter against the synthetic source without the
// HTTP server and prints a snapshot line once per second.

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	rate := flag.Float64("rate", 0, "override the synthetic rate in counts per second")
	duration := flag.Duration("duration", 0, "stop after this long (0 runs until interrupted)")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	conf.Source.Mock = true
	if *rate > 0 {
		conf.Source.MockRate = *rate
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf.LogLevel, conf.Name)

	// 4. Setup counter
	agg := counter.NewAggregator(conf.Counter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	var wg sync.WaitGroup

	source, err := pulsesource.Start(ctx, &wg, conf.Source, appLogger, func(ts time.Time) {
		agg.OnPulse(ts)
	})
	if err != nil {
		appLogger.Critical("Failed to start pulse source: %v", err)
	}
	appLogger.Info("Source running: %s (%.2f cps expected)", source.Name(), conf.Source.MockRate)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			agg.TickSecond()
			printSnapshot(agg.Snapshot())
		case <-ctx.Done():
			source.Stop()
			wg.Wait()
			return
		case <-quit:
			cancel()
			source.Stop()
			wg.Wait()
			return
		}
	}
}

// -----------------------------------------------------------------------------

func printSnapshot(s models.MSnapshot) {
	lastAge := "-"
	if s.LastAge != nil {
		lastAge = fmt.Sprintf("%.2fs", *s.LastAge)
	}
	fmt.Printf("total=%d elapsed=%.1fs rate=%.3f±%.3f Bq last=%s bins=%d\n",
		s.Total, s.Elapsed, s.RateBq, s.RateErr, lastAge, len(s.PerSecond))
}
