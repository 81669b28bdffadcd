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
	"github.com/GonzalezFJR/geiger/src/helpers"
	"github.com/GonzalezFJR/geiger/src/interfaces"
	"github.com/GonzalezFJR/geiger/src/logger"
	"github.com/GonzalezFJR/geiger/src/models"
	pulsesource "github.com/GonzalezFJR/geiger/src/pulse_source"
	"github.com/GonzalezFJR/geiger/src/server"
	"github.com/GonzalezFJR/geiger/src/storage"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	mock := flag.Bool("mock", false, "force the synthetic pulse source")
	port := flag.Int("port", 0, "override the configured HTTP port")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *mock {
		config.Source.Mock = true
	}
	if *port != 0 {
		config.Port = *port
	}

	// Setup logger
	appLogger := logger.NewLogger(config.LogLevel, config.Name)

	// Setup database
	var db interfaces.IDatabase

	switch config.Storage.DBType {
	case "postgres":
		db, err = storage.NewPostgresDB(config.MConfig, appLogger)
	case "sqlite":
		db, err = storage.NewSQLiteDB(config.MConfig, appLogger)
	default:
		db, err = storage.NewNoopDB()
	}

	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}
	errorHandler := helpers.NewErrorHandler(appLogger)
	if _, err := errorHandler.ExecuteWithRetry("database initialization", func() (interface{}, error) {
		return nil, db.Initialize()
	}, 3); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
	}
	defer db.Close()
	if _, err := helpers.RetryWithBackoff("database cleanup", 2, time.Second, func() (interface{}, error) {
		return nil, db.CleanupOldData()
	}); err != nil {
		appLogger.Warning("Startup cleanup failed: %v", err)
	}

	// Setup counter and server
	agg := counter.NewAggregator(config.Counter)
	srv := server.NewFastAPIServer(config.MConfig, appLogger, agg, db)

	// Start Server (FastAPIServer with ported endpoints)
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// Create context for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wrapWg := &sync.WaitGroup{}

	// Every detection goes through the aggregator, then out to the clients
	onPulse := func(ts time.Time) {
		agg.OnPulse(ts)
		srv.Broadcast(models.NewPulseMessage(float64(ts.UnixNano()) / 1e9))
	}

	source, err := pulsesource.Start(ctx, wrapWg, config.Source, appLogger, onPulse)
	if err != nil {
		appLogger.Critical("Failed to start pulse source: %v", err)
		return
	}
	srv.SetSourceName(source.Name())
	appLogger.Info("Pulse source running: %s", source.Name())

	// One-second bin ticker
	ticker := counter.NewTicker(agg, srv, db, appLogger)
	wrapWg.Add(1)
	go func() {
		defer wrapWg.Done()
		ticker.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel() // Signal source and ticker to stop
	source.Stop()
	srv.Stop()
	wrapWg.Wait()

	// Close out the running session so the totals survive the restart
	summary := agg.Reset()
	if err := db.SaveSessionSummary(summary); err != nil {
		appLogger.Error("Failed to save final session summary: %v", err)
	}
}
