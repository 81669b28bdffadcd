package server

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/GonzalezFJR/geiger/src/counter"
	"github.com/GonzalezFJR/geiger/src/helpers"
	"github.com/GonzalezFJR/geiger/src/interfaces"
	"github.com/GonzalezFJR/geiger/src/logger"
	"github.com/GonzalezFJR/geiger/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// FastAPIServer (the endpoints port the original FastAPI app one to one)
// -----------------------------------------------------------------------------

type FastAPIServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine

	agg *counter.Aggregator
	db  interfaces.IDatabase

	// WebSocket clients; owned by the hub goroutine
	clients    map[*Client]struct{}
	broadcast  chan interface{} // Buffered Queue
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}

	running    atomic.Bool
	subCount   atomic.Int64
	startedAt  time.Time
	sourceName atomic.Value // string; written by main, read by handler goroutines
	errors     *helpers.ErrorHandler
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewFastAPIServer(cfg *models.MConfig, log *logger.Logger, agg *counter.Aggregator, db interfaces.IDatabase) *FastAPIServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &FastAPIServer{
		Config:  cfg,
		Logger:  log,
		engine:  gin.Default(),
		agg:     agg,
		db:      db,
		clients: make(map[*Client]struct{}),
		// Buffered channel so producer threads never block on a burst
		broadcast:  make(chan interface{}, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		startedAt:  time.Now(),
		errors:     helpers.NewErrorHandler(log),
	}

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------

// SetSourceName records which pulse source ended up running, for /api/config.
// Safe to call while handlers are already serving.
func (s *FastAPIServer) SetSourceName(name string) {
	s.sourceName.Store(name)
}

// -----------------------------------------------------------------------------
// Route Setup (Matches Python endpoints exactly)
// -----------------------------------------------------------------------------

func (s *FastAPIServer) setupRoutes() {
	s.engine.StaticFile("/", "./static/index.html")

	// REST API endpoints
	s.engine.GET("/api/snapshot", s.getSnapshot)
	s.engine.POST("/api/reset", s.postReset)
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/config", s.getConfig)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *FastAPIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()
	s.running.Store(true)

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) Stop() error {
	if !s.running.Load() {
		return nil
	}
	s.running.Store(false)
	close(s.quit)
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers (Matches Python behavior exactly)
// -----------------------------------------------------------------------------

func (s *FastAPIServer) getSnapshot(c *gin.Context) {
	c.JSON(200, s.agg.Snapshot())
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) postReset(c *gin.Context) {
	summary := s.agg.Reset()

	s.errors.Handle(s.db.SaveSessionSummary(summary), "session summary persistence")

	s.Broadcast(models.NewResetAckMessage())
	s.Logger.Info("Counter reset (previous session: %d pulses)", summary.Total)

	c.JSON(200, gin.H{"ok": true})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getHealth(c *gin.Context) {
	snap := s.agg.Snapshot()

	c.JSON(200, gin.H{
		"status":            "ok",
		"connections":       s.SubscriberCount(),
		"uptime_seconds":    time.Since(s.startedAt).Seconds(),
		"total":             snap.Total,
		"process_memory_mb": helpers.GetProcessMemoryMB(),
		"system_memory_mb":  helpers.GetTotalSystemMemoryMB(),
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getConfig(c *gin.Context) {
	sourceName := ""
	if v := s.sourceName.Load(); v != nil {
		sourceName = v.(string)
	}
	c.JSON(200, gin.H{
		"source":     sourceName,
		"pin":        s.Config.Source.Pin,
		"pull_up":    s.Config.Source.PullUp,
		"mock_rate":  s.Config.Source.MockRate,
		"max_deltas": s.Config.Counter.MaxDeltas,
		"max_series": s.Config.Counter.MaxSeries,
	})
}

// -----------------------------------------------------------------------------

// SubscriberCount returns the number of registered WebSocket clients.
func (s *FastAPIServer) SubscriberCount() int {
	return int(s.subCount.Load())
}
