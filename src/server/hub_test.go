package server

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GonzalezFJR/geiger/src/counter"
	"github.com/GonzalezFJR/geiger/src/logger"
	"github.com/GonzalezFJR/geiger/src/models"
	"github.com/GonzalezFJR/geiger/src/storage"
)

func newTestServer(t *testing.T) *FastAPIServer {
	t.Helper()
	cfg := &models.MConfig{
		Name:     "test",
		Host:     "127.0.0.1",
		Port:     0,
		LogLevel: "CRITICAL",
		Counter:  models.MCounterConfig{MaxDeltas: 100, MaxSeries: 100},
	}
	agg := counter.NewAggregator(cfg.Counter)
	db, _ := storage.NewNoopDB()
	return NewFastAPIServer(cfg, logger.NewLogger("CRITICAL", "test"), agg, db)
}

// startHub runs the hub loop without binding an HTTP listener.
func startHub(t *testing.T, s *FastAPIServer) {
	t.Helper()
	go s.handleWebsockets()
	s.running.Store(true)
	t.Cleanup(func() { s.Stop() })
}

func recv(t *testing.T, ch chan interface{}) interface{} {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a message")
		return nil
	}
}

func waitFor(t *testing.T, cond func() bool, desc string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

// -----------------------------------------------------------------------------

func TestBroadcastBeforeStartIsNoop(t *testing.T) {
	s := newTestServer(t)

	// Must not panic or queue anything while the hub loop is not running
	s.Broadcast(models.NewResetAckMessage())

	if len(s.broadcast) != 0 {
		t.Errorf("expected empty broadcast queue, got %d queued", len(s.broadcast))
	}
}

func TestRegisterDeliversSnapshot(t *testing.T) {
	s := newTestServer(t)
	startHub(t, s)

	s.agg.OnPulse(time.Now())

	c := &Client{id: "c1", server: s, send: make(chan interface{}, 4)}
	s.register <- c

	msg := recv(t, c.send)
	snap, ok := msg.(models.MSnapshotMessage)
	if !ok {
		t.Fatalf("expected a snapshot message on connect, got %T", msg)
	}
	if snap.Type != models.MsgTypeSnapshot {
		t.Errorf("expected type %q, got %q", models.MsgTypeSnapshot, snap.Type)
	}
	if snap.Total != 1 {
		t.Errorf("expected total 1 in the connect snapshot, got %d", snap.Total)
	}
	waitFor(t, func() bool { return s.SubscriberCount() == 1 }, "subscriber count 1")
}

func TestBroadcastFanOut(t *testing.T) {
	s := newTestServer(t)
	startHub(t, s)

	c1 := &Client{id: "c1", server: s, send: make(chan interface{}, 4)}
	c2 := &Client{id: "c2", server: s, send: make(chan interface{}, 4)}
	s.register <- c1
	s.register <- c2
	recv(t, c1.send) // connect snapshots
	recv(t, c2.send)

	s.Broadcast(models.NewPulseMessage(1234.5))

	for _, c := range []*Client{c1, c2} {
		msg := recv(t, c.send)
		pulse, ok := msg.(models.MPulseMessage)
		if !ok {
			t.Fatalf("client %s: expected a pulse message, got %T", c.id, msg)
		}
		if pulse.TS != 1234.5 {
			t.Errorf("client %s: expected ts 1234.5, got %f", c.id, pulse.TS)
		}
	}
}

func TestSlowClientIsPrunedAfterFullRound(t *testing.T) {
	s := newTestServer(t)
	startHub(t, s)

	healthy1 := &Client{id: "h1", server: s, send: make(chan interface{}, 4)}
	slow := &Client{id: "slow", server: s, send: make(chan interface{})} // no buffer, never drained
	healthy2 := &Client{id: "h2", server: s, send: make(chan interface{}, 4)}

	s.register <- healthy1
	s.register <- slow
	s.register <- healthy2
	recv(t, healthy1.send)
	recv(t, healthy2.send)
	waitFor(t, func() bool { return s.SubscriberCount() == 3 }, "3 subscribers")

	s.Broadcast(models.NewResetAckMessage())

	// Delivery to the healthy clients is unaffected by the dead one
	for _, c := range []*Client{healthy1, healthy2} {
		msg := recv(t, c.send)
		if _, ok := msg.(models.MResetAckMessage); !ok {
			t.Errorf("client %s: expected a reset ack, got %T", c.id, msg)
		}
	}

	waitFor(t, func() bool { return s.SubscriberCount() == 2 }, "slow client pruned")

	// The pruned client's channel is closed
	if _, ok := <-slow.send; ok {
		t.Error("expected the slow client's send channel to be closed")
	}

	// Later rounds reach the survivors only
	s.Broadcast(models.NewPulseMessage(1.0))
	recv(t, healthy1.send)
	recv(t, healthy2.send)
}

func TestUnregister(t *testing.T) {
	s := newTestServer(t)
	startHub(t, s)

	c := &Client{id: "c1", server: s, send: make(chan interface{}, 4)}
	s.register <- c
	recv(t, c.send)

	s.unregister <- c
	waitFor(t, func() bool { return s.SubscriberCount() == 0 }, "subscriber count 0")
}

func TestConfigEndpointReportsSource(t *testing.T) {
	s := newTestServer(t)

	// Before any source is up the field is present but empty
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest("GET", "/api/config", nil))
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if body["source"] != "" {
		t.Errorf("expected empty source before startup, got %v", body["source"])
	}

	s.SetSourceName("synthetic")

	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest("GET", "/api/config", nil))
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if body["source"] != "synthetic" {
		t.Errorf("expected source 'synthetic', got %v", body["source"])
	}
}

func TestRegisterAfterStopDoesNotBlock(t *testing.T) {
	s := newTestServer(t)
	startHub(t, s)
	if err := s.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	c := &Client{id: "late", server: s, send: make(chan interface{}, 1)}
	done := make(chan bool, 1)
	go func() { done <- s.registerClient(c) }()

	select {
	case ok := <-done:
		if ok {
			t.Error("expected registration to be refused after stop")
		}
	case <-time.After(time.Second):
		t.Fatal("registerClient blocked after stop")
	}
}

func TestDisconnectAfterStopDoesNotBlock(t *testing.T) {
	s := newTestServer(t)
	startHub(t, s)

	c := &Client{id: "c1", server: s, send: make(chan interface{}, 4)}
	s.register <- c
	recv(t, c.send)

	if err := s.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	waitFor(t, func() bool { return s.SubscriberCount() == 0 }, "hub drained")

	done := make(chan struct{})
	go func() {
		c.disconnect()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disconnect blocked after stop")
	}
}

func TestStopDisconnectsAllClients(t *testing.T) {
	s := newTestServer(t)
	go s.handleWebsockets()
	s.running.Store(true)

	c := &Client{id: "c1", server: s, send: make(chan interface{}, 4)}
	s.register <- c
	recv(t, c.send)

	if err := s.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	waitFor(t, func() bool { return s.SubscriberCount() == 0 }, "all clients dropped")
	if s.running.Load() {
		t.Error("expected server to be marked stopped")
	}
}
