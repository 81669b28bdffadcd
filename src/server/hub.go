package server

import (
	"net/http"

	"github.com/GonzalezFJR/geiger/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// WebSocket Hub
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins (same as the browser dashboard expects)
	},
}

// -----------------------------------------------------------------------------

// Broadcast submits a message for delivery to every connected client. Safe to
// call from any goroutine; a no-op until the hub loop is running. Never blocks
// the caller, messages are dropped if the queue is full.
func (s *FastAPIServer) Broadcast(message interface{}) {
	if !s.running.Load() {
		return
	}
	select {
	case s.broadcast <- message:
	default:
		s.Logger.Debug("Broadcast queue full, dropping message")
	}
}

// -----------------------------------------------------------------------------

// handleWebsockets is the hub loop. It has exclusive ownership of the client
// set, so no locking is needed around it.
func (s *FastAPIServer) handleWebsockets() {
	for {
		select {
		case <-s.quit:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.subCount.Store(0)
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.subCount.Store(int64(len(s.clients)))
			s.Logger.Info("Client %s connected (%d total)", client.id, len(s.clients))

			// The new client gets the current snapshot right away, before any
			// ticked broadcast reaches it
			select {
			case client.send <- models.NewSnapshotMessage(s.agg.Snapshot()):
			default:
			}

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
				s.subCount.Store(int64(len(s.clients)))
				s.Logger.Info("Client %s disconnected (%d total)", client.id, len(s.clients))
			}

		case message := <-s.broadcast:
			// Deliver the full round first; failed clients are pruned only
			// after every other client has been offered the message
			var failed []*Client
			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					failed = append(failed, client)
				}
			}
			for _, client := range failed {
				s.Logger.Warning("Client %s too slow, disconnecting", client.id)
				delete(s.clients, client)
				close(client.send)
			}
			if len(failed) > 0 {
				s.subCount.Store(int64(len(s.clients)))
			}
		}
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handler
// -----------------------------------------------------------------------------

func (s *FastAPIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Error("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		id:     uuid.NewString(),
		server: s,
		conn:   conn,
		send:   make(chan interface{}, 64),
	}

	if !s.registerClient(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------

// registerClient hands the client to the hub loop. Returns false when the hub
// has already shut down, so a late upgrade never blocks forever.
func (s *FastAPIServer) registerClient(client *Client) bool {
	select {
	case s.register <- client:
		return true
	case <-s.quit:
		return false
	}
}
