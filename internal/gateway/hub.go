// Package gateway serves the dashboard's consumed interface: REST endpoints
// over the latest result bundle and a WebSocket feed pushing each freshly
// computed bundle.
package gateway

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"coinsniper/internal/model"
)

// Hub manages WebSocket clients and fans freshly computed bundles out to
// them. There is a single feed; no per-channel filtering.
type Hub struct {
	log *slog.Logger

	// OnClientCount, when set, is told the client total after every
	// connect/disconnect.
	OnClientCount func(n int)

	mu      sync.RWMutex
	clients map[*Client]bool
	latest  []byte // envelope of the most recent bundle
}

// NewHub creates an empty hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		log:     log,
		clients: make(map[*Client]bool),
	}
}

// Publish wraps a bundle in the wire envelope and fans it out. Slow clients
// are skipped, never blocked on.
func (h *Hub) Publish(b *model.ResultBundle) {
	envelope, err := json.Marshal(map[string]interface{}{
		"type": "bundle",
		"data": b,
		"ts":   time.Now().Format(time.RFC3339Nano),
	})
	if err != nil {
		h.log.Error("bundle marshal failed", "err", err)
		return
	}

	h.mu.Lock()
	h.latest = envelope
	for client := range h.clients {
		select {
		case client.send <- envelope:
		default:
		}
	}
	h.mu.Unlock()
}

// HandleWS registers an upgraded connection and starts its pumps. The new
// client immediately receives the latest bundle when one exists.
func (h *Hub) HandleWS(conn *websocket.Conn) {
	client := &Client{
		conn: conn,
		send: make(chan []byte, 16),
		hub:  h,
	}

	h.mu.Lock()
	// Queue the latest bundle before the pumps start; the channel is
	// buffered and nothing can close it yet.
	if h.latest != nil {
		client.send <- h.latest
	}
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.log.Info("ws client connected", "total", count)
	h.notifyCount(count)

	go client.writePump()
	go client.readPump()
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	close(c.send)
	h.log.Info("ws client disconnected", "total", count)
	h.notifyCount(count)
}

func (h *Hub) notifyCount(n int) {
	if h.OnClientCount != nil {
		h.OnClientCount(n)
	}
}

// ClientCount returns the number of connected WS clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
