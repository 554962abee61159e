package feed

import (
	"sync"

	"github.com/gorilla/websocket"

	"venuehouse/internal/events"
	"venuehouse/internal/logger"
)

// Hub fans lifecycle events out to connected staff dashboards. One
// connection per staff user; a reconnect replaces the old socket.
type Hub struct {
	connections map[int64]*websocket.Conn
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[int64]*websocket.Conn),
	}
}

// Run drains the event bus into the hub until the channel closes.
// Intended to run in its own goroutine.
func (h *Hub) Run(ch <-chan events.Event) {
	for e := range ch {
		h.Broadcast(e)
	}
}

func (h *Hub) Register(staffID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if oldConn, exists := h.connections[staffID]; exists && oldConn != nil {
		_ = oldConn.Close()
	}

	h.connections[staffID] = conn
}

func (h *Hub) Unregister(staffID int64) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if conn, exists := h.connections[staffID]; exists && conn != nil {
		_ = conn.Close()
		delete(h.connections, staffID)
	}
}

// Broadcast pushes the event to every connected client. Write failures
// evict the connection; the client is expected to reconnect.
func (h *Hub) Broadcast(e events.Event) {
	h.mutex.RLock()
	targets := make(map[int64]*websocket.Conn, len(h.connections))
	for id, conn := range h.connections {
		targets[id] = conn
	}
	h.mutex.RUnlock()

	for staffID, conn := range targets {
		if conn == nil {
			continue
		}
		if err := conn.WriteJSON(e); err != nil {
			logger.Debug("feed write failed, dropping connection", "staff_id", staffID, "error", err)
			h.Unregister(staffID)
		}
	}
}

func (h *Hub) OnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for staffID, conn := range h.connections {
		if conn != nil {
			_ = conn.Close()
		}
		delete(h.connections, staffID)
	}
}
