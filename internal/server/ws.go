// Package server provides the HTTP server for the PhysioFlow exercise
// coaching system.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/physioflow/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// TelemetryHandler broadcasts live detection telemetry of the active
// session via WebSocket. Clients that only display progress subscribe here;
// the detect endpoint is for clients that supply their own frames.
type TelemetryHandler struct {
	controller *session.Controller
	clients    map[*websocket.Conn]bool
	mu         sync.RWMutex
}

// NewTelemetryHandler creates a new TelemetryHandler over the controller.
func NewTelemetryHandler(c *session.Controller) *TelemetryHandler {
	h := &TelemetryHandler{
		controller: c,
		clients:    make(map[*websocket.Conn]bool),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *TelemetryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast sends the latest telemetry to all connected clients.
func (h *TelemetryHandler) broadcast() {
	ticker := time.NewTicker(66 * time.Millisecond) // ~15 FPS
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		if len(h.clients) == 0 {
			h.mu.RUnlock()
			continue
		}
		h.mu.RUnlock()

		ex, id, running := h.controller.Active()
		if !running {
			continue
		}

		msg, _ := json.Marshal(map[string]any{
			"session_id": id,
			"exercise":   ex,
			"result":     h.controller.LastResult(),
			"timestamp":  time.Now().UnixMilli(),
		})

		h.mu.RLock()
		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}
