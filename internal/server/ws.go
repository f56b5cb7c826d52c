package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// LiveInterval is how often snapshots are pushed to clients.
const LiveInterval = 66 * time.Millisecond

const writeWait = time.Second

// StatusSource provides session snapshots.
type StatusSource interface {
	Status() session.Snapshot
}

// LiveHandler pushes session snapshots to websocket clients.
type LiveHandler struct {
	source   StatusSource
	logger   *slog.Logger
	interval time.Duration
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
}

// NewLiveHandler creates a LiveHandler. Run must be started for clients to
// receive updates.
func NewLiveHandler(source StatusSource, logger *slog.Logger) *LiveHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveHandler{
		source:   source,
		logger:   logger,
		interval: LiveInterval,
		clients:  make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
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

	// Reads keep the connection alive and detect disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *LiveHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run broadcasts snapshots until ctx is cancelled.
func (h *LiveHandler) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.broadcast()
		}
	}
}

func (h *LiveHandler) broadcast() {
	if h.Clients() == 0 {
		return
	}

	msg, err := json.Marshal(h.source.Status())
	if err != nil {
		h.logger.Warn("encode snapshot", "err", err)
		return
	}

	// Write lock: gorilla connections allow one concurrent writer.
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug("websocket write failed", "err", err)
		}
	}
}

func (h *LiveHandler) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
	}
}
