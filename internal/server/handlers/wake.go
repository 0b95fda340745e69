package handlers

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// WakeHub pushes a wake signal to a user's connected replicas after one
// of them merges changes, so the others drain without waiting for the
// next periodic tick.
type WakeHub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
	conns    map[string]map[*websocket.Conn]struct{}
	mu       sync.Mutex
}

// NewWakeHub creates a wake hub
func NewWakeHub(logger *slog.Logger) *WakeHub {
	return &WakeHub{
		logger: logger,
		conns:  make(map[string]map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  512,
			WriteBufferSize: 512,
		},
	}
}

// HandleWake handles GET /api/v1/wake: upgrades to a websocket and holds
// the connection until the client goes away. Requires auth middleware.
func (h *WakeHub) HandleWake(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("wake upgrade failed", "error", err)
		return
	}

	h.register(userID, conn)
	h.logger.Debug("wake subscriber connected", "user_id", userID)

	// Hold the connection; inbound messages are ignored.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.unregister(userID, conn)
	_ = conn.Close()
	h.logger.Debug("wake subscriber disconnected", "user_id", userID)
}

// Notify sends a wake message to every replica of the user. Dead
// connections are dropped; delivery is best effort since the periodic
// drain covers missed wakes.
func (h *WakeHub) Notify(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns[userID] {
		if err := conn.WriteMessage(websocket.TextMessage, []byte("wake")); err != nil {
			delete(h.conns[userID], conn)
			_ = conn.Close()
		}
	}
}

func (h *WakeHub) register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]struct{})
	}
	h.conns[userID][conn] = struct{}{}
}

func (h *WakeHub) unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns[userID], conn)
	if len(h.conns[userID]) == 0 {
		delete(h.conns, userID)
	}
}
