// Websocket stream: pushes one frame per tick to connected dashboards so
// they can re-render without polling.
package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/wealthsim/internal/model"
)

const maxStreamConns = 16

// Frame is the per-tick payload a dashboard consumes: the tick index, the
// Gini value, and every agent's portrayal.
type Frame struct {
	Tick       uint64            `json:"tick"`
	Gini       float64           `json:"gini"`
	Portrayals []model.Portrayal `json:"portrayals"`
}

// Hub fans frames out to websocket clients. Slow clients are dropped rather
// than allowed to stall the tick loop.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan Frame
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]chan Frame)}
}

// Broadcast queues a frame for every connected client. Never blocks: a
// client whose buffer is full misses the frame.
func (h *Hub) Broadcast(f Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.clients {
		select {
		case ch <- f:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(conn *websocket.Conn) (chan Frame, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) >= maxStreamConns {
		return nil, false
	}
	ch := make(chan Frame, 8)
	h.clients[conn] = ch
	return ch, true
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[conn]; ok {
		close(ch)
		delete(h.clients, conn)
	}
	conn.Close()
}

// handleStream upgrades the connection and writes frames until the client
// goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.allowedOrigins[origin]
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("stream upgrade failed", "error", err)
		return
	}

	ch, ok := s.Hub.add(conn)
	if !ok {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too many clients"),
			timeNowDeadline())
		conn.Close()
		return
	}
	slog.Info("stream client connected", "clients", s.Hub.ClientCount())

	// Reader goroutine: discard inbound messages, detect disconnect.
	go func() {
		defer s.Hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for f := range ch {
		if err := conn.WriteJSON(f); err != nil {
			s.Hub.remove(conn)
			return
		}
	}
}

func timeNowDeadline() time.Time {
	return time.Now().Add(time.Second)
}
