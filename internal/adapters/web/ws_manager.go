// Package web holds the control plane's WebSocket live feed: zone
// assignments, uncertain readings, transitions, and dwells pushed to
// every connected client as they're emitted, not polled.
package web

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/neuralsense/fusion/internal/adapters/web/middleware"
	"github.com/neuralsense/fusion/internal/core/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}

		allowedOrigins := []string{
			"http://localhost:8080",
			"http://127.0.0.1:8080",
			"http://[::1]:8080",
		}
		for _, allowed := range allowedOrigins {
			if origin == allowed {
				return true
			}
		}

		log.Printf("WebSocket: rejected origin: %s", origin)
		return false
	},
}

// WSMessage is the envelope sent to every connected client.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WSManager fans engine events out to every connected client. Unlike a
// polling broadcaster, it has no background sweep: the engine calls
// straight into Broadcast* as each event is emitted.
type WSManager struct {
	Clients map[*websocket.Conn]*domain.User
	mu      sync.Mutex
}

// NewWSManager builds an empty manager ready to accept connections.
func NewWSManager() *WSManager {
	return &WSManager{
		Clients: make(map[*websocket.Conn]*domain.User),
	}
}

// HandleWebSocket upgrades an authenticated request to a WebSocket and
// registers the connection until it disconnects.
func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(middleware.UserContextKey).(*domain.User)
	if !ok || user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("websocket upgrade error:", err)
		return
	}

	m.mu.Lock()
	m.Clients[conn] = user
	m.mu.Unlock()

	log.Printf("websocket connected: user=%s, role=%s", user.Username, user.Role)

	go func() {
		defer conn.Close()
		defer func() {
			m.mu.Lock()
			delete(m.Clients, conn)
			m.mu.Unlock()
			log.Printf("websocket disconnected: user=%s", user.Username)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// BroadcastAssignment pushes a live zone assignment to every client.
func (m *WSManager) BroadcastAssignment(a domain.ZoneAssignment) {
	m.broadcastMessage(WSMessage{Type: "assignment", Payload: a})
}

// BroadcastUncertain pushes a margin-gated uncertain reading.
func (m *WSManager) BroadcastUncertain(u domain.Uncertain) {
	m.broadcastMessage(WSMessage{Type: "uncertain", Payload: u})
}

// BroadcastTransition pushes a confirmed zone transition.
func (m *WSManager) BroadcastTransition(t domain.Transition) {
	m.broadcastMessage(WSMessage{Type: "transition", Payload: t})
}

// BroadcastDwell pushes a closed dwell interval.
func (m *WSManager) BroadcastDwell(d domain.Dwell) {
	m.broadcastMessage(WSMessage{Type: "dwell", Payload: d})
}

func (m *WSManager) broadcastMessage(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Println("websocket marshal error:", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.Clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(m.Clients, conn)
		}
	}
}
