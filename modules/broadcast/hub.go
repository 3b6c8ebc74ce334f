package broadcast

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Conn is the subset of the WebSocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Session is one live client connection.
type Session struct {
	ID   string
	Conn Conn
}

// delivery is one queued write: a payload and the sessions it targets.
// Nil targets means every connected session.
type delivery struct {
	targets []string
	payload any
}

// Hub owns the session registry and serializes all outbound socket
// writes through a single loop. It knows nothing about rooms or
// membership; target session sets arrive precomputed by the room
// coordinator.
type Hub struct {
	sessions   map[string]*Session
	register   chan *Session
	unregister chan string
	deliveries chan delivery
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]*Session),
		register:   make(chan *Session),
		unregister: make(chan string),
		deliveries: make(chan delivery, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. It accepts a context for graceful
// shutdown.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("[hub] Shutting down...")
			h.closeAllSessions()
			close(h.done)
			return
		case session := <-h.register:
			h.handleRegister(session)
		case sessionID := <-h.unregister:
			h.handleUnregister(sessionID)
		case d := <-h.deliveries:
			h.handleDelivery(d)
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

// Register adds a session to the hub.
func (h *Hub) Register(session *Session) {
	h.register <- session
}

// Unregister removes a session from the hub.
func (h *Hub) Unregister(sessionID string) {
	h.unregister <- sessionID
}

// Deliver queues a payload for the given sessions. Nil targets means
// every connected session.
func (h *Hub) Deliver(targets []string, payload any) {
	h.deliveries <- delivery{targets: targets, payload: payload}
}

// Send queues a payload for a single session.
func (h *Hub) Send(sessionID string, payload any) {
	h.Deliver([]string{sessionID}, payload)
}

// SessionCount returns the number of connected sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) handleRegister(session *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[session.ID] = session
	log.Printf("[hub] Session %s registered", session.ID)
}

func (h *Hub) handleUnregister(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[sessionID]; ok {
		delete(h.sessions, sessionID)
		log.Printf("[hub] Session %s unregistered", sessionID)
	}
}

func (h *Hub) handleDelivery(d delivery) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(d.payload)
	if err != nil {
		log.Printf("[hub] Failed to marshal delivery payload: %v", err)
		return
	}

	if d.targets == nil {
		for _, session := range h.sessions {
			h.writeTo(session, data)
		}
		return
	}
	for _, sessionID := range d.targets {
		if session, ok := h.sessions[sessionID]; ok {
			h.writeTo(session, data)
		}
	}
}

// writeTo is best-effort: a dead socket is logged and skipped, its
// cleanup happens when the reader loop observes the close.
func (h *Hub) writeTo(session *Session, data []byte) {
	if err := session.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("[hub] Failed to send to session %s: %v", session.ID, err)
	}
}

func (h *Hub) closeAllSessions() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, session := range h.sessions {
		_ = session.Conn.Close()
	}
	h.sessions = make(map[string]*Session)
}
