package websocket

import (
	"sync"

	"tigaraksa-chat-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// Hub keeps the set of live chat sessions. Sessions never talk to each other;
// the hub exists for the health count and for shutdown.
type Hub struct {
	sessions map[uuid.UUID]*Session

	register   chan *Session
	unregister chan *Session
	stop       chan struct{}

	mu     sync.RWMutex
	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		sessions:   make(map[uuid.UUID]*Session),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		stop:       make(chan struct{}),
		logger:     log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case s := <-h.register:
			h.mu.Lock()
			h.sessions[s.Id] = s
			h.mu.Unlock()
			h.logger.Debug("Hub", "Chat session registered", map[string]interface{}{"session_id": s.Id})

		case s := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.sessions[s.Id]; ok {
				delete(h.sessions, s.Id)
				close(s.Send)
			}
			h.mu.Unlock()
			h.logger.Debug("Hub", "Chat session unregistered", map[string]interface{}{"session_id": s.Id})

		case <-h.stop:
			h.mu.Lock()
			for id, s := range h.sessions {
				s.Conn.Close()
				delete(h.sessions, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) add(s *Session) bool {
	select {
	case <-h.stop:
		return false
	default:
	}
	select {
	case h.register <- s:
		return true
	case <-h.stop:
		return false
	}
}

func (h *Hub) remove(s *Session) {
	select {
	case h.unregister <- s:
	case <-h.stop:
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Shutdown closes every live connection and stops Run.
func (h *Hub) Shutdown() {
	close(h.stop)
}
