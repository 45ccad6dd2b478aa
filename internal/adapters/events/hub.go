package events

import (
	"context"
	"encoding/json"
	"fitmask/internal/core/domain"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Hub pushes execution events to host sessions over websocket, mirroring
// the graph runtime's progress channel. Sessions that fail a write are
// dropped.
type Hub struct {
	upgrader websocket.Upgrader
	mutex    sync.Mutex
	sessions map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions: make(map[*websocket.Conn]struct{}),
	}
}

// Handle upgrades the request and keeps the session registered until the
// peer closes it.
func (h *Hub) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade event session")
		return
	}

	h.mutex.Lock()
	h.sessions[conn] = struct{}{}
	h.mutex.Unlock()

	log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("event session connected")

	go h.drain(conn)
}

func (h *Hub) Publish(_ context.Context, event domain.ExecutionEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal execution event")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn := range h.sessions {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Warn().Err(err).Msg("dropping event session after failed write")
			delete(h.sessions, conn)
			_ = conn.Close()
		}
	}
}

// drain discards inbound frames until the peer goes away.
func (h *Hub) drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.mutex.Lock()
			delete(h.sessions, conn)
			h.mutex.Unlock()

			_ = conn.Close()

			log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("event session closed")

			return
		}
	}
}
