package web

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/taskdeck/taskdeck/internal/meta"
)

// LiveHub pushes cache-invalidation events to connected list views so
// they can refresh after someone else's mutation.
type LiveHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// ClientMessage is the envelope for client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"` // "ping"
}

// ServerMessage is the envelope for server-to-client messages.
type ServerMessage struct {
	Type   string `json:"type"`             // "invalidate", "pong"
	Entity string `json:"entity,omitempty"` // API prefix, e.g. "/task"
}

// NewLiveHub creates an empty hub.
func NewLiveHub() *LiveHub {
	return &LiveHub{conns: make(map[*websocket.Conn]struct{})}
}

// ServeHTTP upgrades to WebSocket and parks the connection until the
// client goes away. Inbound traffic is only keepalive pings.
func (h *LiveHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("live: websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
	}()

	ctx := r.Context()
	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("live: connection closed: %v", websocket.CloseStatus(err))
			}
			return
		}
		if msg.Type == "ping" {
			_ = wsjson.Write(ctx, conn, ServerMessage{Type: "pong"})
		}
	}
}

// Broadcast tells every connected view that the entity type's cached
// reads went stale.
func (h *LiveHub) Broadcast(key meta.Key) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	msg := ServerMessage{Type: "invalidate", Entity: key.String()}
	for _, c := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := wsjson.Write(ctx, c, msg); err != nil {
			log.Printf("live: broadcast: %v", err)
		}
		cancel()
	}
}
