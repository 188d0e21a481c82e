package web

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/meta"
)

func dialHub(t *testing.T, hub *LiveHub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, strings.Replace(srv.URL, "http", "ws", 1), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func TestLiveHubPingPong(t *testing.T) {
	hub := NewLiveHub()
	conn := dialHub(t, hub)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, ClientMessage{Type: "ping"}))

	var msg ServerMessage
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, "pong", msg.Type)
}

func TestLiveHubBroadcast(t *testing.T) {
	hub := NewLiveHub()
	conn := dialHub(t, hub)

	// The connection registers asynchronously after the upgrade.
	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.conns) == 1
	}, 5*time.Second, 10*time.Millisecond)

	hub.Broadcast(meta.KeyTask)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var msg ServerMessage
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, "invalidate", msg.Type)
	assert.Equal(t, "/task", msg.Entity)
}

func TestLiveHubBroadcastNoConnections(t *testing.T) {
	hub := NewLiveHub()
	assert.NotPanics(t, func() { hub.Broadcast(meta.KeyStatus) })
}
