package hub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.Register(conn, "server")
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.Unregister(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestPublishReachesClients(t *testing.T) {
	h := New()
	srv := startServer(t, h)
	a := dial(t, srv)
	b := dial(t, srv)

	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	h.Publish(EventTableUpdate, map[string]int{"id": 3})

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		var msg struct {
			Event string         `json:"event"`
			Data  map[string]int `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, EventTableUpdate, msg.Event)
		assert.Equal(t, 3, msg.Data["id"])
	}
}

func TestUnregisterOnDisconnect(t *testing.T) {
	h := New()
	srv := startServer(t, h)
	conn := dial(t, srv)

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestPublishWithoutClients(t *testing.T) {
	h := New()
	assert.NotPanics(t, func() { h.Publish(EventTableDelete, nil) })
}

func TestPublishDoesNotWaitOnStalledClient(t *testing.T) {
	h := New()
	srv := startServer(t, h)
	dial(t, srv) // never reads

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	big := strings.Repeat("x", 256<<10)
	start := time.Now()
	for i := 0; i < 4*sendBuffer; i++ {
		h.Publish(EventTableUpdate, big)
	}
	assert.Less(t, time.Since(start), writeWait)
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, 2*writeWait, 50*time.Millisecond)
}
