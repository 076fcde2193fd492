// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/voodoo-quality/internal/models"
)

// serveHub upgrades every request and attaches the connection to hub the way
// the API /ws handler does.
func serveHub(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		client := NewClient(hub, conn)
		hub.Register <- client
		client.Start()
	}))
	t.Cleanup(server.Close)
	return server
}

// setupWebSocketServer runs handler against the server side of a raw connection.
func setupWebSocketServer(t *testing.T, handler func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(server.Close)
	return server
}

func dialWebSocket(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestClient_Constants(t *testing.T) {
	if pingPeriod >= pongWait {
		t.Errorf("pingPeriod %v must be shorter than pongWait %v", pingPeriod, pongWait)
	}
	if writeWait != 10*time.Second || pongWait != 60*time.Second {
		t.Errorf("writeWait=%v pongWait=%v", writeWait, pongWait)
	}
}

func TestNewClient_UniqueIDs(t *testing.T) {
	hub := NewHub()
	a, b := NewClient(hub, nil), NewClient(hub, nil)
	if a.ID() == 0 || b.ID() <= a.ID() {
		t.Errorf("ids %d, %d should be positive and increasing", a.ID(), b.ID())
	}
	if cap(a.send) != sendBuffer {
		t.Errorf("send capacity = %d", cap(a.send))
	}
}

func TestClient_ReceivesBroadcasts(t *testing.T) {
	hub := NewHub()
	startHub(t, hub)
	conn := dialWebSocket(t, serveHub(t, hub))
	waitForClients(t, hub, 1)

	hub.BroadcastStatsRefreshed(models.TimeframeAll, false, "2026-01-01T00:00:00.000Z")

	msg := readMessage(t, conn)
	if msg.Type != MessageTypeStatsRefreshed {
		t.Fatalf("type = %q", msg.Type)
	}
	data, ok := msg.Data.(map[string]any)
	if !ok {
		t.Fatalf("data = %T", msg.Data)
	}
	if data["timeframe"] != "all" || data["forced"] != false || data["last_updated"] != "2026-01-01T00:00:00.000Z" {
		t.Errorf("data = %v", data)
	}
}

func TestClient_PingPong(t *testing.T) {
	hub := NewHub()
	startHub(t, hub)
	conn := dialWebSocket(t, serveHub(t, hub))

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != MessageTypePong {
		t.Errorf("type = %q, want pong", msg.Type)
	}
}

func TestClient_DisconnectUnregisters(t *testing.T) {
	hub := NewHub()
	startHub(t, hub)
	conn := dialWebSocket(t, serveHub(t, hub))
	waitForClients(t, hub, 1)

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	_ = conn.Close()

	waitForClients(t, hub, 0)
}

func TestClient_WritePump_ClosedChannelSendsClose(t *testing.T) {
	closed := make(chan int, 1)
	server := setupWebSocketServer(t, func(conn *websocket.Conn) {
		hub := NewHub()
		client := NewClient(hub, conn)
		close(client.send)
		client.writePump()
	})

	conn := dialWebSocket(t, server)
	go func() {
		_, _, err := conn.ReadMessage()
		if ce, ok := err.(*websocket.CloseError); ok {
			closed <- ce.Code
			return
		}
		closed <- -1
	}()

	select {
	case code := <-closed:
		if code == -1 {
			t.Error("expected a close frame")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for close")
	}
}

func TestClient_OversizedMessageDisconnects(t *testing.T) {
	hub := NewHub()
	startHub(t, hub)
	conn := dialWebSocket(t, serveHub(t, hub))
	waitForClients(t, hub, 1)

	big := Message{Type: "noise", Data: strings.Repeat("x", maxMessageSize+1)}
	_ = conn.WriteJSON(big)

	waitForClients(t, hub, 0)
}
