package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(func() {
		cancel()
		server.Close()
	})
	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub, url := startHub(t)
	first := dial(t, url)
	second := dial(t, url)

	require.Eventually(t, func() bool { return hub.Stats().Clients == 2 }, 5*time.Second, 10*time.Millisecond)

	event := map[string]any{"transaction_id": "txn_1", "amount": "4200.00"}
	require.NoError(t, hub.BroadcastEvent(context.Background(), MessageNewTransaction, event))

	for _, conn := range []*websocket.Conn{first, second} {
		msg := readMessage(t, conn)
		require.Equal(t, MessageNewTransaction, msg["type"])
		require.Equal(t, "txn_1", msg["data"].(map[string]any)["transaction_id"])
	}
	require.EqualValues(t, 1, hub.Stats().Broadcast)
}

func TestPingGetsPong(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Stats().Clients == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(Message{Type: MessagePing}))
	require.Equal(t, MessagePong, readMessage(t, conn)["type"])
}

func TestDisconnectUnregistersClient(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Stats().Clients == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	require.Eventually(t, func() bool { return hub.Stats().Clients == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestBroadcastAfterStopFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zap.NewNop())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	require.Error(t, hub.BroadcastEvent(context.Background(), MessageNewTransaction, nil))
}

func TestSlowClientIsDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	// Клиент без буфера и без читателя: любая рассылка упирается в полный Send
	slow := &Client{ID: "slow", Send: make(chan []byte)}
	hub.register <- slow
	require.Eventually(t, func() bool { return hub.Stats().Clients == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.BroadcastEvent(context.Background(), MessageNewTransaction, map[string]string{"transaction_id": "txn_1"}))

	require.Eventually(t, func() bool {
		stats := hub.Stats()
		return stats.Dropped == 1 && stats.Clients == 0
	}, 5*time.Second, 10*time.Millisecond)

	_, open := <-slow.Send
	require.False(t, open)
}
