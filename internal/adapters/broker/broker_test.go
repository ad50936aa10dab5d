package broker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/neuralsense/fusion/internal/core/ports"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{}

func TestClient_DeliversFramesFromServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"ts":1.0,"rpi_id":"s1","mac":"aa:bb:cc:dd:ee:ff","rssi":-60}`)))
		time.Sleep(50 * time.Millisecond)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client := NewClient(Config{URL: url, ReconnectDelay: 10 * time.Millisecond, MaxReconnect: 100 * time.Millisecond})

	var mu sync.Mutex
	var received []ports.RawMessage
	handler := func(ctx context.Context, msg ports.RawMessage, rxTS float64) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, msg)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = client.Run(ctx, handler)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, received)
	require.Equal(t, "s1", received[0].SnifferID)
	require.Equal(t, -60, received[0].RSSI)
}

func TestMockBroker_DeliversAllMessagesInOrder(t *testing.T) {
	msgs := []ports.RawMessage{
		{SnifferID: "s1", MAC: "a", RSSI: -60},
		{SnifferID: "s2", MAC: "a", RSSI: -61},
	}
	mb := NewMockBroker(msgs, 5*time.Millisecond)

	var mu sync.Mutex
	var received []ports.RawMessage
	handler := func(ctx context.Context, msg ports.RawMessage, rxTS float64) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, msg)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = mb.Run(ctx, handler)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)
	require.Equal(t, "s1", received[0].SnifferID)
	require.Equal(t, "s2", received[1].SnifferID)
}
