package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// streamServer upgrades one connection, records the subscribe message and
// pushes the given updates before holding the connection open.
func streamServer(t *testing.T, updates []PriceUpdate, subscribed chan<- []interface{}) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		var sub map[string]interface{}
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		if ids, ok := sub["eventIds"].([]interface{}); ok && subscribed != nil {
			subscribed <- ids
		}

		for _, update := range updates {
			if err := conn.WriteJSON(update); err != nil {
				return
			}
		}
		_, _, _ = conn.ReadMessage()
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStreamDeliversPriceUpdates(t *testing.T) {
	update := PriceUpdate{
		EventID:   "ev1",
		Bookmaker: "pinnacle",
		PriceA:    2.10,
		PriceB:    1.85,
		Timestamp: time.Now().UTC(),
	}
	subscribed := make(chan []interface{}, 1)
	srv := streamServer(t, []PriceUpdate{update}, subscribed)
	defer srv.Close()

	received := make(chan PriceUpdate, 1)
	client := NewStreamClient(wsURL(srv), "key", quietLogger())
	client.AddHandler(func(u PriceUpdate) error {
		received <- u
		return nil
	})

	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()
	assert.True(t, client.IsConnected())

	require.NoError(t, client.Subscribe([]string{"ev1", "ev2"}))

	select {
	case ids := <-subscribed:
		assert.Len(t, ids, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscribe message")
	}

	select {
	case got := <-received:
		assert.Equal(t, "ev1", got.EventID)
		assert.Equal(t, 2.10, got.PriceA)
		assert.Equal(t, 1.85, got.PriceB)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for price update")
	}
}

func TestStreamSkipsMessagesWithoutEventID(t *testing.T) {
	// An update with no event ID must not reach handlers; the one after must.
	updates := []PriceUpdate{
		{PriceA: 2.0, PriceB: 2.0},
		{EventID: "ev9", PriceA: 3.0, PriceB: 1.4},
	}
	srv := streamServer(t, updates, nil)
	defer srv.Close()

	received := make(chan PriceUpdate, 2)
	client := NewStreamClient(wsURL(srv), "key", quietLogger())
	client.AddHandler(func(u PriceUpdate) error {
		received <- u
		return nil
	})

	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()
	require.NoError(t, client.Subscribe(nil))

	select {
	case got := <-received:
		assert.Equal(t, "ev9", got.EventID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for price update")
	}
	assert.Empty(t, received)
}

func TestStreamSubscribeRequiresConnection(t *testing.T) {
	client := NewStreamClient("ws://127.0.0.1:1", "key", quietLogger())
	err := client.Subscribe([]string{"ev1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
	assert.False(t, client.IsConnected())
}

func TestStreamRejectsDoubleConnect(t *testing.T) {
	srv := streamServer(t, nil, nil)
	defer srv.Close()

	client := NewStreamClient(wsURL(srv), "key", quietLogger())
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	err := client.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already connected")
}
