package orderControllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweetdreams-bakery/storefront/models"
)

func TestHubBroadcastsOrderEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	r := gin.New()
	r.GET("/ws", hub.Handler)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(EventOrderStatusChanged, models.Order{ID: 7, OrderRef: "ref-7", Status: models.OrderStatusProcessing})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev orderEvent
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, EventOrderStatusChanged, ev.Event)
	assert.Equal(t, uint(7), ev.Order.ID)
	assert.Equal(t, models.OrderStatusProcessing, ev.Order.Status)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubDropsStalledClientWithoutBlocking(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)

	hub := NewHub()
	stalled := &client{conn: conn, send: make(chan []byte, 1)}
	hub.add(stalled)

	done := make(chan struct{})
	go func() {
		hub.Publish(EventOrderCreated, models.Order{ID: 1})
		hub.Publish(EventOrderCreated, models.Order{ID: 2})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a client that never drains its queue")
	}

	assert.Zero(t, hub.Clients())
	queued, ok := <-stalled.send
	require.True(t, ok)
	assert.Contains(t, string(queued), `"id":1`)
	_, ok = <-stalled.send
	assert.False(t, ok)
}
