package orderControllers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sweetdreams-bakery/storefront/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait = 5 * time.Second
	// Events queued per dashboard before it is considered stalled.
	sendBuffer = 16
)

type orderEvent struct {
	Event string       `json:"event"`
	Order models.Order `json:"order"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans committed order events out to connected admin dashboards. Each
// dashboard has its own writer goroutine, so Publish never waits on the network.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	log     *slog.Logger
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     slog.Default().With("module", "order_feed"),
	}
}

// GET /admin/orders/ws
func (h *Hub) Handler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.add(cl)
	defer h.remove(cl)
	go h.writeLoop(cl)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) writeLoop(cl *client) {
	for data := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug("order feed write failed", "error", err)
			h.remove(cl)
			return
		}
	}
}

func (h *Hub) add(cl *client) {
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	h.drop(cl)
	h.mu.Unlock()
	cl.conn.Close()
}

// drop must be called with h.mu held. The send channel is closed exactly once.
func (h *Hub) drop(cl *client) {
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
}

// Clients returns the number of connected dashboards.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish implements Notifier. A dashboard whose queue is full is disconnected.
func (h *Hub) Publish(event string, order models.Order) {
	data, err := json.Marshal(orderEvent{Event: event, Order: order})
	if err != nil {
		h.log.Error("encode order event", "error", err)
		return
	}

	var stalled []*client
	h.mu.Lock()
	for cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			h.drop(cl)
			stalled = append(stalled, cl)
		}
	}
	h.mu.Unlock()

	for _, cl := range stalled {
		h.log.Warn("dropping stalled order feed client")
		cl.conn.Close()
	}
}
