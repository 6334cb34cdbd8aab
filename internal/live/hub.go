// Package live streams the scene to browsers over a websocket and feeds
// their pointer and control events back into the engine loop.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrHubClosed is returned by Broadcast once the hub has stopped.
var ErrHubClosed = errors.New("live hub closed")

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	// The viewer is served from the same process; any local origin may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the envelope for everything sent to a browser.
type Message struct {
	Type    string      `json:"type"` // "system", "frame", "selection", "stats"
	Payload interface{} `json:"payload"`
}

// sendBuffer is how many messages may wait for one browser before it is
// dropped as too slow.
const sendBuffer = 16

// client is one browser connection. Only its writer goroutine writes to
// conn; the hub hands it messages through send.
type client struct {
	conn   *websocket.Conn
	send   chan []byte
	remote string
}

// writePump writes queued messages until send is closed or a write fails.
func (c *client) writePump() {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"),
		time.Now().Add(time.Second))
}

// Hub fans encoded messages out to every connected browser. mu guards the
// client set only and is never held across a network write.
type Hub struct {
	clients   map[*client]bool
	broadcast chan []byte
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
	logger    *slog.Logger

	// OnMessage receives every text message a browser sends.
	OnMessage func(data []byte)
	// OnJoin runs after a browser connects.
	OnJoin func()
}

// NewHub returns a hub with a small send buffer.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:   make(map[*client]bool),
		broadcast: make(chan []byte, 64),
		done:      make(chan struct{}),
		logger:    logger,
	}
}

// Run hands queued messages to every client until ctx is canceled, then
// closes all connections.
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return nil
		case data := <-h.broadcast:
			h.writeAll(data)
		}
	}
}

// writeAll queues data for every client. A client whose queue is full is
// dropped.
func (h *Hub) writeAll(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Debug("dropping slow websocket client", "remote", c.remote)
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) shutdown() {
	h.closeOnce.Do(func() { close(h.done) })
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast queues a message for every client, waiting for buffer space.
func (h *Hub) Broadcast(msgType string, payload interface{}) error {
	if h.closed() {
		return ErrHubClosed
	}
	data, err := json.Marshal(Message{Type: msgType, Payload: payload})
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- data:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

// TryBroadcast queues a message only if the buffer has room. Frames use it
// so a slow browser never stalls the engine loop.
func (h *Hub) TryBroadcast(msgType string, payload interface{}) bool {
	if h.closed() {
		return false
	}
	data, err := json.Marshal(Message{Type: msgType, Payload: payload})
	if err != nil {
		h.logger.Error("encoding live message", "type", msgType, "err", err)
		return false
	}
	select {
	case h.broadcast <- data:
		return true
	default:
		return false
	}
}

func (h *Hub) closed() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Clients returns the number of connected browsers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request and reads client messages until
// the connection closes.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	hello, _ := json.Marshal(Message{Type: "system", Payload: "connected to scmap"})
	c := &client{conn: conn, send: make(chan []byte, sendBuffer), remote: conn.RemoteAddr().String()}
	c.send <- hello

	h.mu.Lock()
	if h.closed() {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = true
	h.mu.Unlock()
	go c.writePump()

	h.logger.Info("browser connected", "remote", c.remote)
	if h.OnJoin != nil {
		h.OnJoin()
	}

	defer h.remove(c)
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if kind == websocket.TextMessage && h.OnMessage != nil {
			h.OnMessage(data)
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
		h.logger.Info("browser disconnected", "remote", c.remote)
	}
}
