// SPDX-License-Identifier: EPL-2.0

package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ik5/talkinghead/lipsync"
)

const (
	writeWait    = 5 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 32
)

// Message is what the hub pushes to websocket clients.
type Message struct {
	Type   string             `json:"type"`
	Values map[string]float64 `json:"values,omitempty"`
	Data   any                `json:"data,omitempty"`
	Time   int64              `json:"timestamp"`
}

// Message types.
const (
	TypeFrame      = "frame"
	TypeTranscript = "transcript"
	TypeStatus     = "status"
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans morph frames and events out to every connected avatar page. It
// is both an animation.MorphTarget and an animation.FrameSink.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	log      zerolog.Logger

	pending map[string]float64 // channels set one by one since the last flush
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log:     log,
		pending: make(map[string]float64, len(lipsync.Channels)),
	}
}

// EmitFrame broadcasts all six channels as one message.
func (h *Hub) EmitFrame(frame lipsync.Frame) {
	values := make(map[string]float64, len(lipsync.Channels))
	frame.Each(func(name string, v float64) { values[name] = v })

	h.Broadcast(Message{Type: TypeFrame, Values: values})
}

// SetFixedValue collects single channels and broadcasts once the last
// channel of a frame arrives.
func (h *Hub) SetFixedValue(name string, value float64) {
	h.mu.Lock()
	h.pending[name] = value
	if name != lipsync.ChannelMouthOpen {
		h.mu.Unlock()
		return
	}
	values := h.pending
	h.pending = make(map[string]float64, len(lipsync.Channels))
	h.mu.Unlock()

	h.Broadcast(Message{Type: TypeFrame, Values: values})
}

// Broadcast sends msg to every client. A client whose buffer is full is
// dropped rather than allowed to stall the animation loop.
func (h *Hub) Broadcast(msg Message) {
	if msg.Time == 0 {
		msg.Time = time.Now().UnixMilli()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error().Err(err).Str("type", msg.Type).Msg("encode websocket message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Warn().Msg("dropping slow websocket client")
			h.removeLocked(c)
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// ServeHTTP upgrades the request and streams messages until the peer goes
// away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.log.Info().Str("remote", r.RemoteAddr).Msg("avatar connected")

	go h.writePump(c)
	h.readPump(c)

	h.log.Info().Str("remote", r.RemoteAddr).Msg("avatar disconnected")
}

// readPump discards inbound messages; it only notices the close.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
