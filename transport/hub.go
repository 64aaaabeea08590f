// Package transport is the websocket channel transport. It accepts
// connections, frames events as JSON, and hands inbound events to the
// session handler. It knows nothing about rooms or messages.
package transport

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"chat-hub/contract"
	"chat-hub/domain"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// frame is the wire envelope. Clients that want an acknowledgment set
// a non-zero ackId; the reply comes back as an "ack" frame echoing it.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	AckID int64           `json:"ackId,omitempty"`
}

type Hub struct {
	log        *slog.Logger
	handler    contract.SessionHandler
	upgrader   websocket.Upgrader
	sendBuffer int

	mu      sync.RWMutex
	clients map[domain.SessionID]*client
}

func NewHub(log *slog.Logger, handler contract.SessionHandler, sendBuffer int) *Hub {
	return &Hub{
		log:        log,
		handler:    handler,
		upgrader:   websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		sendBuffer: sendBuffer,
		clients:    make(map[domain.SessionID]*client),
	}
}

// ServeHTTP upgrades the connection, assigns the session id, and runs
// the read/write pumps. The handler sees Connected before any inbound
// event and Disconnected exactly once after the socket dies.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Upgrade failed", "error", err)
		return
	}

	c := &client{
		id:     domain.SessionID(uuid.NewString()),
		socket: socket,
		send:   make(chan []byte, h.sendBuffer),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	h.handler.Connected(c.id)

	go c.write()
	c.read(h)
}

// Send delivers one event to one session. It never blocks: a full
// send buffer drops the frame and reports the failure to the caller,
// who logs and moves on.
func (h *Hub) Send(id domain.SessionID, event string, payload any) error {
	h.mu.RLock()
	c, ok := h.clients[id]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("session %s not connected", id)
	}
	return c.enqueue(frame{Event: event, Data: marshal(payload)})
}

// ConnectionCount reports currently open sockets.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	if ok {
		delete(h.clients, c.id)
	}
	h.mu.Unlock()

	if ok {
		c.shutdown()
		h.handler.Disconnected(c.id)
	}
}

func marshal(payload any) json.RawMessage {
	data, err := json.Marshal(payload)
	if err != nil {
		// Payloads are our own structs; a marshal failure is a bug,
		// but the frame still goes out well-formed.
		return json.RawMessage("null")
	}
	return data
}
