// The read pump parses frames from the socket and hands them to the
// session handler. The write pump drains the client's send channel
// back to the socket. Separating the two avoids head-of-line blocking
// when a client is slow.

package transport

import (
	"encoding/json"
	"fmt"
	"sync"

	"chat-hub/contract"
	"chat-hub/domain"

	"github.com/gorilla/websocket"
)

type client struct {
	id     domain.SessionID
	socket *websocket.Conn
	send   chan []byte

	mu     sync.Mutex
	closed bool
}

func (c *client) read(h *Hub) {
	defer func() {
		h.drop(c)
		_ = c.socket.Close()
	}()

	for {
		_, raw, err := c.socket.ReadMessage()
		if err != nil {
			return
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			h.log.Debug("Malformed frame", "session", c.id, "error", err)
			continue
		}

		in := contract.Inbound{Session: c.id, Name: f.Event, Payload: f.Data}
		if f.AckID != 0 {
			ackID := f.AckID
			in.Ack = func(payload any) {
				reply := frame{Event: "ack", Data: marshal(payload), AckID: ackID}
				if err := c.enqueue(reply); err != nil {
					h.log.Warn("Ack dropped", "session", c.id, "error", err)
				}
			}
		}
		h.handler.Handle(in)
	}
}

func (c *client) write() {
	defer c.socket.Close()

	for message := range c.send {
		if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

// enqueue hands the frame to the write pump without blocking. The
// closed flag keeps a late Send from racing the channel close on
// disconnect.
func (c *client) enqueue(f frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("session %s gone", c.id)
	}
	select {
	case c.send <- data:
		return nil
	default:
		return fmt.Errorf("send buffer full for session %s", c.id)
	}
}

func (c *client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
