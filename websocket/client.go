package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"collabo/messaging"
	"collabo/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	// Inbound payloads are {receiverId, text}; 4KB leaves ample room.
	maxMessageSize = 4096
	sendBufferSize = 256
)

// ErrClientGone is returned by Send once the connection is closing or
// its outbound buffer is full.
var ErrClientGone = errors.New("client connection gone")

// envelope frames every outbound websocket payload.
type envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// client is one live duplex connection. One reader goroutine and one
// writer goroutine per connection; inbound payloads are handed to the
// router synchronously, which serializes per-connection message order.
type client struct {
	conn   *websocket.Conn
	userID string
	server *Server
	send   chan envelope
	done   chan struct{}
	once   sync.Once
	log    zerolog.Logger
}

func newClient(server *Server, conn *websocket.Conn, userID string) *client {
	return &client{
		conn:   conn,
		userID: userID,
		server: server,
		send:   make(chan envelope, sendBufferSize),
		done:   make(chan struct{}),
		log:    server.log.With().Str("user", userID).Logger(),
	}
}

// Send queues a message for the connection. It never blocks: a closing
// connection or a full buffer fails fast and the caller treats it as a
// delivery failure.
func (c *client) Send(msg models.Message) error {
	env := envelope{Type: "message", Payload: msg}
	select {
	case <-c.done:
		return ErrClientGone
	case c.send <- env:
		return nil
	default:
		return ErrClientGone
	}
}

// Close tears the connection down. Safe to call from any goroutine and
// more than once.
func (c *client) Close() error {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
	return nil
}

// enqueue is like Send but for protocol frames (errors, welcome);
// failures are ignored since the connection is on its way out anyway.
func (c *client) enqueue(env envelope) {
	select {
	case <-c.done:
	case c.send <- env:
	default:
	}
}

// readPump blocks on one payload at a time and hands each to the
// router before reading the next. Exit always unregisters the client
// and releases the connection, whatever the exit path.
func (c *client) readPump() {
	defer func() {
		c.server.registry.Unregister(c.userID, c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}

		var payload messaging.Payload
		if err := json.Unmarshal(raw, &payload); err != nil {
			c.enqueue(errorEnvelope("Malformed message payload", "UNPROCESSABLE"))
			continue
		}

		// The context is deliberately detached from the connection:
		// an in-flight persist for the last received message is
		// allowed to finish even while the socket is closing.
		_, err = c.server.router.Send(context.Background(), c.userID, payload)
		switch {
		case errors.Is(err, messaging.ErrInvalidPayload):
			c.enqueue(errorEnvelope("Message needs a receiverId and a non-empty text", "UNPROCESSABLE"))
		case err != nil:
			c.log.Error().Err(err).Msg("message persistence failed")
			c.enqueue(errorEnvelope("Message could not be stored, try again", "INTERNAL"))
		}
	}
}

// writePump drains the send queue onto the wire and keeps the
// connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case env := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
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

func errorEnvelope(message, code string) envelope {
	return envelope{Type: "error", Payload: map[string]string{
		"error": message,
		"code":  code,
	}}
}
