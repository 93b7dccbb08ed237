package ws

import (
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	maxMessageSize = 64 * 1024
	readTimeout    = 60 * time.Second
	writeTimeout   = 10 * time.Second
	pingInterval   = 30 * time.Second
	sendBuffer     = 256
)

// Client wraps one websocket connection. Outbound events go through the send
// channel so the write pump is the only goroutine touching the socket for
// writes.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// Send queues an event envelope for delivery. A slow consumer whose buffer
// is full loses the event rather than blocking the relay.
func (c *Client) Send(event string, data interface{}) {
	b, err := json.Marshal(Envelope{Event: event, Data: mustRaw(data)})
	if err != nil {
		return
	}
	select {
	case c.send <- b:
	case <-c.done:
	default:
		// drop when the buffer is full
	}
}

// Close stops the write pump. Safe to call once, from the read loop's defer.
func (c *Client) Close() {
	close(c.done)
}

// WritePump drains the send channel onto the socket and keeps the
// connection alive with pings. It owns all writes.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(time.Second)); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
			return
		}
	}
}

func mustRaw(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}
