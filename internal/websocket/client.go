package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when sending to a closed or backed-up client.
var ErrClientClosed = errors.New("client is closed")

const (
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	// pingInterval must be shorter than pongTimeout or the read deadline
	// expires between pings.
	pingInterval = 54 * time.Second

	// Clients are listen-only, so inbound frames are tiny.
	readLimit = 512

	outboxSize = 256
)

// Client wraps a single browser connection. Events are queued on a buffered
// channel and written by WritePump; a full queue means the peer is too slow
// and the event is dropped.
type Client struct {
	id          string
	workspaceID int32
	conn        *websocket.Conn
	hub         *Hub
	outbox      chan []byte

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, workspaceID int32, hub *Hub) *Client {
	return &Client{
		id:          uuid.New().String(),
		workspaceID: workspaceID,
		conn:        conn,
		hub:         hub,
		outbox:      make(chan []byte, outboxSize),
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() string { return c.id }

// WorkspaceID returns the workspace this client is subscribed to
func (c *Client) WorkspaceID() int32 { return c.workspaceID }

// Send queues data for delivery. It never blocks: a closed client or a full
// outbox returns ErrClientClosed and the data is dropped.
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.outbox <- data:
		return nil
	default:
		return ErrClientClosed
	}
}

// Close tears the connection down. Idempotent; ReadPump and WritePump both
// call it on exit.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.outbox)
		c.mu.Unlock()

		err = c.conn.Close()
	})
	return err
}

// ReadPump consumes the peer's frames until the connection drops. Any
// payload the peer sends is discarded; the read loop exists to service
// pong frames and detect disconnects. Run in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Int32("workspace_id", c.workspaceID).
					Msg("WebSocket unexpected close")
			}
			return
		}
	}
}

// WritePump drains the outbox onto the wire and keeps the connection alive
// with periodic pings. Run in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data, ok := <-c.outbox:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Int32("workspace_id", c.workspaceID).
					Msg("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
