package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10 // must stay below pongWait

	// Inbound frames are only control traffic
	maxMessageSize = 512

	sendBuffer = 256
)

// Client is one member's live connection to a workspace feed
type Client struct {
	id          string
	workspaceID string
	userID      string
	connectedAt time.Time

	conn   *websocket.Conn
	hub    *Hub
	send   chan []byte
	logger zerolog.Logger

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewClient binds an upgraded connection to the workspace the user was authorized for
func NewClient(conn *websocket.Conn, workspaceID, userID string, hub *Hub) *Client {
	id := uuid.New().String()
	return &Client{
		id:          id,
		workspaceID: workspaceID,
		userID:      userID,
		connectedAt: time.Now(),
		conn:        conn,
		hub:         hub,
		send:        make(chan []byte, sendBuffer),
		logger: log.With().
			Str("client_id", id).
			Str("workspace_id", workspaceID).
			Str("user_id", userID).
			Logger(),
	}
}

func (c *Client) ID() string          { return c.id }
func (c *Client) WorkspaceID() string { return c.workspaceID }
func (c *Client) UserID() string      { return c.userID }

// Send queues an event for the write pump. A full buffer means the member's
// connection cannot keep up and is treated as closed.
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn().Int("buffered", len(c.send)).Msg("WebSocket send buffer full")
		return ErrClientClosed
	}
}

// Close stops accepting events. The write pump flushes what is already
// queued, sends a close frame and releases the connection.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
	})
	return nil
}

func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// ReadPump keeps the read deadline alive and detects disconnects. Run it in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
		c.logger.Info().
			Dur("connected_for", time.Since(c.connectedAt)).
			Msg("WebSocket client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("WebSocket unexpected close")
			}
			return
		}
		// server-push only; inbound frames are dropped
	}
}

// WritePump drains queued workspace events and sends keepalive pings. Run it in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// closed by the hub
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn().Err(err).Msg("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug().Err(err).Msg("WebSocket ping failed")
				return
			}
		}
	}
}
