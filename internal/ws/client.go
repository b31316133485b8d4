package ws

import (
	"sync"
	"time"

	"talant-web/internal/domain/listing"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
	sendBuffer     = 32
)

// Client is one WebSocket connection and its search session.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	kind    listing.Kind
	send    chan []byte
	session *Session
	logger  *zap.Logger

	closeOnce sync.Once
	mu        sync.Mutex
	closed    bool
}

func newClient(hub *Hub, conn *websocket.Conn, kind listing.Kind, logger *zap.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		kind:   kind,
		send:   make(chan []byte, sendBuffer),
		logger: logger,
	}
}

// trySend queues a message without blocking. It reports false when the
// client is closed or too slow to keep up.
func (c *Client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
	})
}

func (c *Client) listingReloaded() {
	if c.session != nil {
		go c.session.Reload()
	}
}

func (c *Client) readPump() {
	defer func() {
		if c.session != nil {
			c.session.Close()
		}
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("WS read error", zap.Error(err))
			}
			return
		}
		if c.session != nil {
			c.session.HandleMessage(data)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
