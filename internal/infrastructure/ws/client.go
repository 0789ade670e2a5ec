package ws

import (
	"sync"
	"time"

	"github.com/devmeet/devmeet/internal/infrastructure/metrics"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024 * 1024
)

type Client struct {
	conn      *connWrapper
	Message   chan *Envelope
	ID        string
	closeOnce sync.Once

	mu     sync.RWMutex
	closed bool
}

func NewClient(conn *websocket.Conn, id string) *Client {
	return &Client{
		conn:    newConnWrapper(conn),
		Message: make(chan *Envelope, 64), // buffered to avoid dead-locks on slow clients
		ID:      id,
	}
}

// trySend queues an envelope without ever blocking the caller. A client
// whose buffer is full loses the event (at-most-once delivery), and a
// client already torn down drops everything; broadcasts can race the
// disconnect.
func (c *Client) trySend(env *Envelope) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		metrics.DroppedDeliveriesTotal.Inc()
		return
	}

	select {
	case c.Message <- env:
	default:
		metrics.DroppedDeliveriesTotal.Inc()
	}
}

// closeMessages marks the client dead and closes the write pump's feed.
func (c *Client) closeMessages() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	close(c.Message)
}

func (c *Client) ReadPump(g *Gateway) {
	defer func() {
		g.Disconnect(c)
		_ = c.conn.Close()
	}()

	c.conn.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.conn.SetPongHandler(func(string) error {
		return c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				g.logger.Debugf("ws read error (client %s): %v", c.ID, err)
			}
			break
		}

		g.Dispatch(c, raw)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.Message:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
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
