package websocket

import (
	"net/http"
	"sync"
	"time"

	"coinmate/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 5 / 6
	sendBuffer   = 16
	maxFrameSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is one change-feed session of a user. The server only writes to
// the socket; inbound frames are drained so pongs and closes are seen.
type Client struct {
	userID string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	once   sync.Once
}

// ServeWS upgrades the request and blocks until the session ends.
func ServeWS(w http.ResponseWriter, r *http.Request, hub *Hub, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("websocket upgrade failed: %v", err)
		return
	}
	c := &Client{
		userID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	hub.Register(userID, c)
	logger.WithField("user_id", userID).Debugf("change feed opened (%d sessions)", hub.Connected(userID))
	go c.forward()
	c.drain()
}

func (c *Client) detach() {
	c.once.Do(func() {
		c.hub.Unregister(c.userID, c)
		_ = c.conn.Close()
	})
}

func (c *Client) drain() {
	defer c.detach()
	c.conn.SetReadLimit(maxFrameSize)
	extend := func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) }
	_ = extend("")
	c.conn.SetPongHandler(extend)
	for {
		_, _, err := c.conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
			logger.WithField("user_id", c.userID).Debugf("change feed closed: %v", err)
		}
		return
	}
}

func (c *Client) forward() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.detach()
	}()
	for {
		var err error
		select {
		case payload, ok := <-c.send:
			if !ok {
				_ = c.write(websocket.CloseMessage, nil)
				return
			}
			err = c.write(websocket.TextMessage, payload)
		case <-ticker.C:
			err = c.write(websocket.PingMessage, nil)
		}
		if err != nil {
			return
		}
	}
}

func (c *Client) write(kind int, payload []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(kind, payload)
}
