package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	// Pings must land before the peer's read deadline expires.
	pingInterval = (pongTimeout * 9) / 10
	sendBuffer   = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers connect from the app origin served elsewhere in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn is the slice of *websocket.Conn the write pump needs.
type wsConn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one availability subscriber.
type Client struct {
	hub       *Hub
	conn      conn
	send      chan AvailabilityEvent
	pingEvery time.Duration
}

// HandleSubscribe upgrades the request and starts the client pumps.
func (h *Hub) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	socket, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:  h,
		conn: socket,
		send: make(chan AvailabilityEvent, sendBuffer),
	}
	h.add(client)

	go client.writePump(socket)
	go client.readPump(socket)
}

// writePump drains the send queue onto the wire and keeps the connection
// alive with periodic pings so idle subscribers survive the read deadline.
func (c *Client) writePump(socket wsConn) {
	interval := c.pingEvery
	if interval <= 0 {
		interval = pingInterval
	}
	ticker := time.NewTicker(interval)
	defer func() {
		ticker.Stop()
		socket.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			socket.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// queue closed by the hub
				_ = socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := socket.WriteJSON(event); err != nil {
				c.hub.remove(c)
				return
			}
		case <-ticker.C:
			socket.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.remove(c)
				return
			}
		}
	}
}

// readPump discards inbound frames and unregisters on close.
func (c *Client) readPump(socket *websocket.Conn) {
	socket.SetReadLimit(512)
	socket.SetReadDeadline(time.Now().Add(pongTimeout))
	socket.SetPongHandler(func(string) error {
		socket.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})

	for {
		if _, _, err := socket.ReadMessage(); err != nil {
			c.hub.remove(c)
			return
		}
	}
}
