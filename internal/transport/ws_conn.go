package transport

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds a single frame write, control frames included.
const writeWait = 10 * time.Second

// WSConn adapts a gorilla websocket connection to the Conn interface.
// Writes are serialized with a mutex; gorilla permits one concurrent
// reader and one concurrent writer only.
type WSConn struct {
	conn     *websocket.Conn
	pongWait time.Duration

	writeMu sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
}

// NewWSConn wraps an upgraded connection. With pongWait > 0 the read side
// arms a deadline refreshed by pongs, and with pingInterval > 0 a ping loop
// keeps the peer answering; a peer that stops ponging fails the next read.
func NewWSConn(conn *websocket.Conn, readLimit int64, pongWait, pingInterval time.Duration) *WSConn {
	c := &WSConn{
		conn:     conn,
		pongWait: pongWait,
		done:     make(chan struct{}),
	}
	if readLimit > 0 {
		conn.SetReadLimit(readLimit)
	}
	if pongWait > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
	}
	if pingInterval > 0 {
		go c.pingLoop(pingInterval)
	}
	return c
}

func (c *WSConn) ReadEnvelope() (*Envelope, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return DecodeEnvelope(data)
}

func (c *WSConn) WriteEnvelope(env *Envelope) error {
	data, err := EncodeEnvelope(env)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close sends a close frame on a best-effort basis and tears the
// connection down. Any blocked read returns with an error.
func (c *WSConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

func (c *WSConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

func (c *WSConn) pingLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
