package transport

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Options tune the websocket handshake and the connections it produces.
type Options struct {
	HandshakeTimeout time.Duration
	ReadLimit        int64
	PongWait         time.Duration
	PingInterval     time.Duration
	// CheckOrigin overrides origin validation. Nil accepts any origin.
	CheckOrigin func(r *http.Request) bool
}

// DefaultOptions returns the tuning used when the caller has no opinion.
func DefaultOptions() Options {
	return Options{
		HandshakeTimeout: 10 * time.Second,
		ReadLimit:        32 * 1024,
		PongWait:         30 * time.Second,
		PingInterval:     10 * time.Second,
	}
}

// WSUpgrader performs the websocket handshake and wraps the result in a
// Conn. On handshake failure gorilla has already written the HTTP error
// response, so callers must not write another.
type WSUpgrader struct {
	opts     Options
	upgrader websocket.Upgrader
}

func NewWSUpgrader(opts Options) *WSUpgrader {
	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &WSUpgrader{
		opts: opts,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: opts.HandshakeTimeout,
			CheckOrigin:      checkOrigin,
		},
	}
}

func (u *WSUpgrader) Upgrade(w http.ResponseWriter, r *http.Request) (Conn, error) {
	conn, err := u.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return NewWSConn(conn, u.opts.ReadLimit, u.opts.PongWait, u.opts.PingInterval), nil
}
