// internal/session/session.go
package session

import (
	"time"

	"wsgate/internal/access"
	"wsgate/internal/transport"
)

type State int

const (
	StateOnline  State = iota
	StateOffline       // peer gone, lingering until swept
	StateClosed        // kicked or shut down
)

func (s State) String() string {
	switch s {
	case StateOnline:
		return "online"
	case StateOffline:
		return "offline"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is the manager-side record of one persistent connection.
// ID and timestamps are assigned by Manager.Add; State and LastSeen
// are owned by the manager afterwards, everything else is immutable.
type Session struct {
	ID       int64
	TraceID  string
	Path     string
	Identity string
	Level    access.Level

	Conn transport.Conn

	State       State
	ConnectedAt time.Time
	LastSeen    time.Time
}

// Close tears the connection down. The owning handler's read loop
// returns with an error and the dispatcher finalizes the session.
func (s *Session) Close() error {
	if s.Conn == nil {
		return nil
	}
	return s.Conn.Close()
}
