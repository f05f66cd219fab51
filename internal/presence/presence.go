// Package presence records which identities currently hold a live
// connection, so operators and other services can look them up.
package presence

import (
	"context"
	"time"
)

// Record describes one online identity.
type Record struct {
	SessionID   int64     `json:"session_id"`
	Path        string    `json:"path"`
	RemoteAddr  string    `json:"remote_addr"`
	ConnectedAt time.Time `json:"connected_at"`
}

// Store implementations must treat an empty identity as a no-op:
// anonymous sessions carry no presence.
type Store interface {
	SetOnline(ctx context.Context, identity string, rec Record) error
	SetOffline(ctx context.Context, identity string) error
	Lookup(ctx context.Context, identity string) (Record, bool, error)
}

func presenceKey(identity string) string {
	return "presence:" + identity + ":session"
}
