// Package events publishes session lifecycle events so other services
// can react to connections coming and going.
package events

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Type string

const (
	TypeConnected Type = "connected"
	TypeClosed    Type = "closed"
	TypeKicked    Type = "kicked"
)

type Event struct {
	Type       Type      `json:"type"`
	SessionID  int64     `json:"session_id"`
	TraceID    string    `json:"trace_id"`
	Path       string    `json:"path"`
	Identity   string    `json:"identity,omitempty"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, ev *Event) error
}

// NopPublisher drops every event, for deployments without a broker.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *Event) error { return nil }

// CallbackPublisher hands events to a callback, for testing.
type CallbackPublisher struct {
	callback func(ctx context.Context, ev *Event) error
}

func NewCallbackPublisher(cb func(ctx context.Context, ev *Event) error) *CallbackPublisher {
	return &CallbackPublisher{callback: cb}
}

func (p *CallbackPublisher) Publish(ctx context.Context, ev *Event) error {
	return p.callback(ctx, ev)
}

// LogPublisher writes events to the log only.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, ev *Event) error {
	p.logger.Info("session event",
		zap.String("event", string(ev.Type)),
		zap.Int64("session", ev.SessionID),
		zap.String("trace_id", ev.TraceID),
		zap.String("path", ev.Path),
		zap.String("identity", ev.Identity),
	)
	return nil
}
