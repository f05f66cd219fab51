package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// DefaultSubjectPrefix is where session events land unless overridden;
// the event type is appended, e.g. "gateway.session.connected".
const DefaultSubjectPrefix = "gateway.session"

// Connect dials the broker with reconnect handling wired to the logger.
func Connect(url, name string, logger *zap.Logger) (*nats.Conn, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(60),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("broker disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("broker reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			logger.Info("broker connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return nc, nil
}

// NatsPublisher publishes events as JSON to a per-type subject.
type NatsPublisher struct {
	nc            *nats.Conn
	subjectPrefix string
	logger        *zap.Logger
}

func NewNatsPublisher(nc *nats.Conn, subjectPrefix string, logger *zap.Logger) *NatsPublisher {
	if subjectPrefix == "" {
		subjectPrefix = DefaultSubjectPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NatsPublisher{nc: nc, subjectPrefix: subjectPrefix, logger: logger}
}

func (p *NatsPublisher) Subject(t Type) string {
	return p.subjectPrefix + "." + string(t)
}

func (p *NatsPublisher) Publish(_ context.Context, ev *Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	subject := p.Subject(ev.Type)
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Error("publish event failed",
			zap.String("subject", subject),
			zap.Error(err),
		)
		return err
	}
	return nil
}
