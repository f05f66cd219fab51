// internal/modules/chat/chat.go
package chat

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"wsgate/internal/access"
	"wsgate/internal/dispatch"
	"wsgate/internal/session"
	"wsgate/internal/transport"
)

const Path = "/chat"

// Envelope types spoken on a chat connection.
const (
	TypeWelcome = "welcome"
	TypePing    = "ping"
	TypePong    = "pong"
	TypeChat    = "chat"
)

// Module fans every chat message out to all online sessions on its
// path. The session manager is the member list; there is no separate
// room state.
type Module struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Module {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Module{logger: logger}
}

func (m *Module) Name() string { return "chat" }

func (m *Module) Routes() []dispatch.Route {
	return []dispatch.Route{
		dispatch.SocketRoute{
			Path:    Path,
			Level:   access.LevelUser,
			Handler: m,
		},
	}
}

func (m *Module) OnUpgradeSuccess() {
	m.logger.Debug("chat upgrade ok")
}

func (m *Module) OnUpgradeFailed() {
	m.logger.Warn("chat upgrade failed")
}

func (m *Module) HandleConn(c *dispatch.Context) {
	s := c.Session()

	welcome, err := json.Marshal(map[string]any{"session_id": s.ID})
	if err == nil {
		_ = s.Conn.WriteEnvelope(&transport.Envelope{Type: TypeWelcome, Data: welcome})
	}

	for {
		env, err := s.Conn.ReadEnvelope()
		if err != nil {
			return
		}
		c.Caps().Sessions().Touch(s.ID)

		switch env.Type {
		case TypePing:
			_ = s.Conn.WriteEnvelope(&transport.Envelope{Type: TypePong})
		case TypeChat:
			m.broadcast(c, s, env)
		default:
			m.logger.Warn("unknown envelope type",
				zap.String("type", env.Type),
				zap.Int64("session", s.ID),
			)
		}
	}
}

func (m *Module) broadcast(c *dispatch.Context, from *session.Session, env *transport.Envelope) {
	sender := from.Identity
	if sender == "" {
		sender = fmt.Sprintf("session-%d", from.ID)
	}

	body, err := json.Marshal(map[string]any{
		"from": sender,
		"body": env.Data,
	})
	if err != nil {
		m.logger.Warn("encode chat message failed",
			zap.Int64("session", from.ID),
			zap.Error(err),
		)
		return
	}
	out := &transport.Envelope{Type: TypeChat, Data: body}

	for _, peer := range c.Caps().Sessions().Online() {
		if peer.Path != Path {
			continue
		}
		if err := peer.Conn.WriteEnvelope(out); err != nil {
			m.logger.Debug("broadcast write failed",
				zap.Int64("session", peer.ID),
				zap.Error(err),
			)
		}
	}
}

var _ dispatch.SocketHandler = (*Module)(nil)
