// internal/session/manager.go
package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("session not found")

// Options tune the sweep behavior.
type Options struct {
	// IdleTimeout kicks online sessions not touched within it.
	// Zero means the 30s default; negative disables idle kicks.
	IdleTimeout time.Duration
	// OfflineLinger keeps released sessions visible before the sweep
	// removes them. Zero or negative releases remove immediately.
	OfflineLinger time.Duration
	// SweepInterval is the period of the sweep loop. Zero means the
	// one minute default.
	SweepInterval time.Duration
}

const (
	defaultIdleTimeout   = 30 * time.Second
	defaultSweepInterval = time.Minute
)

type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	nextID   int64

	logger *zap.Logger
	opts   Options

	idleKicked uint64
	swept      uint64
}

func NewManager(logger *zap.Logger, opts Options) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}
	if opts.SweepInterval == 0 {
		opts.SweepInterval = defaultSweepInterval
	}
	return &Manager{
		sessions: make(map[int64]*Session),
		logger:   logger,
		opts:     opts,
	}
}

// Add assigns the session an ID, marks it online and indexes it.
func (m *Manager) Add(s *Session) {
	now := time.Now()
	s.ID = atomic.AddInt64(&m.nextID, 1)
	s.State = StateOnline
	s.ConnectedAt = now
	s.LastSeen = now

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

func (m *Manager) Get(id int64) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Touch refreshes the idle clock, typically on each inbound message.
func (m *Manager) Touch(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.sessions[id]; s != nil {
		s.LastSeen = time.Now()
	}
}

// Release retires a session whose handler has returned. Kicked sessions
// and managers without an offline linger remove it at once; otherwise it
// goes offline and the sweep removes it later.
func (m *Manager) Release(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.sessions[id]
	if s == nil {
		return
	}
	if s.State == StateClosed || m.opts.OfflineLinger <= 0 {
		delete(m.sessions, id)
		return
	}
	s.State = StateOffline
	s.LastSeen = time.Now()
}

// Kick closes the session's connection. Removal happens when the
// handler observes the closed connection and returns.
func (m *Manager) Kick(id int64, reason string) error {
	m.mu.Lock()
	s := m.sessions[id]
	if s == nil {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	s.State = StateClosed
	m.mu.Unlock()

	m.logger.Warn("session kicked",
		zap.Int64("session", id),
		zap.String("reason", reason),
	)
	_ = s.Close()
	return nil
}

// CloseAll kicks every live session, used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	closing := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if s.State == StateOnline {
			s.State = StateClosed
			closing = append(closing, s)
		}
	}
	m.mu.Unlock()

	for _, s := range closing {
		_ = s.Close()
	}
}

// Online returns the sessions currently holding a live connection.
func (m *Manager) Online() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if s.State == StateOnline {
			items = append(items, s)
		}
	}
	return items
}

// StateOf reports the session's current state.
func (m *Manager) StateOf(id int64) (State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.sessions[id]
	if s == nil {
		return StateClosed, false
	}
	return s.State, true
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
