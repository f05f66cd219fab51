package session

import (
	"context"
	"sync/atomic"
	"time"
)

// StartSweep runs the idle and offline sweeps until ctx is done.
func (m *Manager) StartSweep(ctx context.Context) {
	go m.sweepLoop(ctx)
}

func (m *Manager) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(m.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.kickIdle()
			m.gc()
		}
	}
}

func (m *Manager) kickIdle() {
	if m.opts.IdleTimeout <= 0 {
		return
	}

	now := time.Now()
	var stale []int64
	m.mu.RLock()
	for id, s := range m.sessions {
		if s.State == StateOnline && now.Sub(s.LastSeen) > m.opts.IdleTimeout {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range stale {
		atomic.AddUint64(&m.idleKicked, 1)
		_ = m.Kick(id, "idle timeout")
	}
}

func (m *Manager) gc() {
	if m.opts.OfflineLinger <= 0 {
		return
	}

	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.sessions {
		if s.State == StateOffline && now.Sub(s.LastSeen) > m.opts.OfflineLinger {
			delete(m.sessions, id)
			atomic.AddUint64(&m.swept, 1)
		}
	}
}

// SweepStats returns and resets the sweep counters.
func (m *Manager) SweepStats() (idleKicked, swept uint64) {
	return atomic.SwapUint64(&m.idleKicked, 0), atomic.SwapUint64(&m.swept, 0)
}
