package dispatch

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// StartStats reports counters on a ticker until ctx is done. Quiet
// intervals log nothing.
func (d *Dispatcher) StartStats(ctx context.Context) {
	go d.reportStats(ctx)
}

func (d *Dispatcher) reportStats(ctx context.Context) {
	interval := d.statsInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dispatched := atomic.SwapUint64(&d.dispatched, 0)
			notFound := atomic.SwapUint64(&d.notFound, 0)
			rejected := atomic.SwapUint64(&d.rejected, 0)
			upgraded := atomic.SwapUint64(&d.upgraded, 0)
			upgradeFailed := atomic.SwapUint64(&d.upgradeFailed, 0)
			timedOut := atomic.SwapUint64(&d.timedOut, 0)
			idleKicked, swept := d.sessions.SweepStats()

			if dispatched == 0 && notFound == 0 && rejected == 0 &&
				upgraded == 0 && upgradeFailed == 0 && timedOut == 0 &&
				idleKicked == 0 && swept == 0 {
				continue
			}
			d.logger.Info("dispatch stats",
				zap.Uint64("dispatched", dispatched),
				zap.Uint64("not_found", notFound),
				zap.Uint64("rejected", rejected),
				zap.Uint64("upgraded", upgraded),
				zap.Uint64("upgrade_failed", upgradeFailed),
				zap.Uint64("timed_out", timedOut),
				zap.Uint64("idle_kicked", idleKicked),
				zap.Uint64("swept", swept),
				zap.Int("sessions", d.sessions.Count()),
			)
		}
	}
}
