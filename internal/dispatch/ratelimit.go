// internal/dispatch/ratelimit.go
package dispatch

import (
	"net"
	"sync"
	"time"
)

const ReasonRateLimited = "rate-limited"

// pruning kicks in once the client table reaches this many entries.
const rateLimitPruneAt = 1024

type rateWindow struct {
	start    time.Time
	attempts int
}

// WithUpgradeRateLimit caps how many upgrades one client may attempt
// per window. Request/response exchanges pass untouched. Clients are
// keyed by identity when the chain has derived one, remote host
// otherwise. max <= 0 disables the link.
func WithUpgradeRateLimit(max int, window time.Duration) Middleware {
	if max <= 0 {
		return func(*Context) bool { return true }
	}

	var mu sync.Mutex
	clients := make(map[string]*rateWindow)

	return func(c *Context) bool {
		if !c.Persistent() {
			return true
		}

		key := c.Identity
		if key == "" {
			key = clientHost(c.Request().RemoteAddr)
		}

		now := time.Now()
		mu.Lock()
		defer mu.Unlock()

		if len(clients) >= rateLimitPruneAt {
			for k, w := range clients {
				if now.Sub(w.start) > window {
					delete(clients, k)
				}
			}
		}

		w := clients[key]
		if w == nil || now.Sub(w.start) > window {
			w = &rateWindow{start: now}
			clients[key] = w
		}
		w.attempts++
		if w.attempts > max {
			c.DenyReason = ReasonRateLimited
			return false
		}
		return true
	}
}

func clientHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
