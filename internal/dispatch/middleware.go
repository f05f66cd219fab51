// internal/dispatch/middleware.go
package dispatch

import (
	"net/http"

	"wsgate/internal/access"
)

// Middleware inspects an exchange before its handler runs. Returning
// false rejects the exchange; no later link and no handler runs.
type Middleware func(c *Context) bool

// Chain runs its links in registration order.
type Chain struct {
	links []Middleware
}

func NewChain(links ...Middleware) *Chain {
	return &Chain{links: links}
}

// Use appends a link. Call before serving starts.
func (ch *Chain) Use(m Middleware) {
	ch.links = append(ch.links, m)
}

// Run reports whether every link accepted. An empty or nil chain
// accepts everything.
func (ch *Chain) Run(c *Context) bool {
	if ch == nil {
		return true
	}
	for _, link := range ch.links {
		if !link(c) {
			return false
		}
	}
	return true
}

// WithAuth adapts the gate into a chain link, usually the first one.
// It records the derived level on the context either way so later
// links and the rejection log see it.
func WithAuth(gate *access.Gate) Middleware {
	return func(c *Context) bool {
		d := gate.Check(c.Request(), c.RequiredLevel())
		c.CallerLevel = d.Caller
		if !d.Allowed {
			c.DenyReason = d.Reason
			return false
		}
		return true
	}
}

// WithIdentity records who the caller is without ever rejecting.
// Lookup failures just leave the identity empty.
func WithIdentity(lookup func(r *http.Request) (string, bool)) Middleware {
	return func(c *Context) bool {
		if id, ok := lookup(c.Request()); ok {
			c.Identity = id
		}
		return true
	}
}
