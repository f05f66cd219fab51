// internal/dispatch/route.go
package dispatch

import (
	"errors"
	"fmt"
	"sync"

	"wsgate/internal/access"
	"wsgate/internal/response"
)

var (
	ErrDuplicatePath = errors.New("path already registered")
	ErrNilHandler    = errors.New("route handler is nil")
	ErrEmptyPath     = errors.New("route path is empty")
)

// RequestHandler produces the terminal response for one exchange.
// The dispatcher writes the returned response verbatim.
type RequestHandler interface {
	Handle(c *Context) *response.Response
}

type RequestHandlerFunc func(c *Context) *response.Response

func (f RequestHandlerFunc) Handle(c *Context) *response.Response { return f(c) }

// SocketHandler owns an upgraded connection. HandleConn runs on its own
// goroutine and must not return before the handler is done with the
// connection; the dispatcher finalizes the session when it does.
type SocketHandler interface {
	HandleConn(c *Context)
	OnUpgradeSuccess()
	OnUpgradeFailed()
}

// Route is either a RequestRoute or a SocketRoute; the dispatcher
// branches on the concrete type and nothing else implements it.
type Route interface {
	route()
}

// RequestRoute answers one exchange with one terminal response.
type RequestRoute struct {
	Path    string
	Level   access.Level
	Handler RequestHandler
}

func (RequestRoute) route() {}

// SocketRoute upgrades the exchange and hands the connection off.
type SocketRoute struct {
	Path    string
	Level   access.Level
	Handler SocketHandler
}

func (SocketRoute) route() {}

func routePath(rt Route) string {
	switch r := rt.(type) {
	case RequestRoute:
		return r.Path
	case SocketRoute:
		return r.Path
	}
	return ""
}

func routeLevel(rt Route) access.Level {
	switch r := rt.(type) {
	case RequestRoute:
		return r.Level
	case SocketRoute:
		return r.Level
	}
	return 0
}

func routeHandlerNil(rt Route) bool {
	switch r := rt.(type) {
	case RequestRoute:
		return r.Handler == nil
	case SocketRoute:
		return r.Handler == nil
	}
	return true
}

// Registry maps exact paths to routes. Registration happens before
// serving; resolution never mutates.
type Registry struct {
	routes  map[string]Route
	modules map[string]Module
	mu      sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		routes:  make(map[string]Route),
		modules: make(map[string]Module),
	}
}

func (r *Registry) Register(rt Route) error {
	path := routePath(rt)
	if path == "" {
		return ErrEmptyPath
	}
	if routeHandlerNil(rt) {
		return fmt.Errorf("%w: %s", ErrNilHandler, path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.routes[path]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePath, path)
	}
	r.routes[path] = rt
	return nil
}

func (r *Registry) Resolve(path string) (Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.routes[path]
	return rt, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.routes)
}
