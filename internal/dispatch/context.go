// internal/dispatch/context.go
package dispatch

import (
	"net/http"

	"go.uber.org/zap"

	"wsgate/internal/access"
	"wsgate/internal/response"
	"wsgate/internal/session"
)

// Capabilities exposes the dispatcher's collaborators to handlers and
// middleware without handing over the dispatcher itself.
type Capabilities interface {
	Logger() *zap.Logger
	Gate() *access.Gate
	Sessions() *session.Manager
}

// Context carries one exchange through the pipeline. The required
// level and the raw exchange are fixed at construction; middleware
// communicates through the exported fields.
type Context struct {
	TraceID string

	// CallerLevel and Identity are set by the auth links; handlers
	// read them after the chain has accepted.
	CallerLevel access.Level
	Identity    string

	// DenyReason is set by whichever link rejected the exchange.
	DenyReason string

	required   access.Level
	persistent bool
	w          http.ResponseWriter
	r          *http.Request
	caps       Capabilities
	sess       *session.Session
}

func (c *Context) Request() *http.Request { return c.r }

func (c *Context) RequiredLevel() access.Level { return c.required }

func (c *Context) Caps() Capabilities { return c.caps }

func (c *Context) Logger() *zap.Logger { return c.caps.Logger() }

// Persistent reports whether the resolved route upgrades the exchange.
func (c *Context) Persistent() bool { return c.persistent }

// Session returns the session created at upgrade, nil before that and
// on request/response exchanges.
func (c *Context) Session() *session.Session { return c.sess }

// JSON builds a terminal response for request handlers to return.
func (c *Context) JSON(payload map[string]any, status int) *response.Response {
	return response.JSON(payload, status)
}
