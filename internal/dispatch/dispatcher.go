// internal/dispatch/dispatcher.go
package dispatch

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wsgate/internal/access"
	"wsgate/internal/events"
	"wsgate/internal/presence"
	"wsgate/internal/response"
	"wsgate/internal/session"
	"wsgate/internal/transport"
)

// Upgrader performs the protocol handshake for socket routes. On
// failure it has already written the handshake error to the client.
type Upgrader interface {
	Upgrade(w http.ResponseWriter, r *http.Request) (transport.Conn, error)
}

// finalizeTimeout bounds the presence and event calls made after a
// socket handler returns.
const finalizeTimeout = 3 * time.Second

// Config wires the dispatcher's collaborators. Registry is the only
// required field; the rest fall back to working defaults.
type Config struct {
	Registry *Registry
	Chain    *Chain
	Gate     *access.Gate
	Upgrader Upgrader
	Sessions *session.Manager
	Presence presence.Store
	Events   events.Publisher
	Logger   *zap.Logger

	// RequestTimeout bounds request/response handlers. Zero means no
	// bound; socket handlers are never bounded.
	RequestTimeout time.Duration
	StatsInterval  time.Duration
}

// Dispatcher resolves, gates and invokes. It is the http.Handler for
// the whole listening endpoint.
type Dispatcher struct {
	registry *Registry
	chain    *Chain
	gate     *access.Gate
	upgrader Upgrader
	sessions *session.Manager
	presence presence.Store
	events   events.Publisher
	logger   *zap.Logger

	requestTimeout time.Duration
	statsInterval  time.Duration

	dispatched    uint64
	notFound      uint64
	rejected      uint64
	upgraded      uint64
	upgradeFailed uint64
	timedOut      uint64
}

func New(cfg Config) *Dispatcher {
	if cfg.Registry == nil {
		cfg.Registry = NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewManager(cfg.Logger, session.Options{})
	}
	if cfg.Presence == nil {
		cfg.Presence = presence.NewMemoryStore()
	}
	if cfg.Events == nil {
		cfg.Events = events.NopPublisher{}
	}
	if cfg.Upgrader == nil {
		cfg.Upgrader = transport.NewWSUpgrader(transport.DefaultOptions())
	}
	return &Dispatcher{
		registry:       cfg.Registry,
		chain:          cfg.Chain,
		gate:           cfg.Gate,
		upgrader:       cfg.Upgrader,
		sessions:       cfg.Sessions,
		presence:       cfg.Presence,
		events:         cfg.Events,
		logger:         cfg.Logger,
		requestTimeout: cfg.RequestTimeout,
		statsInterval:  cfg.StatsInterval,
	}
}

func (d *Dispatcher) Logger() *zap.Logger { return d.logger }

func (d *Dispatcher) Gate() *access.Gate { return d.gate }

func (d *Dispatcher) Sessions() *session.Manager { return d.sessions }

func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddUint64(&d.dispatched, 1)

	rt, ok := d.registry.Resolve(r.URL.Path)
	if !ok {
		atomic.AddUint64(&d.notFound, 1)
		d.logger.Info("route not found",
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
		)
		d.write(w, response.NotFound())
		return
	}

	c := d.newContext(w, r, rt)

	if !d.chain.Run(c) {
		atomic.AddUint64(&d.rejected, 1)
		d.logger.Info("exchange rejected", contextFields(c)...)
		d.write(w, response.Forbidden())
		return
	}

	switch route := rt.(type) {
	case RequestRoute:
		d.serveRequest(c, route)
	case SocketRoute:
		d.serveSocket(c, route)
	}
}

func (d *Dispatcher) newContext(w http.ResponseWriter, r *http.Request, rt Route) *Context {
	_, isSocket := rt.(SocketRoute)
	return &Context{
		TraceID:    uuid.NewString(),
		required:   routeLevel(rt),
		persistent: isSocket,
		w:          w,
		r:          r,
		caps:       d,
	}
}

func (d *Dispatcher) serveRequest(c *Context, rt RequestRoute) {
	if d.requestTimeout <= 0 {
		d.write(c.w, rt.Handler.Handle(c))
		return
	}

	ctx, cancel := context.WithTimeout(c.r.Context(), d.requestTimeout)
	defer cancel()
	c.r = c.r.WithContext(ctx)

	done := make(chan *response.Response, 1)
	panicked := make(chan any, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				panicked <- p
			}
		}()
		done <- rt.Handler.Handle(c)
	}()

	select {
	case resp := <-done:
		d.write(c.w, resp)
	case p := <-panicked:
		// re-raise on the serving goroutine so net/http aborts only
		// this connection, same as with the timeout off
		panic(p)
	case <-ctx.Done():
		atomic.AddUint64(&d.timedOut, 1)
		d.logger.Warn("request handler timed out",
			zap.String("path", rt.Path),
			zap.String("trace_id", c.TraceID),
			zap.Duration("timeout", d.requestTimeout),
		)
		d.write(c.w, response.Timeout())
	}
}

func (d *Dispatcher) serveSocket(c *Context, rt SocketRoute) {
	conn, err := d.upgrader.Upgrade(c.w, c.r)
	if err != nil {
		atomic.AddUint64(&d.upgradeFailed, 1)
		d.logger.Error("upgrade failed",
			zap.String("path", rt.Path),
			zap.String("trace_id", c.TraceID),
			zap.String("remote", c.r.RemoteAddr),
			zap.Error(err),
		)
		// the upgrader has already answered the handshake
		rt.Handler.OnUpgradeFailed()
		return
	}

	s := &session.Session{
		TraceID:  c.TraceID,
		Path:     rt.Path,
		Identity: c.Identity,
		Level:    c.CallerLevel,
		Conn:     conn,
	}
	d.sessions.Add(s)
	c.sess = s

	atomic.AddUint64(&d.upgraded, 1)
	d.logger.Info("connection upgraded",
		zap.String("path", rt.Path),
		zap.String("trace_id", c.TraceID),
		zap.Int64("session", s.ID),
		zap.String("identity", s.Identity),
		zap.String("remote", conn.RemoteAddr()),
	)
	rt.Handler.OnUpgradeSuccess()

	d.markOnline(s)
	d.publish(events.TypeConnected, s)

	go d.runSocket(c, rt, s)
}

// runSocket gives the handler the connection for its whole lifetime,
// then retires the session no matter how the handler returned.
func (d *Dispatcher) runSocket(c *Context, rt SocketRoute, s *session.Session) {
	defer d.finalize(s)
	rt.Handler.HandleConn(c)
}

func (d *Dispatcher) finalize(s *session.Session) {
	_ = s.Close()

	evType := events.TypeClosed
	if st, ok := d.sessions.StateOf(s.ID); ok && st == session.StateClosed {
		evType = events.TypeKicked
	}
	d.sessions.Release(s.ID)

	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()
	if err := d.presence.SetOffline(ctx, s.Identity); err != nil {
		d.logger.Warn("presence offline failed",
			zap.Int64("session", s.ID),
			zap.Error(err),
		)
	}

	d.publish(evType, s)
	d.logger.Info("connection closed",
		zap.String("path", s.Path),
		zap.String("trace_id", s.TraceID),
		zap.Int64("session", s.ID),
		zap.String("event", string(evType)),
	)
}

func (d *Dispatcher) markOnline(s *session.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	err := d.presence.SetOnline(ctx, s.Identity, presence.Record{
		SessionID:   s.ID,
		Path:        s.Path,
		RemoteAddr:  s.Conn.RemoteAddr(),
		ConnectedAt: s.ConnectedAt,
	})
	if err != nil {
		d.logger.Warn("presence online failed",
			zap.Int64("session", s.ID),
			zap.Error(err),
		)
	}
}

func (d *Dispatcher) publish(t events.Type, s *session.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	ev := &events.Event{
		Type:       t,
		SessionID:  s.ID,
		TraceID:    s.TraceID,
		Path:       s.Path,
		Identity:   s.Identity,
		RemoteAddr: s.Conn.RemoteAddr(),
		Timestamp:  time.Now(),
	}
	if err := d.events.Publish(ctx, ev); err != nil {
		d.logger.Warn("publish session event failed",
			zap.Int64("session", s.ID),
			zap.String("event", string(t)),
			zap.Error(err),
		)
	}
}

func (d *Dispatcher) write(w http.ResponseWriter, resp *response.Response) {
	if resp == nil {
		d.logger.Warn("handler returned no response")
		return
	}
	if err := resp.Write(w); err != nil {
		d.logger.Warn("write response failed", zap.Error(err))
	}
}
