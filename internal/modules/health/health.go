// internal/modules/health/health.go
package health

import (
	"net/http"
	"time"

	"wsgate/internal/access"
	"wsgate/internal/dispatch"
	"wsgate/internal/response"
)

type Module struct {
	started time.Time
}

func New() *Module {
	return &Module{started: time.Now()}
}

func (m *Module) Name() string { return "health" }

func (m *Module) Routes() []dispatch.Route {
	return []dispatch.Route{
		dispatch.RequestRoute{
			Path:    "/health",
			Level:   access.LevelPublic,
			Handler: dispatch.RequestHandlerFunc(m.onHealth),
		},
		dispatch.RequestRoute{
			Path:    "/status",
			Level:   access.LevelAdmin,
			Handler: dispatch.RequestHandlerFunc(m.onStatus),
		},
	}
}

func (m *Module) onHealth(c *dispatch.Context) *response.Response {
	return c.JSON(map[string]any{"status": "ok"}, http.StatusOK)
}

func (m *Module) onStatus(c *dispatch.Context) *response.Response {
	return c.JSON(map[string]any{
		"status":     "ok",
		"sessions":   c.Caps().Sessions().Count(),
		"uptime_sec": int64(time.Since(m.started).Seconds()),
	}, http.StatusOK)
}
