package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"wsgate/internal/access"
	"wsgate/internal/dispatch"
)

func newDispatcher(t *testing.T, gate *access.Gate) *dispatch.Dispatcher {
	t.Helper()
	reg := dispatch.NewRegistry()
	if err := reg.AddModule(New()); err != nil {
		t.Fatalf("AddModule() error = %v", err)
	}
	var chain *dispatch.Chain
	if gate != nil {
		chain = dispatch.NewChain(dispatch.WithAuth(gate))
	}
	return dispatch.New(dispatch.Config{Registry: reg, Chain: chain})
}

func TestHealthAnswersOK(t *testing.T) {
	d := newDispatcher(t, access.NewGate(nil, access.LevelPublic, nil))

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if got, want := rec.Code, http.StatusOK; got != want {
		t.Errorf("status = %d, want %d", got, want)
	}
	if got, want := rec.Body.String(), `{"status":"ok"}`; got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestStatusRequiresAdmin(t *testing.T) {
	d := newDispatcher(t, access.NewGate(nil, access.LevelPublic, nil))

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if got, want := rec.Code, http.StatusForbidden; got != want {
		t.Errorf("status = %d, want %d", got, want)
	}
	if got, want := rec.Body.String(), `{"message":"Forbidden."}`; got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestStatusReportsSessions(t *testing.T) {
	admin := access.DeriverFunc(func(*http.Request) (access.Level, bool) {
		return access.LevelAdmin, true
	})
	d := newDispatcher(t, access.NewGate(admin, access.LevelPublic, nil))

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if got, want := rec.Code, http.StatusOK; got != want {
		t.Fatalf("status = %d, want %d", got, want)
	}
	var payload struct {
		Status    string `json:"status"`
		Sessions  int    `json:"sessions"`
		UptimeSec int64  `json:"uptime_sec"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if got, want := payload.Status, "ok"; got != want {
		t.Errorf("status field = %q, want %q", got, want)
	}
	if got, want := payload.Sessions, 0; got != want {
		t.Errorf("sessions = %d, want %d", got, want)
	}
	if payload.UptimeSec < 0 {
		t.Errorf("uptime_sec = %d, want >= 0", payload.UptimeSec)
	}
}

func TestModuleRoutes(t *testing.T) {
	m := New()
	if got, want := m.Name(), "health"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
	if got, want := len(m.Routes()), 2; got != want {
		t.Errorf("Routes() returned %d routes, want %d", got, want)
	}
}
