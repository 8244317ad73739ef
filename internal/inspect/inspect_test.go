package inspect

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/internal/demo"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/telemetry"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(telemetry.WithRegistry(reg))
	rt := reactive.NewRuntime(reactive.WithObserver(metrics))
	app, err := demo.NewApp(rt, config.DemoConfig{InitialLength: 3}, metrics)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(app.Dispose)
	return New(app, reg, WithNodeGauge(metrics))
}

func serve(s *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := serve(s, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("GET /healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestSnapshot(t *testing.T) {
	s := newTestServer(t)
	rec := serve(s, http.MethodGet, "/debug/demo")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /debug/demo = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var snap demo.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.ListIDs) != 3 {
		t.Errorf("ListIDs = %v, want 3 ids", snap.ListIDs)
	}
	if len(snap.Actions) == 0 {
		t.Error("no actions listed")
	}
}

func TestAction(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		target string
		status int
		check  func(t *testing.T, body string)
	}{
		{
			name:   "add counter",
			target: "/debug/demo/list.add",
			status: http.StatusOK,
			check: func(t *testing.T, body string) {
				var snap demo.Snapshot
				if err := json.Unmarshal([]byte(body), &snap); err != nil {
					t.Fatal(err)
				}
				if len(snap.ListIDs) != 4 {
					t.Errorf("ListIDs = %v, want 4 ids", snap.ListIDs)
				}
			},
		},
		{
			name:   "text argument",
			target: "/debug/demo/controlled.input?arg=Ferris",
			status: http.StatusOK,
			check: func(t *testing.T, body string) {
				if !strings.Contains(body, "Name is: Ferris") {
					t.Errorf("body does not show the new name: %s", body)
				}
			},
		},
		{
			name:   "unknown action",
			target: "/debug/demo/nope",
			status: http.StatusNotFound,
		},
		{
			name:   "bad argument",
			target: "/debug/demo/list.remove?arg=x",
			status: http.StatusUnprocessableEntity,
			check: func(t *testing.T, body string) {
				var e actionError
				if err := json.Unmarshal([]byte(body), &e); err != nil {
					t.Fatal(err)
				}
				if !strings.Contains(e.Error, "not an integer") {
					t.Errorf("error = %q", e.Error)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, http.MethodPost, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("POST %s = %d, want %d: %s", tt.target, rec.Code, tt.status, rec.Body.String())
			}
			if tt.check != nil {
				tt.check(t, rec.Body.String())
			}
		})
	}
}

func TestActionRequiresPost(t *testing.T) {
	s := newTestServer(t)
	rec := serve(s, http.MethodGet, "/debug/demo/counter.click")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET action = %d, want 405", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t)
	serve(s, http.MethodPost, "/debug/demo/counter.click")

	rec := serve(s, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{
		"reactor_flushes_total",
		"reactor_node_runs_total",
		"reactor_patches_total",
		"reactor_live_nodes",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics do not contain %s", name)
		}
	}
}
