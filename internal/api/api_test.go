package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tutu-network/countdown/internal/app/countdown"
	"github.com/tutu-network/countdown/internal/domain"
	"github.com/tutu-network/countdown/internal/health"
	"github.com/tutu-network/countdown/internal/infra/scheduler"
	"github.com/tutu-network/countdown/internal/infra/sqlite"
)

type testEnv struct {
	srv     *Server
	handler http.Handler
	session *countdown.Service
	clock   *scheduler.Manual
	db      *sqlite.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clock := scheduler.NewManual(time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC))
	session := countdown.New(countdown.Config{}, countdown.Deps{Clock: clock, Settings: db})
	session.Restore()

	srv := NewServer(session, db, db)
	return &testEnv{srv: srv, handler: srv.Handler(), session: session, clock: clock, db: db}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

// ─── Basic Endpoints ────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := decode[map[string]string](t, w)["status"]; got != "ok" {
		t.Errorf("status = %q, want ok", got)
	}
}

func TestVersion(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, "GET", "/api/version", "")
	if got := decode[map[string]string](t, w)["version"]; got != Version {
		t.Errorf("version = %q, want %q", got, Version)
	}
}

func TestCORSPreflight(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, "OPTIONS", "/api/timer/start", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestMetricsDisabledByDefault(t *testing.T) {
	e := newTestEnv(t)
	if w := e.do(t, "GET", "/metrics", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	e.srv.EnableMetrics()
	h := e.srv.Handler()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "countdown_") {
		t.Error("metrics output should contain countdown_ series")
	}
}

// ─── Timer ──────────────────────────────────────────────────────────────────

func TestTimer_StartFiltersInput(t *testing.T) {
	e := newTestEnv(t)

	snap := decode[countdown.Snapshot](t, e.do(t, "POST", "/api/timer/start", `{"input":"1:99"}`))
	if snap.TotalSeconds != 119 || snap.Input != "1:59" {
		t.Errorf("start 1:99 snapshot = %+v", snap)
	}

	snap = decode[countdown.Snapshot](t, e.do(t, "POST", "/api/timer/start", `{"input":"5124095576030432h"}`))
	if snap.TotalSeconds <= 0 || snap.Input != "512409557603" {
		t.Errorf("start overlong snapshot = %+v", snap)
	}
}

func TestTimer_StartPauseResumeStop(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, "POST", "/api/timer/start", `{"input":"2m"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("start status = %d: %s", w.Code, w.Body.String())
	}
	snap := decode[countdown.Snapshot](t, w)
	if snap.Phase != "running" || snap.TotalSeconds != 120 || snap.Label != "2:00" {
		t.Errorf("start snapshot = %+v", snap)
	}

	e.clock.Advance(30 * time.Second)

	snap = decode[countdown.Snapshot](t, e.do(t, "POST", "/api/timer/pause", ""))
	if snap.Phase != "paused" || snap.TimeLeftSeconds != 90 || snap.Style != countdown.StylePaused {
		t.Errorf("pause snapshot = %+v", snap)
	}

	snap = decode[countdown.Snapshot](t, e.do(t, "POST", "/api/timer/resume", ""))
	if snap.Phase != "running" || snap.TimeLeftSeconds != 90 {
		t.Errorf("resume snapshot = %+v", snap)
	}

	snap = decode[countdown.Snapshot](t, e.do(t, "GET", "/api/timer", ""))
	if snap.Phase != "running" {
		t.Errorf("GET /api/timer phase = %q", snap.Phase)
	}

	snap = decode[countdown.Snapshot](t, e.do(t, "POST", "/api/timer/stop", ""))
	if snap.Phase != "stopped" || snap.Label != "0:00" {
		t.Errorf("stop snapshot = %+v", snap)
	}
}

func TestTimer_StartEmptyUsesCurrentInput(t *testing.T) {
	e := newTestEnv(t)

	snap := decode[countdown.Snapshot](t, e.do(t, "POST", "/api/timer/start", ""))
	if snap.TotalSeconds != 3600 {
		t.Errorf("TotalSeconds = %d, want 3600", snap.TotalSeconds)
	}
}

func TestTimer_StartInvalid(t *testing.T) {
	e := newTestEnv(t)

	for _, body := range []string{`{"input":"0:00"}`, `{"input":"soon"}`} {
		w := e.do(t, "POST", "/api/timer/start", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, w.Code)
		}
		resp := decode[map[string]map[string]string](t, w)
		if resp["error"]["type"] != "invalid_request_error" {
			t.Errorf("%s: error type = %q", body, resp["error"]["type"])
		}
	}
	if e.session.Snapshot().Phase != "stopped" {
		t.Error("invalid start must not touch the timer")
	}
}

func TestTimer_StartMalformedJSON(t *testing.T) {
	e := newTestEnv(t)
	if w := e.do(t, "POST", "/api/timer/start", `{"input":`); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ─── Input ──────────────────────────────────────────────────────────────────

func TestInput_Filter(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		text, want, format string
	}{
		{"1:99", "1:59", "colon"},
		{"2H 30m", "2h 30m", "letters"},
		{"5mm", "5m", "letters"},
	}
	for _, tt := range tests {
		w := e.do(t, "POST", "/api/input/filter", `{"text":"`+tt.text+`"}`)
		resp := decode[filterResponse](t, w)
		if resp.Text != tt.want || resp.Format != tt.format {
			t.Errorf("filter(%q) = %+v, want %q/%s", tt.text, resp, tt.want, tt.format)
		}
	}
	if got := e.session.Input(); got != "5m" {
		t.Errorf("session input = %q, want 5m", got)
	}
}

func TestInput_Parse(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, "POST", "/api/input/parse", `{"text":"1:30:00"}`)
	resp := decode[parseResponse](t, w)
	if resp.Seconds != 5400 || resp.Formatted != "1:30:00" || resp.Format != "colon" {
		t.Errorf("parse = %+v", resp)
	}

	w = e.do(t, "POST", "/api/input/parse", `{"text":"abc"}`)
	resp = decode[parseResponse](t, w)
	if resp.Seconds != 0 || resp.Formatted != "0:00" {
		t.Errorf("parse(abc) = %+v", resp)
	}

	if e.session.Input() != "1:00:00" {
		t.Error("parse must not change the session input")
	}
}

// ─── Settings ───────────────────────────────────────────────────────────────

func TestSettings(t *testing.T) {
	e := newTestEnv(t)

	resp := decode[settingsResponse](t, e.do(t, "GET", "/api/settings", ""))
	if resp.LastInput != "" || resp.AlertSoundFile != "" {
		t.Errorf("initial settings = %+v", resp)
	}

	w := e.do(t, "PUT", "/api/settings", `{"last_input":"45M","alert_sound_file":"/tmp/bell.ogg"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT status = %d: %s", w.Code, w.Body.String())
	}
	resp = decode[settingsResponse](t, w)
	if resp.LastInput != "45m" || resp.AlertSoundFile != "/tmp/bell.ogg" {
		t.Errorf("updated settings = %+v", resp)
	}

	// Partial update leaves the other key alone.
	resp = decode[settingsResponse](t, e.do(t, "PUT", "/api/settings", `{"alert_sound_file":""}`))
	if resp.LastInput != "45m" || resp.AlertSoundFile != "" {
		t.Errorf("partial update = %+v", resp)
	}
}

// ─── Alerts & Health ────────────────────────────────────────────────────────

func TestAlerts(t *testing.T) {
	e := newTestEnv(t)
	at := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		err := e.db.InsertAlert(domain.Alert{ID: id, TotalSeconds: 60, FinishedAt: at.Add(time.Duration(i) * time.Minute), Delivered: true})
		if err != nil {
			t.Fatal(err)
		}
	}

	resp := decode[map[string][]domain.Alert](t, e.do(t, "GET", "/api/alerts?limit=2", ""))
	alerts := resp["alerts"]
	if len(alerts) != 2 || alerts[0].ID != "c" || alerts[1].ID != "b" {
		t.Errorf("alerts = %+v, want c, b", alerts)
	}

	if w := e.do(t, "GET", "/api/alerts?limit=zero", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", w.Code)
	}
}

func TestAlerts_Empty(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, "GET", "/api/alerts", "")
	if !strings.Contains(w.Body.String(), `"alerts":[]`) {
		t.Errorf("body = %s, want empty list", w.Body.String())
	}
}

func TestHealthChecks(t *testing.T) {
	e := newTestEnv(t)
	checker := health.NewChecker(e.db, e.session, nil, nil)
	checker.RunOnce(context.Background())
	e.srv.SetHealth(checker)
	h := e.srv.Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/health/checks", nil))

	var resp struct {
		Healthy bool            `json:"healthy"`
		Checks  []health.Status `json:"checks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Healthy || len(resp.Checks) != 2 {
		t.Errorf("health = %+v", resp)
	}
}
