// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/meridian/internal/config"
	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/metrics"
	"github.com/tomtom215/meridian/internal/models"
	"github.com/tomtom215/meridian/internal/relay"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "error", Format: "console", Output: io.Discard})
}

type fakeHub struct {
	running bool
	stats   models.RelayStats
}

func (f *fakeHub) Running() bool            { return f.running }
func (f *fakeHub) Stats() models.RelayStats { return f.stats }

func testSecurity() config.SecurityConfig {
	return config.SecurityConfig{
		CORSOrigins:     []string{"*"},
		RateLimitReqs:   100,
		RateLimitWindow: time.Minute,
	}
}

func newFakeRouter(hub Hub, sec config.SecurityConfig, staticDir string) http.Handler {
	h := &Handler{
		hub:       hub,
		upgrade:   func(http.ResponseWriter, *http.Request) error { return nil },
		startTime: time.Now(),
	}
	return NewRouter(h, NewChiMiddleware(ChiMiddlewareConfigFromSecurity(sec)), staticDir).SetupChi()
}

func decodeResponse(t *testing.T, body io.Reader) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestHealthEndpoints(t *testing.T) {
	hub := &fakeHub{running: true}
	router := newFakeRouter(hub, testSecurity(), "")

	tests := []struct {
		name       string
		path       string
		running    bool
		wantStatus int
		wantState  string
	}{
		{"live", "/api/v1/health/live", true, http.StatusOK, "success"},
		{"live while hub stopped", "/api/v1/health/live", false, http.StatusOK, "success"},
		{"ready", "/api/v1/health/ready", true, http.StatusOK, "success"},
		{"not ready", "/api/v1/health/ready", false, http.StatusServiceUnavailable, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub.running = tt.running
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if resp := decodeResponse(t, rec.Body); resp.Status != tt.wantState {
				t.Errorf("envelope status = %q, want %q", resp.Status, tt.wantState)
			}
			if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("missing security headers")
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID")
			}
		})
	}
}

func TestRelayStatsEndpoint(t *testing.T) {
	hub := &fakeHub{running: true, stats: models.RelayStats{Connections: 3, FramesReceived: 10}}
	router := newFakeRouter(hub, testSecurity(), "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/relay/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`"connections":3`, `"frames_received":10`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %s: %s", want, body)
		}
	}
}

func TestUnknownAPIPath(t *testing.T) {
	router := newFakeRouter(&fakeHub{running: true}, testSecurity(), "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if resp := decodeResponse(t, rec.Body); resp.Error == nil || resp.Error.Code != "NOT_FOUND" {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newFakeRouter(&fakeHub{running: true}, testSecurity(), "")
	metrics.RelayConnections.Set(0)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "relay_connections") {
		t.Errorf("status = %d, relay_connections present = %v", rec.Code, strings.Contains(rec.Body.String(), "relay_connections"))
	}
}

func TestStaticAssets(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>map</h1>"), 0o600); err != nil {
		t.Fatal(err)
	}
	router := newFakeRouter(&fakeHub{running: true}, testSecurity(), dir)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<h1>map</h1>") {
		t.Errorf("GET / = %d %q", rec.Code, rec.Body.String())
	}

	noStatic := newFakeRouter(&fakeHub{running: true}, testSecurity(), "")
	rec = httptest.NewRecorder()
	noStatic.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.html", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("without static dir status = %d, want 404", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	sec := testSecurity()
	sec.RateLimitReqs = 2
	router := newFakeRouter(&fakeHub{running: true}, sec, "")
	before := testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("relay"))

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/relay/stats", nil)
		req.RemoteAddr = "192.0.2.10:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		last = rec.Code
	}

	if last != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", last)
	}
	if delta := testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("relay")) - before; delta != 1 {
		t.Errorf("rate limit metric delta = %v, want 1", delta)
	}

	sec.RateLimitDisabled = true
	unlimited := newFakeRouter(&fakeHub{running: true}, sec, "")
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		unlimited.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/relay/stats", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("disabled limiter request %d status = %d", i, rec.Code)
		}
	}
}

func TestUpgraderCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		host    string
		want    bool
	}{
		{"no origin header", []string{"https://map.example"}, "", "relay.example", true},
		{"listed origin", []string{"https://map.example"}, "https://map.example", "relay.example", true},
		{"listed origin case", []string{"https://Map.Example/"}, "https://map.example", "relay.example", true},
		{"same host", []string{"https://map.example"}, "http://relay.example", "relay.example", true},
		{"foreign origin", []string{"https://map.example"}, "https://evil.example", "relay.example", false},
		{"wildcard", []string{"*"}, "https://evil.example", "relay.example", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := NewUpgrader(config.SecurityConfig{CORSOrigins: tt.origins})
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			req.Host = tt.host
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := up.CheckOrigin(req); got != tt.want {
				t.Errorf("CheckOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWebSocketRoutes(t *testing.T) {
	hub := relay.NewHub(config.RelayConfig{
		SendBuffer:      16,
		BroadcastBuffer: 16,
		MaxMessageSize:  4096,
		WriteWait:       time.Second,
		PongWait:        5 * time.Second,
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	sec := testSecurity()
	router := NewRouter(NewHandler(hub, sec), NewChiMiddleware(ChiMiddlewareConfigFromSecurity(sec)), t.TempDir())
	srv := httptest.NewServer(router.SetupChi())
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http")
	for _, path := range []string{"/ws", "/"} {
		t.Run(path, func(t *testing.T) {
			conn, resp, err := websocket.DefaultDialer.Dial(base+path, nil)
			if err != nil {
				t.Fatalf("dial %s: %v", path, err)
			}
			defer conn.Close()
			if resp.StatusCode != http.StatusSwitchingProtocols {
				t.Fatalf("status = %d", resp.StatusCode)
			}

			frame := []byte(`{"participantId":"alice","latitude":1,"longitude":2}`)
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				t.Fatal(err)
			}
			_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			_, got, err := conn.ReadMessage()
			if err != nil {
				t.Fatalf("read echo: %v", err)
			}
			if string(got) != string(frame) {
				t.Errorf("echo = %s, want %s", got, frame)
			}
		})
	}
}
