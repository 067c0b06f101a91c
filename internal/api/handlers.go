// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package api

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/meridian/internal/config"
	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/models"
	"github.com/tomtom215/meridian/internal/relay"
)

// Version is reported by the health endpoints. It is set at build time.
var Version = "dev"

// Hub is the part of relay.Hub the HTTP layer needs.
type Hub interface {
	Running() bool
	Stats() models.RelayStats
}

// Handler serves the relay's HTTP endpoints.
type Handler struct {
	hub       Hub
	upgrade   func(w http.ResponseWriter, r *http.Request) error
	startTime time.Time
}

// NewHandler creates handlers backed by hub. WebSocket upgrades are checked
// against sec.CORSOrigins.
func NewHandler(hub *relay.Hub, sec config.SecurityConfig) *Handler {
	upgrader := NewUpgrader(sec)
	return &Handler{
		hub: hub,
		upgrade: func(w http.ResponseWriter, r *http.Request) error {
			return relay.ServeWS(hub, upgrader, w, r)
		},
		startTime: time.Now(),
	}
}

// NewUpgrader returns a WebSocket upgrader whose origin check accepts
// requests without an Origin header (non-browser peers), same-host origins,
// and the configured CORS origins. A "*" entry accepts any origin.
func NewUpgrader(sec config.SecurityConfig) *websocket.Upgrader {
	allowed := make(map[string]bool, len(sec.CORSOrigins))
	wildcard := false
	for _, o := range sec.CORSOrigins {
		if o == "*" {
			wildcard = true
		}
		allowed[strings.ToLower(strings.TrimSuffix(o, "/"))] = true
	}

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || wildcard {
				return true
			}
			if allowed[strings.ToLower(origin)] {
				return true
			}
			u, err := url.Parse(origin)
			if err == nil && strings.EqualFold(u.Host, r.Host) {
				return true
			}
			logging.Warn().Str("origin", origin).Msg("rejected WebSocket origin")
			return false
		},
	}
}

// WebSocket upgrades the request and attaches it to the relay.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if err := h.upgrade(w, r); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("websocket upgrade failed")
	}
}

// HealthLive reports that the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, models.HealthStatus{
		Status:  "ok",
		Version: Version,
	})
}

// HealthReady reports whether the hub is accepting peers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.hub.Running() {
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status: "error",
			Data: models.HealthStatus{
				Status:  "unavailable",
				Version: Version,
				Checks:  map[string]string{"hub": "stopped"},
			},
			Metadata: models.Metadata{Timestamp: time.Now()},
			Error: &models.APIError{
				Code:    "SERVICE_UNAVAILABLE",
				Message: "relay hub is not running",
			},
		})
		return
	}

	respondSuccess(w, http.StatusOK, models.HealthStatus{
		Status:  "ok",
		Version: Version,
		Checks:  map[string]string{"hub": "running"},
	})
}

// RelayStats returns connection and frame counters.
func (h *Handler) RelayStats(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.hub.Stats())
}

// NotFound is the JSON 404 for API paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "NOT_FOUND", "No such endpoint", nil)
}
