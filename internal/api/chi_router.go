// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package api

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	staticDir     string
}

// NewRouter creates a router. staticDir may be empty to disable static
// asset serving.
func NewRouter(handler *Handler, mw *ChiMiddleware, staticDir string) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
		staticDir:     staticDir,
	}
}

// SetupChi configures every route on one listener:
//
//	/ws                    WebSocket relay endpoint
//	/api/v1/health/live    liveness
//	/api/v1/health/ready   readiness (hub running)
//	/api/v1/relay/stats    connection and frame counters
//	/metrics               Prometheus exposition
//	/*                     WebSocket upgrade when requested, else static assets
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(router.chiMiddleware.CORS())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom("health", RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1/relay", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit("relay"))
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Get("/stats", router.handler.RelayStats)
	})

	r.Handle("/api/*", http.HandlerFunc(router.handler.NotFound))

	r.Handle("/metrics", promhttp.Handler())

	r.With(
		router.chiMiddleware.RateLimitCustom("ws", RateLimitWebSocket),
		middleware.PrometheusMetrics,
	).Get("/ws", router.handler.WebSocket)

	r.Get("/*", router.rootHandler())

	return r
}

// rootHandler upgrades WebSocket handshakes on any path, matching clients
// that connect to the bare host, and serves static viewer assets otherwise.
func (router *Router) rootHandler() http.HandlerFunc {
	var static http.Handler = http.NotFoundHandler()
	if router.staticDir != "" {
		if info, err := os.Stat(router.staticDir); err == nil && info.IsDir() {
			static = http.FileServer(http.Dir(router.staticDir))
		} else {
			logging.Warn().Str("static_dir", router.staticDir).Msg("static directory not found, serving WebSocket only")
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			router.handler.WebSocket(w, r)
			return
		}
		static.ServeHTTP(w, r)
	}
}
