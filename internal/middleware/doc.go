// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package middleware provides chi-compatible HTTP middleware for the relay.

Key Components:

  - RequestID: UUID request IDs carried into the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge per route pattern
  - AccessLog: one zerolog line per request, warn above SlowRequestThreshold

Every wrapper uses chi's WrapResponseWriter, which preserves http.Hijacker,
so the middleware can sit in front of the WebSocket upgrade route.

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog)
*/
package middleware
