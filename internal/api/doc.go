// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package api serves the relay's HTTP surface with the chi router.

One listener carries everything: the WebSocket relay endpoint, the static
viewer assets, health probes, relay statistics and Prometheus metrics.

Middleware Stack (outermost first):

  - middleware.RequestID: request IDs in the logging context
  - chi RealIP and Recoverer
  - middleware.AccessLog: one zerolog line per request
  - go-chi/cors using security.cors_origins
  - go-chi/httprate per route group, rejections counted in
    api_rate_limit_hits_total
  - middleware.PrometheusMetrics on API and WebSocket routes

JSON responses use the models.APIResponse envelope:

	{"status":"success","data":{...},"metadata":{"timestamp":"..."}}

WebSocket origins are checked against the same CORS origin list; requests
without an Origin header are accepted so non-browser viewers can connect.
*/
package api
