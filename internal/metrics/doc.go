// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package metrics provides Prometheus metrics for the relay and the viewer.

All collectors are registered on the default registry through promauto and
exported by the relay at /metrics:

	curl http://localhost:3000/metrics

# Available Metrics

Relay:
  - relay_connections: open connections (gauge)
  - relay_frames_received_total, relay_frames_forwarded_total
  - relay_malformed_frames_total
  - relay_peers_dropped_total{reason}
  - relay_broadcast_fanout (histogram)

HTTP:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests, api_rate_limit_hits_total{endpoint}

Viewer and collaborators:
  - viewer_reports_applied_total{source}, viewer_echoes_filtered_total
  - viewer_stale_completions_total{kind}
  - collaborator_call_duration_seconds{service,outcome}
  - cache_hits_total, cache_misses_total, cache_evictions_total{cache_type}
  - circuit_breaker_state, circuit_breaker_requests_total,
    circuit_breaker_consecutive_failures, circuit_breaker_state_transitions_total

The viewer process registers the same collectors but does not serve them.
*/
package metrics
