// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Relay Metrics
	RelayConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_connections",
			Help: "Current number of open relay connections",
		},
	)

	RelayFramesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_frames_received_total",
			Help: "Total number of inbound frames accepted for broadcast",
		},
	)

	RelayFramesForwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_frames_forwarded_total",
			Help: "Total number of frames queued to peers (one per recipient)",
		},
	)

	RelayMalformedFrames = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_malformed_frames_total",
			Help: "Total number of inbound frames rejected as malformed",
		},
	)

	RelayPeersDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_peers_dropped_total",
			Help: "Total number of peers removed by the relay",
		},
		[]string{"reason"}, // "send_buffer_full", "write_error"
	)

	RelayBroadcastFanout = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_broadcast_fanout",
			Help:    "Number of recipients per broadcast",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	// Collaborator Metrics (routing, geocoding)
	CollaboratorCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collaborator_call_duration_seconds",
			Help:    "Duration of calls to external routing and geocoding services",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "outcome"}, // outcome: "ok", "not_found", "rejected", "canceled", "error"
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (capacity or TTL)",
		},
		[]string{"cache_type"},
	)

	// Viewer Metrics
	ViewerReportsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewer_reports_applied_total",
			Help: "Total number of position reports applied to the registry",
		},
		[]string{"source"}, // "local", "remote", "retire"
	)

	ViewerEchoesFiltered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "viewer_echoes_filtered_total",
			Help: "Total number of inbound reports ignored because they echo the local participant",
		},
	)

	ViewerStaleCompletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewer_stale_completions_total",
			Help: "Total number of async completions discarded because a newer request was issued",
		},
		[]string{"kind"}, // "distance", "route", "locate"
	)

	ViewerTransportFrames = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewer_transport_frames_total",
			Help: "Total number of frames handled by the viewer relay connection",
		},
		[]string{"direction", "outcome"}, // direction: "in", "out"; outcome: "ok", "malformed", "dropped"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordBroadcast records one accepted inbound frame and its fan-out.
func RecordBroadcast(recipients int) {
	RelayFramesReceived.Inc()
	RelayFramesForwarded.Add(float64(recipients))
	RelayBroadcastFanout.Observe(float64(recipients))
}

// RecordPeerDropped records a peer removed by the hub.
func RecordPeerDropped(reason string) {
	RelayPeersDropped.WithLabelValues(reason).Inc()
}

// RecordCollaboratorCall records the duration and outcome of an external call.
func RecordCollaboratorCall(service, outcome string, duration time.Duration) {
	CollaboratorCallDuration.WithLabelValues(service, outcome).Observe(duration.Seconds())
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
	} else {
		CacheMisses.WithLabelValues(cacheType).Inc()
	}
}

// RecordTransportFrame records a frame handled by the viewer relay connection.
func RecordTransportFrame(direction, outcome string) {
	ViewerTransportFrames.WithLabelValues(direction, outcome).Inc()
}
