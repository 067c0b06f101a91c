// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package models

import (
	"time"
)

// APIResponse is the envelope for every JSON endpoint of the relay.
//
//	{
//	  "status": "success",
//	  "data": {"connections": 3, "uptime_seconds": 120},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data,omitempty"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response metadata.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
}

// APIError is a machine-readable error code plus a human message.
//
// Codes used by the relay: NOT_FOUND, RATE_LIMIT_EXCEEDED, INTERNAL_ERROR,
// SERVICE_UNAVAILABLE.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is returned by the liveness and readiness endpoints.
type HealthStatus struct {
	Status  string            `json:"status"` // "ok" or "unavailable"
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// RelayStats is returned by /api/v1/relay/stats.
type RelayStats struct {
	Connections     int       `json:"connections"`
	FramesReceived  uint64    `json:"frames_received"`
	FramesForwarded uint64    `json:"frames_forwarded"`
	MalformedFrames uint64    `json:"malformed_frames"`
	PeersDropped    uint64    `json:"peers_dropped"`
	StartedAt       time.Time `json:"started_at"`
	UptimeSeconds   int64     `json:"uptime_seconds"`
}
