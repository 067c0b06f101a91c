// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package services

import (
	"context"
)

// ContextHub is satisfied by *relay.Hub.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// RelayHubService supervises the broadcast hub. RunWithContext already has
// the suture.Service shape; the wrapper adds a name for logs.
type RelayHubService struct {
	hub  ContextHub
	name string
}

// NewRelayHubService wraps hub.
func NewRelayHubService(hub ContextHub) *RelayHubService {
	return &RelayHubService{
		hub:  hub,
		name: "relay-hub",
	}
}

// Serve implements suture.Service. It returns ctx.Err() on shutdown after the
// hub has closed every peer.
func (s *RelayHubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer for suture logs.
func (s *RelayHubService) String() string {
	return s.name
}
