// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package services

import (
	"context"
	"io"

	"github.com/tomtom215/meridian/internal/logging"
)

// Runner is satisfied by *viewer.Viewer.
type Runner interface {
	Run(ctx context.Context) error
}

// ViewerService supervises the viewer event loop. When the loop returns, the
// relay connection is closed so the retire report queued on shutdown is
// flushed before the process exits.
type ViewerService struct {
	viewer Runner
	conn   io.Closer // may be nil when running offline
	name   string
}

// NewViewerService wraps v and the relay connection it publishes on.
func NewViewerService(v Runner, conn io.Closer) *ViewerService {
	return &ViewerService{
		viewer: v,
		conn:   conn,
		name:   "viewer",
	}
}

// Serve implements suture.Service.
func (s *ViewerService) Serve(ctx context.Context) error {
	err := s.viewer.Run(ctx)
	if s.conn != nil {
		if cerr := s.conn.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("closing relay connection")
		}
	}
	return err
}

// String implements fmt.Stringer for suture logs.
func (s *ViewerService) String() string {
	return s.name
}
