// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// stubService counts Serve calls and can fail a fixed number of times before
// blocking until shutdown.
type stubService struct {
	name     string
	starts   atomic.Int32
	failures atomic.Int32
	failN    int32
}

func newStubService(name string, failN int32) *stubService {
	return &stubService{name: name, failN: failN}
}

func (s *stubService) Serve(ctx context.Context) error {
	s.starts.Add(1)
	if s.failures.Add(1) <= s.failN {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubService) Starts() int32 { return s.starts.Load() }

func (s *stubService) String() string { return s.name }
