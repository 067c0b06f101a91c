// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package viewer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/meridian/internal/models"
	"github.com/tomtom215/meridian/internal/validation"
)

var (
	// ErrEmptyParticipant is returned by Start for a blank participant ID.
	ErrEmptyParticipant = errors.New("participant id is empty")

	// ErrInvalidParticipant is returned by Start for an ID that cannot be
	// sent on the wire (control characters, too long).
	ErrInvalidParticipant = errors.New("participant id is not valid")

	// ErrDuplicateParticipant is returned by Start for an ID already in the
	// registry.
	ErrDuplicateParticipant = errors.New("participant id already in use")

	// ErrAlreadyTracking is returned by Start once the session is tracking.
	ErrAlreadyTracking = errors.New("session already tracking")

	// ErrNotTracking is returned by operations that need an active participant.
	ErrNotTracking = errors.New("session not tracking")
)

// Phase is the tracking session state.
type Phase int

const (
	// PhaseIdle is the initial phase: no local participant is published.
	PhaseIdle Phase = iota
	// PhaseTracking is terminal for the process lifetime.
	PhaseTracking
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseTracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// Session decides whether the local device publishes its position and under
// which participant ID. It moves Idle -> Tracking once and never back.
type Session struct {
	active string
	phase  Phase
}

// NewSession creates an idle session. previous, when non-empty, is an identity
// this viewer published under before (for example in an earlier run); Start
// retires it before adopting the new one.
func NewSession(previous string) *Session {
	return &Session{active: previous}
}

// Start moves the session to Tracking under id. It fails, leaving the session
// unchanged, when already tracking, when id is blank or not a valid wire ID,
// or when reg already holds id.
//
// When a previous identity exists, the returned retire report must be
// published before any report under the new identity.
func (s *Session) Start(id string, reg *Registry) (*models.PositionReport, error) {
	if s.phase != PhaseIdle {
		return nil, fmt.Errorf("%w as %q", ErrAlreadyTracking, s.active)
	}
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyParticipant
	}
	if verr := validation.ValidateStruct(&struct {
		ID string `validate:"participant"`
	}{ID: id}); verr != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParticipant, verr)
	}
	if reg.Contains(id) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateParticipant, id)
	}

	var retire *models.PositionReport
	if s.active != "" && s.active != id {
		r := models.RetireReport(s.active)
		retire = &r
	}

	s.active = id
	s.phase = PhaseTracking
	return retire, nil
}

// Active returns the local participant ID while tracking.
func (s *Session) Active() (string, bool) {
	if s.phase != PhaseTracking {
		return "", false
	}
	return s.active, true
}

// IsSelf reports whether id is the tracked local participant.
func (s *Session) IsSelf(id string) bool {
	return s.phase == PhaseTracking && s.active == id
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	return s.phase
}
