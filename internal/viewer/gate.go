// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package viewer

import (
	"errors"
)

var (
	// ErrLocked is returned by gated commands before the phrase is entered.
	ErrLocked = errors.New("command locked: enter the unlock phrase first")

	// ErrWrongPhrase is returned by Unlock for a non-matching phrase.
	ErrWrongPhrase = errors.New("unlock phrase does not match")
)

// Gate hides the lookup and locate commands behind a shared phrase.
//
// It is a convenience gate for a shared screen, not access control: the
// phrase is a static string in configuration and every position is visible
// to anyone connected to the relay regardless.
type Gate struct {
	phrase   string
	unlocked bool
}

// NewGate creates a gate. An empty phrase leaves the gate open.
func NewGate(phrase string) *Gate {
	return &Gate{phrase: phrase, unlocked: phrase == ""}
}

// Unlock opens the gate when phrase matches.
func (g *Gate) Unlock(phrase string) error {
	if g.unlocked {
		return nil
	}
	if phrase != g.phrase {
		return ErrWrongPhrase
	}
	g.unlocked = true
	return nil
}

// Check returns ErrLocked while the gate is closed.
func (g *Gate) Check() error {
	if !g.unlocked {
		return ErrLocked
	}
	return nil
}
