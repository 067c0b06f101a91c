// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

// Package validation wraps go-playground/validator v10 with a process-wide
// validator and readable error messages.
//
// Besides the built-in tags (required, latitude, longitude, oneof, min, max)
// it registers "participant", which accepts non-blank printable identifiers
// of at most 64 bytes.
//
//	type PositionReport struct {
//	    ParticipantID string  `validate:"participant"`
//	    Latitude      float64 `validate:"latitude"`
//	    Longitude     float64 `validate:"longitude"`
//	}
package validation
