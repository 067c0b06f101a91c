// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package models defines the position report exchanged over the relay and the
JSON shapes served by the relay's HTTP API.

Wire Format:

Every WebSocket text frame holds exactly one JSON object with exactly three
fields:

	{"participantId": "alice", "latitude": 51.5074, "longitude": -0.1278}

DecodeReport rejects anything else (unknown or missing fields, nulls, wrong
types, trailing data) with ErrMalformedReport. Range checks are separate
(PositionReport.Validate, ErrInvalidReport) because the relay forwards
well-formed frames without interpreting them.

Retire Reports:

A report at (0, 0) retires the sender's marker on every viewer. The entry
itself stays in each registry.
*/
package models
