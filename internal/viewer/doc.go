// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package viewer reconciles the relay's stream of position reports into one
participant's picture of where everyone is.

Key Components:

  - Registry: participant ID -> last position and marker (last write wins)
  - Session: Idle -> Tracking state machine for the local participant
  - Overlay: at most one distance line and one route line
  - Gate: optional unlock phrase in front of lookup and locate
  - Viewer: the event loop that owns all of the above

Event Loop:

Viewer.Run is the only goroutine that touches viewer state. It selects over
local position samples, relay reports, the relay's close signal, user
commands, device orientation and completions of routing and geocoding calls,
which run on their own goroutines.

Each overlay-producing request takes the next generation number for its kind
(distance, route, locate). A completion carrying an older generation than
the latest issued is discarded, so a slow route can never replace a newer one.
A fresh local sample also advances the route generation: the drawn route is
removed and any route still in flight was computed from the old position.

Echoes:

The relay sends every report to every connection, the sender included. The
viewer drops relayed reports for its own participant; its own entry is
updated only from local samples.

Retire Reports:

A report at exactly (0, 0) removes the participant's marker. The registry
entry stays, so the ID cannot be claimed by Start and lookups report that the
participant stopped sharing. The viewer sends one for its own participant when
Run returns.
*/
package viewer
