// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package command implements the meridian command line.

	meridian [--config FILE] [--log-level LEVEL] relay
	meridian [--config FILE] [--log-level LEVEL] viewer [--id ID] [--previous-id ID] [--offline]

relay runs the broadcast relay: the hub and the HTTP listener under one
supervisor tree.

viewer connects to viewer.relay_url, samples a simulated position and reads
line commands from stdin (type "help"). "scene" prints the rendered map and
"quit" exits. Closing stdin stops command input but leaves the viewer
running until it is interrupted.
*/
package command
