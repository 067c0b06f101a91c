// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

// Package render provides a headless map scene for the viewer.
//
// Memory implements viewer.Renderer and viewer.Clicker by keeping markers,
// polylines and the viewport in memory and logging each change at debug
// level. It backs the command-line viewer and the viewer tests that need a
// renderer outside the viewer package.
package render
