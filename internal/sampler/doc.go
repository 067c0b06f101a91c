// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

// Package sampler simulates the device geolocation feed for the headless
// viewer, either by replaying a YAML track file or by a seeded random walk.
package sampler
