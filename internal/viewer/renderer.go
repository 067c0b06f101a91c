// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package viewer

import (
	"errors"

	"github.com/tomtom215/meridian/internal/geo"
)

// ErrUnknownHandle is returned by a Renderer for a handle it no longer holds.
var ErrUnknownHandle = errors.New("unknown render handle")

// MarkerHandle identifies a marker inside a Renderer. Zero means none.
type MarkerHandle uint64

// PolylineHandle identifies a polyline inside a Renderer. Zero means none.
type PolylineHandle uint64

// PolylineStyle controls how a polyline is drawn.
type PolylineStyle struct {
	Color string
	Kind  string // "distance" or "route"
}

var (
	distanceStyle = PolylineStyle{Color: "red", Kind: "distance"}
	routeStyle    = PolylineStyle{Color: "blue", Kind: "route"}
)

// Viewport zoom levels.
const (
	ZoomWorld  = 2
	ZoomCity   = 13
	ZoomOwnFix = 16
)

// Renderer is the map widget the viewer draws on. Handles are weak: a
// renderer may forget a marker (for example when its layer is reset), after
// which MoveMarker and BindClick return ErrUnknownHandle and the registry
// creates a new marker.
//
// BindClick replaces any handler previously bound to the marker; a marker has
// exactly one handler slot.
type Renderer interface {
	CreateMarker(pos geo.Coordinate) MarkerHandle
	MoveMarker(h MarkerHandle, pos geo.Coordinate) error
	BindClick(h MarkerHandle, fn func()) error
	RemoveMarker(h MarkerHandle)
	DrawPolyline(points []geo.Coordinate, style PolylineStyle) PolylineHandle
	RemovePolyline(h PolylineHandle)
	SetViewport(center geo.Coordinate, zoom int)
}

// Clicker is implemented by renderers that can simulate a marker click, such
// as the headless in-memory renderer.
type Clicker interface {
	Click(h MarkerHandle) bool
}
