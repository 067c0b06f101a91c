// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package viewer

import (
	"github.com/tomtom215/meridian/internal/geo"
)

// Overlay keeps at most one distance line and at most one route line on the
// map. Setting either kind removes the previous artifact of that kind first.
type Overlay struct {
	renderer Renderer
	distance PolylineHandle
	route    PolylineHandle
}

// NewOverlay creates an empty overlay drawing on renderer.
func NewOverlay(renderer Renderer) *Overlay {
	return &Overlay{renderer: renderer}
}

// SetDistanceOverlay replaces the distance line with a straight line a -> b.
func (o *Overlay) SetDistanceOverlay(a, b geo.Coordinate) {
	o.ClearDistance()
	o.distance = o.renderer.DrawPolyline([]geo.Coordinate{a, b}, distanceStyle)
}

// SetRouteOverlay replaces the route line with points.
func (o *Overlay) SetRouteOverlay(points []geo.Coordinate) {
	o.ClearRoute()
	o.route = o.renderer.DrawPolyline(points, routeStyle)
}

// ClearDistance removes the distance line, if any.
func (o *Overlay) ClearDistance() {
	if o.distance != 0 {
		o.renderer.RemovePolyline(o.distance)
		o.distance = 0
	}
}

// ClearRoute removes the route line, if any.
func (o *Overlay) ClearRoute() {
	if o.route != 0 {
		o.renderer.RemovePolyline(o.route)
		o.route = 0
	}
}

// HasDistance reports whether a distance line is drawn.
func (o *Overlay) HasDistance() bool { return o.distance != 0 }

// HasRoute reports whether a route line is drawn.
func (o *Overlay) HasRoute() bool { return o.route != 0 }
