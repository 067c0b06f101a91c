// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package render

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/meridian/internal/geo"
	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/viewer"
)

type marker struct {
	pos     geo.Coordinate
	onClick func()
}

type polyline struct {
	points []geo.Coordinate
	style  viewer.PolylineStyle
}

// Memory is an in-memory map scene. It is safe for concurrent use.
type Memory struct {
	mu        sync.Mutex
	next      uint64
	markers   map[viewer.MarkerHandle]*marker
	polylines map[viewer.PolylineHandle]*polyline
	center    geo.Coordinate
	zoom      int
	logger    zerolog.Logger
}

// Compile-time interface checks.
var (
	_ viewer.Renderer = (*Memory)(nil)
	_ viewer.Clicker  = (*Memory)(nil)
)

// NewMemory creates an empty scene showing the whole world.
func NewMemory() *Memory {
	return &Memory{
		markers:   make(map[viewer.MarkerHandle]*marker),
		polylines: make(map[viewer.PolylineHandle]*polyline),
		zoom:      viewer.ZoomWorld,
		logger:    logging.WithComponent("render"),
	}
}

// CreateMarker adds a marker at pos.
func (m *Memory) CreateMarker(pos geo.Coordinate) viewer.MarkerHandle {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.next++
	h := viewer.MarkerHandle(m.next)
	m.markers[h] = &marker{pos: pos}
	m.logger.Debug().Uint64("marker", uint64(h)).Str("position", pos.String()).Msg("marker created")
	return h
}

// MoveMarker repositions a marker.
func (m *Memory) MoveMarker(h viewer.MarkerHandle, pos geo.Coordinate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mk, ok := m.markers[h]
	if !ok {
		return fmt.Errorf("marker %d: %w", h, viewer.ErrUnknownHandle)
	}
	mk.pos = pos
	m.logger.Debug().Uint64("marker", uint64(h)).Str("position", pos.String()).Msg("marker moved")
	return nil
}

// BindClick sets the marker's click handler, replacing any previous one.
func (m *Memory) BindClick(h viewer.MarkerHandle, fn func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mk, ok := m.markers[h]
	if !ok {
		return fmt.Errorf("marker %d: %w", h, viewer.ErrUnknownHandle)
	}
	mk.onClick = fn
	return nil
}

// RemoveMarker deletes a marker. Unknown handles are ignored.
func (m *Memory) RemoveMarker(h viewer.MarkerHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.markers[h]; ok {
		delete(m.markers, h)
		m.logger.Debug().Uint64("marker", uint64(h)).Msg("marker removed")
	}
}

// DrawPolyline adds a polyline through points.
func (m *Memory) DrawPolyline(points []geo.Coordinate, style viewer.PolylineStyle) viewer.PolylineHandle {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.next++
	h := viewer.PolylineHandle(m.next)
	m.polylines[h] = &polyline{
		points: append([]geo.Coordinate(nil), points...),
		style:  style,
	}
	m.logger.Debug().
		Uint64("polyline", uint64(h)).
		Str("kind", style.Kind).
		Int("points", len(points)).
		Msg("polyline drawn")
	return h
}

// RemovePolyline deletes a polyline. Unknown handles are ignored.
func (m *Memory) RemovePolyline(h viewer.PolylineHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.polylines, h)
}

// SetViewport centres the scene.
func (m *Memory) SetViewport(center geo.Coordinate, zoom int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.center, m.zoom = center, zoom
	m.logger.Debug().Str("center", center.String()).Int("zoom", zoom).Msg("viewport changed")
}

// Click invokes the marker's handler and reports whether one was bound. The
// handler runs without the scene lock held.
func (m *Memory) Click(h viewer.MarkerHandle) bool {
	m.mu.Lock()
	var fn func()
	if mk, ok := m.markers[h]; ok {
		fn = mk.onClick
	}
	m.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Reset forgets every marker and polyline, as a map widget does when its
// layers are rebuilt. Handles held by the viewer become unknown.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.markers = make(map[viewer.MarkerHandle]*marker)
	m.polylines = make(map[viewer.PolylineHandle]*polyline)
	m.logger.Debug().Msg("scene reset")
}

// MarkerView is a marker in a Scene.
type MarkerView struct {
	Handle    viewer.MarkerHandle
	Position  geo.Coordinate
	Clickable bool
}

// PolylineView is a polyline in a Scene.
type PolylineView struct {
	Handle viewer.PolylineHandle
	Style  viewer.PolylineStyle
	Points []geo.Coordinate
}

// Scene is a point-in-time copy of what is drawn, ordered by handle.
type Scene struct {
	Center    geo.Coordinate
	Zoom      int
	Markers   []MarkerView
	Polylines []PolylineView
}

// Scene returns a copy of the current scene.
func (m *Memory) Scene() Scene {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Scene{
		Center:    m.center,
		Zoom:      m.zoom,
		Markers:   make([]MarkerView, 0, len(m.markers)),
		Polylines: make([]PolylineView, 0, len(m.polylines)),
	}
	for h, mk := range m.markers {
		s.Markers = append(s.Markers, MarkerView{Handle: h, Position: mk.pos, Clickable: mk.onClick != nil})
	}
	for h, pl := range m.polylines {
		s.Polylines = append(s.Polylines, PolylineView{
			Handle: h,
			Style:  pl.style,
			Points: append([]geo.Coordinate(nil), pl.points...),
		})
	}
	sort.Slice(s.Markers, func(i, j int) bool { return s.Markers[i].Handle < s.Markers[j].Handle })
	sort.Slice(s.Polylines, func(i, j int) bool { return s.Polylines[i].Handle < s.Polylines[j].Handle })
	return s
}

// String renders the scene as text, one item per line.
func (s Scene) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "viewport %s zoom %d", s.Center, s.Zoom)
	for _, mk := range s.Markers {
		fmt.Fprintf(&b, "\nmarker #%d at %s", mk.Handle, mk.Position)
	}
	for _, pl := range s.Polylines {
		fmt.Fprintf(&b, "\n%s line #%d (%s, %d points, %.2f km)",
			pl.Style.Kind, pl.Handle, pl.Style.Color, len(pl.Points), geo.PathLength(pl.Points))
	}
	return b.String()
}
