// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package viewer

import (
	"sync"

	"github.com/tomtom215/meridian/internal/geo"
)

type fakeMarker struct {
	pos      geo.Coordinate
	click    func()
	bindings int
}

type fakePolyline struct {
	points []geo.Coordinate
	style  PolylineStyle
}

// fakeRenderer records what the viewer draws. It is safe for use from the
// test goroutine while the loop runs.
type fakeRenderer struct {
	mu        sync.Mutex
	next      uint64
	markers   map[MarkerHandle]*fakeMarker
	polylines map[PolylineHandle]*fakePolyline
	created   int
	removed   int
	viewport  geo.Coordinate
	zoom      int
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		markers:   make(map[MarkerHandle]*fakeMarker),
		polylines: make(map[PolylineHandle]*fakePolyline),
	}
}

func (f *fakeRenderer) CreateMarker(pos geo.Coordinate) MarkerHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.created++
	h := MarkerHandle(f.next)
	f.markers[h] = &fakeMarker{pos: pos}
	return h
}

func (f *fakeRenderer) MoveMarker(h MarkerHandle, pos geo.Coordinate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.markers[h]
	if !ok {
		return ErrUnknownHandle
	}
	m.pos = pos
	return nil
}

func (f *fakeRenderer) BindClick(h MarkerHandle, fn func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.markers[h]
	if !ok {
		return ErrUnknownHandle
	}
	m.click = fn
	m.bindings++
	return nil
}

func (f *fakeRenderer) RemoveMarker(h MarkerHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.markers[h]; ok {
		delete(f.markers, h)
		f.removed++
	}
}

func (f *fakeRenderer) DrawPolyline(points []geo.Coordinate, style PolylineStyle) PolylineHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	h := PolylineHandle(f.next)
	f.polylines[h] = &fakePolyline{points: append([]geo.Coordinate(nil), points...), style: style}
	return h
}

func (f *fakeRenderer) RemovePolyline(h PolylineHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.polylines, h)
}

func (f *fakeRenderer) SetViewport(center geo.Coordinate, zoom int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewport, f.zoom = center, zoom
}

func (f *fakeRenderer) Click(h MarkerHandle) bool {
	f.mu.Lock()
	m, ok := f.markers[h]
	var fn func()
	if ok {
		fn = m.click
	}
	f.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// forget drops every marker, as a map widget does when its layer is reset.
func (f *fakeRenderer) forget() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markers = make(map[MarkerHandle]*fakeMarker)
}

func (f *fakeRenderer) markerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.markers)
}

func (f *fakeRenderer) markerAt(h MarkerHandle) (fakeMarker, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.markers[h]
	if !ok {
		return fakeMarker{}, false
	}
	return *m, true
}

// polylinesOf returns the live polylines of one kind.
func (f *fakeRenderer) polylinesOf(kind string) []fakePolyline {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakePolyline
	for _, p := range f.polylines {
		if p.style.Kind == kind {
			out = append(out, *p)
		}
	}
	return out
}

func (f *fakeRenderer) view() (geo.Coordinate, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewport, f.zoom
}
