// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package viewer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tomtom215/meridian/internal/models"
)

var (
	// ErrParticipantNotFound is returned for an ID the registry has never seen.
	ErrParticipantNotFound = errors.New("participant not found")

	// ErrParticipantRetired is returned when a relationship is requested with
	// a participant whose last report was a retire report.
	ErrParticipantRetired = errors.New("participant stopped sharing")
)

// NotFoundError names the participant a lookup failed on. It matches
// ErrParticipantNotFound with errors.Is.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("participant %q not found", e.ID)
}

// Is reports whether target is ErrParticipantNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrParticipantNotFound
}

// RegistryEntry is the last known position of one participant.
type RegistryEntry struct {
	Position models.PositionReport
	Marker   MarkerHandle // zero while the participant is retired
	Retired  bool
}

// Registry maps participant IDs to their latest position and marker. Entries
// are created on first report and updated in place; nothing removes them.
//
// A Registry is owned by the viewer event loop and is not safe for
// concurrent use.
type Registry struct {
	entries  map[string]*RegistryEntry
	renderer Renderer
	onClick  func(id string)
}

// NewRegistry creates a registry drawing on renderer. onClick is bound to
// every marker with the participant ID it represents.
func NewRegistry(renderer Renderer, onClick func(id string)) *Registry {
	return &Registry{
		entries:  make(map[string]*RegistryEntry),
		renderer: renderer,
		onClick:  onClick,
	}
}

// ApplyReport upserts the entry for report.ParticipantID, last write wins.
// A retire report removes the marker and keeps the entry with its previous
// position. Any other report moves the marker, creating it if it is missing,
// and rebinds its click handler to the report's participant.
func (r *Registry) ApplyReport(report models.PositionReport) {
	if report.IsRetire() {
		r.retire(report)
		return
	}
	r.place(report)
}

// ApplyLocal records a fix from the local position source. It never takes the
// retire path: a local sample at exactly (0,0) is still our position.
func (r *Registry) ApplyLocal(report models.PositionReport) {
	r.place(report)
}

func (r *Registry) entry(id string) (*RegistryEntry, bool) {
	entry, exists := r.entries[id]
	if !exists {
		entry = &RegistryEntry{}
		r.entries[id] = entry
	}
	return entry, exists
}

func (r *Registry) retire(report models.PositionReport) {
	entry, exists := r.entry(report.ParticipantID)
	if entry.Marker != 0 {
		r.renderer.RemoveMarker(entry.Marker)
		entry.Marker = 0
	}
	if !exists {
		entry.Position = report
	}
	entry.Retired = true
}

func (r *Registry) place(report models.PositionReport) {
	entry, _ := r.entry(report.ParticipantID)
	entry.Position = report
	entry.Retired = false
	r.materialize(report.ParticipantID, entry)
}

// materialize moves the entry's marker to its position, recreating it when
// the renderer no longer knows the handle, and binds the click handler.
func (r *Registry) materialize(id string, entry *RegistryEntry) {
	pos := entry.Position.Coordinate()

	if entry.Marker == 0 || r.renderer.MoveMarker(entry.Marker, pos) != nil {
		entry.Marker = r.renderer.CreateMarker(pos)
	}

	if r.onClick == nil {
		return
	}
	handler := func() { r.onClick(id) }
	if err := r.renderer.BindClick(entry.Marker, handler); err != nil {
		entry.Marker = r.renderer.CreateMarker(pos)
		_ = r.renderer.BindClick(entry.Marker, handler)
	}
}

// Lookup returns the entry for id or a *NotFoundError.
func (r *Registry) Lookup(id string) (RegistryEntry, error) {
	entry, ok := r.entries[id]
	if !ok {
		return RegistryEntry{}, &NotFoundError{ID: id}
	}
	return *entry, nil
}

// LookupPair looks up both participants before returning. The error names
// the first ID that is missing.
func (r *Registry) LookupPair(a, b string) (RegistryEntry, RegistryEntry, error) {
	ea, err := r.Lookup(a)
	if err != nil {
		return RegistryEntry{}, RegistryEntry{}, err
	}
	eb, err := r.Lookup(b)
	if err != nil {
		return RegistryEntry{}, RegistryEntry{}, err
	}
	return ea, eb, nil
}

// Contains reports whether id has an entry.
func (r *Registry) Contains(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// IDs returns every participant ID in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
