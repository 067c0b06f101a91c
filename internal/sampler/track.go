// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package sampler

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tomtom215/meridian/internal/geo"
	"github.com/tomtom215/meridian/internal/validation"
)

// ErrEmptyTrack is returned when a track file has no points.
var ErrEmptyTrack = errors.New("track has no points")

// TrackPoint is one fix in a track file.
type TrackPoint struct {
	Lat float64 `yaml:"lat" validate:"latitude"`
	Lon float64 `yaml:"lon" validate:"longitude"`
}

// TrackFile is the YAML layout of a recorded or scripted track:
//
//	interval: 2s   # optional, overrides viewer.sample_interval
//	loop: true     # restart from the first point when done
//	points:
//	  - {lat: 51.5074, lon: -0.1278}
//	  - {lat: 51.5080, lon: -0.1270}
type TrackFile struct {
	Interval time.Duration `yaml:"interval"`
	Loop     bool          `yaml:"loop"`
	Points   []TrackPoint  `yaml:"points" validate:"dive"`
}

// LoadTrack reads and validates a track file.
func LoadTrack(path string) (*TrackFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read track %s: %w", path, err)
	}
	return ParseTrack(data)
}

// ParseTrack decodes and validates track YAML.
func ParseTrack(data []byte) (*TrackFile, error) {
	var tf TrackFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse track: %w", err)
	}
	if len(tf.Points) == 0 {
		return nil, ErrEmptyTrack
	}
	if tf.Interval < 0 {
		return nil, fmt.Errorf("parse track: negative interval %s", tf.Interval)
	}
	if verr := validation.ValidateStruct(tf); verr != nil {
		return nil, fmt.Errorf("parse track: %w", verr)
	}
	return &tf, nil
}

// Track replays a TrackFile point by point.
type Track struct {
	points []geo.Coordinate
	loop   bool
	next   int
}

// NewTrack creates a Source from a parsed track file.
func NewTrack(tf *TrackFile) *Track {
	points := make([]geo.Coordinate, len(tf.Points))
	for i, p := range tf.Points {
		points[i] = geo.Coordinate{Lat: p.Lat, Lon: p.Lon}
	}
	return &Track{points: points, loop: tf.Loop}
}

// Next returns the next point. A non-looping track reports false once every
// point has been returned.
func (t *Track) Next() (geo.Coordinate, bool) {
	if t.next >= len(t.points) {
		if !t.loop || len(t.points) == 0 {
			return geo.Coordinate{}, false
		}
		t.next = 0
	}
	c := t.points[t.next]
	t.next++
	return c, true
}
