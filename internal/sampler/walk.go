// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package sampler

import (
	"math"
	"math/rand/v2"

	"github.com/tomtom215/meridian/internal/geo"
)

// DefaultStepDegrees is roughly 50 m of latitude.
const DefaultStepDegrees = 0.0005

// RandomWalk wanders from a start point in small random steps. It never
// ends.
type RandomWalk struct {
	pos     geo.Coordinate
	step    float64
	rng     *rand.Rand
	started bool
}

// NewRandomWalk creates a walk starting at start. seed makes the walk
// reproducible.
func NewRandomWalk(start geo.Coordinate, step float64, seed uint64) *RandomWalk {
	if step <= 0 {
		step = DefaultStepDegrees
	}
	return &RandomWalk{
		pos:  start,
		step: step,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Next returns the start point first, then one step per call.
func (w *RandomWalk) Next() (geo.Coordinate, bool) {
	if !w.started {
		w.started = true
		return w.pos, true
	}

	angle := w.rng.Float64() * 2 * math.Pi
	lat := w.pos.Lat + w.step*math.Cos(angle)
	lon := w.pos.Lon + w.step*math.Sin(angle)

	// Bounce off the poles and wrap at the antimeridian.
	if lat > 90 {
		lat = 180 - lat
	} else if lat < -90 {
		lat = -180 - lat
	}
	if lon > 180 {
		lon -= 360
	} else if lon < -180 {
		lon += 360
	}

	// (0,0) is the retire sentinel on the wire.
	if lat == 0 && lon == 0 {
		lon = w.step
	}

	w.pos = geo.Coordinate{Lat: lat, Lon: lon}
	return w.pos, true
}
