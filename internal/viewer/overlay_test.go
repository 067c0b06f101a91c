// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package viewer

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/tomtom215/meridian/internal/geo"
)

func TestOverlay_AtMostOnePerKind(t *testing.T) {
	fr := newFakeRenderer()
	o := NewOverlay(fr)
	rng := rand.New(rand.NewSource(7))

	point := func() geo.Coordinate {
		return geo.Coordinate{Lat: rng.Float64()*180 - 90, Lon: rng.Float64()*360 - 180}
	}

	for i := 0; i < 200; i++ {
		switch rng.Intn(4) {
		case 0:
			o.SetDistanceOverlay(point(), point())
		case 1:
			o.SetRouteOverlay([]geo.Coordinate{point(), point(), point()})
		case 2:
			o.ClearRoute()
		case 3:
			o.ClearDistance()
		}

		if n := len(fr.polylinesOf("distance")); n > 1 {
			t.Fatalf("step %d: %d distance lines", i, n)
		}
		if n := len(fr.polylinesOf("route")); n > 1 {
			t.Fatalf("step %d: %d route lines", i, n)
		}
		if o.HasDistance() != (len(fr.polylinesOf("distance")) == 1) {
			t.Fatalf("step %d: HasDistance out of sync", i)
		}
		if o.HasRoute() != (len(fr.polylinesOf("route")) == 1) {
			t.Fatalf("step %d: HasRoute out of sync", i)
		}
	}
}

func TestOverlay_RepeatedIdenticalCalls(t *testing.T) {
	fr := newFakeRenderer()
	o := NewOverlay(fr)
	a := geo.Coordinate{Lat: 1, Lon: 1}
	b := geo.Coordinate{Lat: 2, Lon: 2}

	for i := 0; i < 3; i++ {
		o.SetDistanceOverlay(a, b)
	}

	lines := fr.polylinesOf("distance")
	if len(lines) != 1 {
		t.Fatalf("%d distance lines, want 1", len(lines))
	}
	if lines[0].style.Color != "red" || len(lines[0].points) != 2 {
		t.Errorf("line = %+v", lines[0])
	}
}

func TestOverlay_KindsIndependent(t *testing.T) {
	fr := newFakeRenderer()
	o := NewOverlay(fr)

	o.SetDistanceOverlay(geo.Coordinate{}, geo.Coordinate{Lat: 1})
	o.SetRouteOverlay([]geo.Coordinate{{Lat: 1}, {Lat: 2}})
	o.ClearRoute()

	if !o.HasDistance() || o.HasRoute() {
		t.Errorf("HasDistance=%v HasRoute=%v", o.HasDistance(), o.HasRoute())
	}
}

func TestGate(t *testing.T) {
	open := NewGate("")
	if err := open.Check(); err != nil {
		t.Errorf("empty phrase gate should be open: %v", err)
	}

	g := NewGate("sesame")
	if err := g.Check(); err != ErrLocked {
		t.Errorf("Check() = %v, want ErrLocked", err)
	}
	if err := g.Unlock("wrong"); err != ErrWrongPhrase {
		t.Errorf("Unlock(wrong) = %v", err)
	}
	if err := g.Unlock("sesame"); err != nil {
		t.Errorf("Unlock(sesame) = %v", err)
	}
	if err := g.Check(); err != nil {
		t.Errorf("Check() after unlock = %v", err)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line    string
		want    Command
		wantErr error
	}{
		{"start alice", Command{CmdStart, "alice"}, nil},
		{"  LOCATE  New York City ", Command{CmdLocate, "New York City"}, nil},
		{"list", Command{CmdList, ""}, nil},
		{"heading 270", Command{CmdHeading, "270"}, nil},
		{"distance", Command{}, ErrMissingArgument},
		{"fly away", Command{}, ErrUnknownCommand},
		{"", Command{}, ErrUnknownCommand},
	}

	for _, tt := range tests {
		got, err := ParseCommand(tt.line)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseCommand(%q) error = %v, want %v", tt.line, err, tt.wantErr)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseCommand(%q) = %+v, %v; want %+v", tt.line, got, err, tt.want)
		}
	}
}
