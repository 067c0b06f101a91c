// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package sampler

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/meridian/internal/config"
	"github.com/tomtom215/meridian/internal/geo"
	"github.com/tomtom215/meridian/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "error", Format: "console", Output: io.Discard})
}

func TestParseTrack(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		points  int
	}{
		{
			name:   "flow style",
			yaml:   "interval: 2s\nloop: true\npoints:\n  - {lat: 51.5, lon: -0.12}\n  - {lat: 51.6, lon: -0.13}\n",
			points: 2,
		},
		{
			name:   "block style",
			yaml:   "points:\n  - lat: 1\n    lon: 2\n",
			points: 1,
		},
		{name: "empty", yaml: "loop: true\n", wantErr: true},
		{name: "latitude out of range", yaml: "points:\n  - {lat: 91, lon: 0}\n", wantErr: true},
		{name: "longitude out of range", yaml: "points:\n  - {lat: 0, lon: -181}\n", wantErr: true},
		{name: "negative interval", yaml: "interval: -1s\npoints:\n  - {lat: 1, lon: 1}\n", wantErr: true},
		{name: "not yaml", yaml: "points: [", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf, err := ParseTrack([]byte(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTrack() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(tf.Points) != tt.points {
				t.Errorf("points = %d, want %d", len(tf.Points), tt.points)
			}
		})
	}

	if _, err := ParseTrack([]byte("loop: true\n")); !errors.Is(err, ErrEmptyTrack) {
		t.Errorf("empty track error = %v, want ErrEmptyTrack", err)
	}
}

func TestTrack_Next(t *testing.T) {
	tf := &TrackFile{Points: []TrackPoint{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}}

	once := NewTrack(tf)
	var got []geo.Coordinate
	for {
		c, ok := once.Next()
		if !ok {
			break
		}
		got = append(got, c)
	}
	if len(got) != 2 || got[1] != (geo.Coordinate{Lat: 2, Lon: 2}) {
		t.Errorf("non-looping track = %v", got)
	}

	tf.Loop = true
	looping := NewTrack(tf)
	for i := 0; i < 5; i++ {
		c, ok := looping.Next()
		want := tf.Points[i%2]
		if !ok || c.Lat != want.Lat {
			t.Fatalf("step %d = %v, %v", i, c, ok)
		}
	}
}

func TestRandomWalk(t *testing.T) {
	start := geo.Coordinate{Lat: 51.5, Lon: -0.12}
	w := NewRandomWalk(start, 0.001, 42)

	first, _ := w.Next()
	if first != start {
		t.Errorf("first fix = %v, want start %v", first, start)
	}

	prev := first
	for i := 0; i < 100; i++ {
		c, ok := w.Next()
		if !ok || !c.Valid() {
			t.Fatalf("step %d = %v, %v", i, c, ok)
		}
		if d := geo.Distance(prev, c); d > 0.12 {
			t.Fatalf("step %d moved %.3f km", i, d)
		}
		prev = c
	}

	// Same seed, same walk.
	a, b := NewRandomWalk(start, 0.001, 7), NewRandomWalk(start, 0.001, 7)
	for i := 0; i < 10; i++ {
		ca, _ := a.Next()
		cb, _ := b.Next()
		if ca != cb {
			t.Fatalf("seeded walks diverged at step %d", i)
		}
	}
}

func TestRandomWalk_StaysInRange(t *testing.T) {
	w := NewRandomWalk(geo.Coordinate{Lat: 89.99, Lon: 179.99}, 0.5, 1)
	for i := 0; i < 200; i++ {
		if c, _ := w.Next(); !c.Valid() {
			t.Fatalf("step %d left the globe: %v", i, c)
		}
	}
}

func TestSampler_Serve(t *testing.T) {
	tf := &TrackFile{Points: []TrackPoint{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}}
	s := New(NewTrack(tf), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ctx) }()

	for i, want := range tf.Points {
		select {
		case c := <-s.Samples():
			if c.Lat != want.Lat {
				t.Errorf("sample %d = %v", i, c)
			}
		case <-time.After(time.Second):
			t.Fatalf("sample %d not emitted", i)
		}
	}

	// Exhausted: no more samples, but Serve keeps running.
	select {
	case c := <-s.Samples():
		t.Errorf("unexpected sample %v", c)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

func TestFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.yaml")
	if err := os.WriteFile(path, []byte("interval: 250ms\npoints:\n  - {lat: 3, lon: 4}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := FromConfig(config.ViewerConfig{TrackFile: path, SampleInterval: time.Second})
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}
	if s.interval != 250*time.Millisecond {
		t.Errorf("interval = %v, want the track's 250ms", s.interval)
	}

	s, err = FromConfig(config.ViewerConfig{StartLat: 10, StartLon: 20, SampleInterval: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if c, _ := s.src.Next(); c != (geo.Coordinate{Lat: 10, Lon: 20}) {
		t.Errorf("walk starts at %v", c)
	}

	if _, err := FromConfig(config.ViewerConfig{TrackFile: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Error("missing track file should fail")
	}
}
