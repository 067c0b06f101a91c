// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package sampler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/meridian/internal/config"
	"github.com/tomtom215/meridian/internal/geo"
	"github.com/tomtom215/meridian/internal/logging"
)

// Source produces successive position fixes. ok is false when the source is
// exhausted.
type Source interface {
	Next() (c geo.Coordinate, ok bool)
}

// Sampler emits fixes from a Source at a fixed interval, standing in for a
// device geolocation feed.
type Sampler struct {
	src      Source
	interval time.Duration
	out      chan geo.Coordinate
	logger   zerolog.Logger
}

// New creates a sampler over src. The first fix is emitted immediately.
func New(src Source, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Sampler{
		src:      src,
		interval: interval,
		out:      make(chan geo.Coordinate, 1),
		logger:   logging.WithComponent("sampler"),
	}
}

// FromConfig replays cfg.TrackFile when set, otherwise walks randomly from
// the configured start point.
func FromConfig(cfg config.ViewerConfig) (*Sampler, error) {
	if cfg.TrackFile != "" {
		tf, err := LoadTrack(cfg.TrackFile)
		if err != nil {
			return nil, err
		}
		interval := cfg.SampleInterval
		if tf.Interval > 0 {
			interval = tf.Interval
		}
		logging.Info().
			Str("track_file", cfg.TrackFile).
			Int("points", len(tf.Points)).
			Bool("loop", tf.Loop).
			Dur("interval", interval).
			Msg("replaying track")
		return New(NewTrack(tf), interval), nil
	}

	start := geo.Coordinate{Lat: cfg.StartLat, Lon: cfg.StartLon}
	seed := uint64(time.Now().UnixNano()) //nolint:gosec // simulation seed
	return New(NewRandomWalk(start, DefaultStepDegrees, seed), cfg.SampleInterval), nil
}

// Samples is the channel the viewer reads fixes from.
func (s *Sampler) Samples() <-chan geo.Coordinate {
	return s.out
}

// Serve implements suture.Service. When the source is exhausted the sampler
// stays idle until ctx is canceled, so the last fix stands.
func (s *Sampler) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		c, ok := s.src.Next()
		if !ok {
			s.logger.Info().Msg("source exhausted, holding last position")
			<-ctx.Done()
			return ctx.Err()
		}

		select {
		case s.out <- c:
		case <-ctx.Done():
			return ctx.Err()
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// String implements fmt.Stringer for suture logs.
func (s *Sampler) String() string {
	return "sampler"
}
