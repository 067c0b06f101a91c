// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRouteNotFound is returned when the routing service finds no path.
	ErrRouteNotFound = errors.New("route not found")

	// ErrPlaceNotFound is returned when the geocoding service has no match.
	ErrPlaceNotFound = errors.New("place not found")

	// ErrRoutingUnavailable is returned when no Router is configured.
	ErrRoutingUnavailable = errors.New("routing service not configured")

	// ErrGeocodingUnavailable is returned when no Geocoder is configured.
	ErrGeocodingUnavailable = errors.New("geocoding service not configured")
)

// Router computes a road path between two waypoints. Implementations return
// ErrRouteNotFound, or an empty slice, when no path exists.
type Router interface {
	Route(ctx context.Context, origin, destination Coordinate) ([]Coordinate, error)
}

// Geocoder resolves a free-text place name. Implementations return
// ErrPlaceNotFound when nothing matches.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (Coordinate, error)
}

// Path is an ordered polyline returned by a Router.
type Path []Coordinate

// Length returns the path length in kilometres, rounded to two decimals.
func (p Path) Length() float64 {
	return PathLength(p)
}

// Engine delegates routing and geocoding to external collaborators. It adds
// no timeouts or retries; those belong to the adapters.
type Engine struct {
	router   Router
	geocoder Geocoder
}

// NewEngine creates an Engine. Either collaborator may be nil, in which case
// the matching method returns ErrRoutingUnavailable or ErrGeocodingUnavailable.
func NewEngine(router Router, geocoder Geocoder) *Engine {
	return &Engine{router: router, geocoder: geocoder}
}

// Route asks the Router for a path from a to b with exactly those two waypoints.
func (e *Engine) Route(ctx context.Context, a, b Coordinate) (Path, error) {
	if e.router == nil {
		return nil, ErrRoutingUnavailable
	}

	points, err := e.router.Route(ctx, a, b)
	if err != nil {
		return nil, fmt.Errorf("route %s -> %s: %w", a, b, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("route %s -> %s: %w", a, b, ErrRouteNotFound)
	}
	return Path(points), nil
}

// Geocode resolves a place name to a coordinate.
func (e *Engine) Geocode(ctx context.Context, place string) (Coordinate, error) {
	if e.geocoder == nil {
		return Coordinate{}, ErrGeocodingUnavailable
	}

	place = strings.TrimSpace(place)
	if place == "" {
		return Coordinate{}, fmt.Errorf("geocode: empty place name: %w", ErrPlaceNotFound)
	}

	coord, err := e.geocoder.Geocode(ctx, place)
	if err != nil {
		return Coordinate{}, fmt.Errorf("geocode %q: %w", place, err)
	}
	return coord, nil
}
