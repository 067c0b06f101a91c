// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package osm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/meridian/internal/cache"
	"github.com/tomtom215/meridian/internal/config"
	"github.com/tomtom215/meridian/internal/geo"
	"github.com/tomtom215/meridian/internal/metrics"
)

const serviceGeocoding = "geocoding"

// NominatimGeocoder implements geo.Geocoder against the Nominatim search API.
// Requests are rate limited (the public instance allows 1 request/second),
// carry the configured User-Agent, and successful answers are cached.
type NominatimGeocoder struct {
	client    *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	places    *cache.LRU[geo.Coordinate]
	breaker   *breaker[geo.Coordinate]
}

// nominatimPlace is one search hit. Nominatim encodes coordinates as strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NewNominatimGeocoder creates a geocoder from cfg.
func NewNominatimGeocoder(cfg config.GeocodingConfig) *NominatimGeocoder {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &NominatimGeocoder{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		places:    cache.NewLRU[geo.Coordinate]("geocode", cfg.CacheSize, cfg.CacheTTL),
		breaker:   newBreaker[geo.Coordinate]("nominatim-geocoding"),
	}
}

// Geocode resolves place to the best-ranked match.
func (g *NominatimGeocoder) Geocode(ctx context.Context, place string) (geo.Coordinate, error) {
	key := strings.ToLower(strings.TrimSpace(place))
	if c, ok := g.places.Get(key); ok {
		return c, nil
	}

	start := time.Now()
	if err := g.limiter.Wait(ctx); err != nil {
		err = fmt.Errorf("rate limiter: %w", err)
		metrics.RecordCollaboratorCall(serviceGeocoding, outcome(err), time.Since(start))
		return geo.Coordinate{}, err
	}
	c, err := g.breaker.execute(func() (geo.Coordinate, error) {
		return g.search(ctx, place)
	})
	metrics.RecordCollaboratorCall(serviceGeocoding, outcome(err), time.Since(start))
	if err != nil {
		return geo.Coordinate{}, err
	}

	g.places.Add(key, c)
	return c, nil
}

func (g *NominatimGeocoder) search(ctx context.Context, place string) (geo.Coordinate, error) {
	q := url.Values{}
	q.Set("q", place)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	endpoint := g.baseURL + "/search?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to query Nominatim: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return geo.Coordinate{}, fmt.Errorf("Nominatim returned status %d", resp.StatusCode)
	}

	var hits []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to decode Nominatim response: %w", err)
	}
	return convertNominatimResponse(hits)
}

func convertNominatimResponse(hits []nominatimPlace) (geo.Coordinate, error) {
	if len(hits) == 0 {
		return geo.Coordinate{}, geo.ErrPlaceNotFound
	}

	lat, err := strconv.ParseFloat(hits[0].Lat, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid latitude %q: %w", hits[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(hits[0].Lon, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid longitude %q: %w", hits[0].Lon, err)
	}

	c := geo.Coordinate{Lat: lat, Lon: lon}
	if !c.Valid() {
		return geo.Coordinate{}, fmt.Errorf("Nominatim returned out-of-range coordinate %s", c)
	}
	return c, nil
}

// outcome classifies a collaborator result for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, geo.ErrRouteNotFound), errors.Is(err, geo.ErrPlaceNotFound):
		return "not_found"
	case errors.Is(err, ErrCircuitOpen):
		return "rejected"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
