// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package osm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/meridian/internal/config"
	"github.com/tomtom215/meridian/internal/geo"
	"github.com/tomtom215/meridian/internal/metrics"
)

const serviceRouting = "routing"

// OSRMRouter implements geo.Router against the OSRM HTTP route service.
//
//	GET {base}/route/v1/{profile}/{lon},{lat};{lon},{lat}?overview=full&geometries=geojson
type OSRMRouter struct {
	client  *http.Client
	baseURL string
	profile string
	breaker *breaker[[]geo.Coordinate]
}

// osrmResponse is the subset of the OSRM route response the router reads.
type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"` // [lon, lat]
		} `json:"geometry"`
	} `json:"routes"`
}

// NewOSRMRouter creates a router from cfg.
func NewOSRMRouter(cfg config.RoutingConfig) *OSRMRouter {
	return &OSRMRouter{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		profile: cfg.Profile,
		breaker: newBreaker[[]geo.Coordinate]("osrm-routing"),
	}
}

// Route returns the road path from origin to destination with exactly those
// two waypoints.
func (r *OSRMRouter) Route(ctx context.Context, origin, destination geo.Coordinate) ([]geo.Coordinate, error) {
	start := time.Now()
	points, err := r.breaker.execute(func() ([]geo.Coordinate, error) {
		return r.queryRoute(ctx, origin, destination)
	})
	metrics.RecordCollaboratorCall(serviceRouting, outcome(err), time.Since(start))
	return points, err
}

func (r *OSRMRouter) queryRoute(ctx context.Context, origin, destination geo.Coordinate) ([]geo.Coordinate, error) {
	endpoint := fmt.Sprintf("%s/route/v1/%s/%s;%s?overview=full&geometries=geojson",
		r.baseURL, url.PathEscape(r.profile), lonLat(origin), lonLat(destination))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query OSRM: %w", err)
	}
	defer resp.Body.Close()

	var result osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode OSRM response (status %d): %w", resp.StatusCode, err)
	}

	return convertOSRMResponse(&result, resp.StatusCode)
}

// convertOSRMResponse maps an OSRM answer to a path. OSRM reports "no route"
// with code NoRoute, sometimes on a 400 status.
func convertOSRMResponse(result *osrmResponse, status int) ([]geo.Coordinate, error) {
	switch result.Code {
	case "Ok":
	case "NoRoute", "NoSegment":
		return nil, geo.ErrRouteNotFound
	default:
		return nil, fmt.Errorf("OSRM error (%s, status %d): %s", result.Code, status, result.Message)
	}

	if len(result.Routes) == 0 || len(result.Routes[0].Geometry.Coordinates) == 0 {
		return nil, geo.ErrRouteNotFound
	}

	raw := result.Routes[0].Geometry.Coordinates
	points := make([]geo.Coordinate, 0, len(raw))
	for _, pair := range raw {
		if len(pair) < 2 {
			return nil, fmt.Errorf("OSRM returned malformed coordinate %v", pair)
		}
		points = append(points, geo.Coordinate{Lat: pair[1], Lon: pair[0]})
	}
	return points, nil
}

func lonLat(c geo.Coordinate) string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}
