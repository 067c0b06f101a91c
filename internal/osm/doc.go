// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package osm provides HTTP adapters for the OpenStreetMap ecosystem services
the viewer uses as collaborators:

  - OSRMRouter implements geo.Router with the OSRM route service
  - NominatimGeocoder implements geo.Geocoder with Nominatim search

Both adapters run every call through a sony/gobreaker circuit breaker whose
state is exported as circuit_breaker_* metrics, and record call latency in
collaborator_call_duration_seconds. The geocoder additionally rate limits
with golang.org/x/time/rate and caches answers in an internal/cache LRU.

Timeouts come from the routing.timeout and geocoding.timeout settings and are
applied by the HTTP client; callers add none of their own.
*/
package osm
