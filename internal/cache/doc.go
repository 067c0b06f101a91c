// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package cache provides a generic, thread-safe LRU cache with TTL.

It fronts the geocoding collaborator so repeated lookups of the same place
name do not hit the rate-limited Nominatim service.

	places := cache.NewLRU[geo.Coordinate]("geocode", 512, 24*time.Hour)
	places.Add("paris", geo.Coordinate{Lat: 48.8566, Lon: 2.3522})
	if c, ok := places.Get("paris"); ok {
	    fmt.Println(c)
	}

Hits, misses and evictions are exported as cache_hits_total,
cache_misses_total and cache_evictions_total with a cache_type label equal
to the cache name.
*/
package cache
