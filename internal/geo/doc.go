// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package geo holds the derived-view math used by the viewer and the Engine
that delegates routing and geocoding to external services.

Distances use the haversine formula with a 6371 km Earth radius and are
rounded to two decimals, so Distance({0,0}, {0,1}) is 111.19. Bearings are
initial great-circle bearings in [0, 360); BearingToNorth is the bearing
towards {90, 0}.

The Router and Geocoder interfaces are implemented by internal/osm
(OSRM and Nominatim over HTTP). Engine itself performs no I/O.
*/
package geo
