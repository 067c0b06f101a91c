// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package osm

import (
	"errors"

	"github.com/goccy/go-json"
)

// errAny marks table cases that expect some error without a specific sentinel.
var errAny = errors.New("any error")

func jsonUnmarshal(s string, v interface{}) error {
	return json.Unmarshal([]byte(s), v)
}
