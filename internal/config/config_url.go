// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package config

import (
	"fmt"
	"net/url"
	"slices"
)

// parseServiceURL parses rawURL and checks it has one of schemes and a host.
func parseServiceURL(rawURL, envVar string, schemes ...string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid URL: %w", envVar, err)
	}
	if !slices.Contains(schemes, u.Scheme) {
		return nil, fmt.Errorf("%s scheme must be one of %v, got %q", envVar, schemes, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%s host is required", envVar)
	}
	return u, nil
}

// validateHTTPURL accepts an http(s) base URL. Collaborator clients append
// their own paths, so a path or query here is rejected.
func validateHTTPURL(rawURL, envVar string) error {
	u, err := parseServiceURL(rawURL, envVar, "http", "https")
	if err != nil {
		return err
	}
	if u.Path != "" && u.Path != "/" {
		return fmt.Errorf("%s must be a base URL, remove path %q", envVar, u.Path)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("%s must not have a query string", envVar)
	}
	return nil
}

// validateWebSocketURL accepts a ws(s) URL; the relay path (usually /ws) is
// part of it.
func validateWebSocketURL(rawURL, envVar string) error {
	_, err := parseServiceURL(rawURL, envVar, "ws", "wss")
	return err
}
