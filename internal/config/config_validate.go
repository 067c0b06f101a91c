// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package config

import (
	"fmt"
	"time"
)

// Validate checks that the configuration is usable. Error messages name the
// environment variable that controls the offending value.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateRelay,
		c.validateSecurity,
		c.validateLogging,
		c.validateViewer,
		c.validateRouting,
		c.validateGeocoding,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

var validEnvironments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if !validEnvironments[c.Server.Environment] {
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

const (
	minMessageSize = 64
	maxMessageSize = 1 << 20
)

func (c *Config) validateRelay() error {
	if c.Relay.SendBuffer < 1 {
		return fmt.Errorf("RELAY_SEND_BUFFER must be at least 1")
	}
	if c.Relay.BroadcastBuffer < 1 {
		return fmt.Errorf("RELAY_BROADCAST_BUFFER must be at least 1")
	}
	if c.Relay.MaxMessageSize < minMessageSize || c.Relay.MaxMessageSize > maxMessageSize {
		return fmt.Errorf("RELAY_MAX_MESSAGE_SIZE must be between %d and %d", minMessageSize, maxMessageSize)
	}
	if c.Relay.WriteWait <= 0 {
		return fmt.Errorf("RELAY_WRITE_WAIT must be positive")
	}
	if c.Relay.PongWait < time.Second {
		return fmt.Errorf("RELAY_PONG_WAIT must be at least 1s")
	}
	return nil
}

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateSecurity() error {
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must list at least one origin (use * to allow all)")
	}
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// HasWildcardCORS reports whether any origin is allowed.
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS reports whether a wildcard origin is configured in
// production. The relay accepts it but logs a warning at startup.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.IsProduction() && c.HasWildcardCORS()
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validateViewer() error {
	if err := validateWebSocketURL(c.Viewer.RelayURL, "VIEWER_RELAY_URL"); err != nil {
		return err
	}
	if c.Viewer.SampleInterval < 100*time.Millisecond {
		return fmt.Errorf("VIEWER_SAMPLE_INTERVAL must be at least 100ms")
	}
	if c.Viewer.StartLat < -90 || c.Viewer.StartLat > 90 {
		return fmt.Errorf("VIEWER_START_LAT must be between -90 and 90")
	}
	if c.Viewer.StartLon < -180 || c.Viewer.StartLon > 180 {
		return fmt.Errorf("VIEWER_START_LON must be between -180 and 180")
	}
	return nil
}

var validRoutingProfiles = map[string]bool{
	"driving": true,
	"walking": true,
	"cycling": true,
}

func (c *Config) validateRouting() error {
	if !c.Routing.Enabled {
		return nil
	}
	if err := validateHTTPURL(c.Routing.BaseURL, "ROUTING_BASE_URL"); err != nil {
		return err
	}
	if !validRoutingProfiles[c.Routing.Profile] {
		return fmt.Errorf("ROUTING_PROFILE must be one of: driving, walking, cycling")
	}
	if c.Routing.Timeout <= 0 {
		return fmt.Errorf("ROUTING_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateGeocoding() error {
	if !c.Geocoding.Enabled {
		return nil
	}
	if err := validateHTTPURL(c.Geocoding.BaseURL, "GEOCODING_BASE_URL"); err != nil {
		return err
	}
	if c.Geocoding.UserAgent == "" {
		return fmt.Errorf("GEOCODING_USER_AGENT is required when GEOCODING_ENABLED=true")
	}
	if c.Geocoding.RequestsPerSecond <= 0 {
		return fmt.Errorf("GEOCODING_RPS must be positive")
	}
	if c.Geocoding.CacheSize < 0 {
		return fmt.Errorf("GEOCODING_CACHE_SIZE must not be negative")
	}
	if c.Geocoding.Timeout <= 0 {
		return fmt.Errorf("GEOCODING_TIMEOUT must be positive")
	}
	return nil
}
