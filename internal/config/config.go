// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
//
// Configuration is loaded in layers by LoadWithKoanf:
//
//  1. Struct defaults (defaultConfig)
//  2. YAML config file (CONFIG_PATH, meridian.yaml, /etc/meridian/config.yaml)
//  3. Environment variables (see envTransformFunc)
//
// The relay subcommand reads Server, Relay and Security. The viewer subcommand
// reads Viewer, Routing and Geocoding. Logging applies to both.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Relay     RelayConfig     `koanf:"relay"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Viewer    ViewerConfig    `koanf:"viewer"`
	Routing   RoutingConfig   `koanf:"routing"`
	Geocoding GeocodingConfig `koanf:"geocoding"`
}

// ServerConfig holds HTTP listener settings for the relay.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	StaticDir   string        `koanf:"static_dir"`  // Viewer assets served on "/"; empty disables static serving
	Environment string        `koanf:"environment"` // development, staging, production
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RelayConfig tunes the broadcast hub and per-connection pumps.
//
// Environment Variables:
//   - RELAY_SEND_BUFFER: per-peer outbound queue length (default: 256)
//   - RELAY_BROADCAST_BUFFER: hub inbound queue length (default: 256)
//   - RELAY_MAX_MESSAGE_SIZE: largest accepted frame in bytes (default: 4096)
//   - RELAY_WRITE_WAIT: deadline for a single write (default: 10s)
//   - RELAY_PONG_WAIT: read deadline refreshed by pongs (default: 60s)
type RelayConfig struct {
	SendBuffer      int           `koanf:"send_buffer"`
	BroadcastBuffer int           `koanf:"broadcast_buffer"`
	MaxMessageSize  int64         `koanf:"max_message_size"`
	WriteWait       time.Duration `koanf:"write_wait"`
	PongWait        time.Duration `koanf:"pong_wait"`
}

// PingPeriod returns the keepalive interval derived from PongWait.
func (r RelayConfig) PingPeriod() time.Duration {
	return (r.PongWait * 9) / 10
}

// SecurityConfig holds CORS, WebSocket origin and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// ViewerConfig holds settings for the headless viewer.
//
// Environment Variables:
//   - VIEWER_RELAY_URL: WebSocket URL of the relay (default: ws://127.0.0.1:3000/ws)
//   - VIEWER_PARTICIPANT_ID: start tracking immediately under this id (optional)
//   - VIEWER_UNLOCK_PHRASE: phrase gating lookup/locate commands (optional)
//   - VIEWER_SAMPLE_INTERVAL: interval between local samples (default: 5s)
//   - VIEWER_TRACK_FILE: YAML track to replay instead of a random walk (optional)
//   - VIEWER_START_LAT / VIEWER_START_LON: random walk origin
type ViewerConfig struct {
	RelayURL       string        `koanf:"relay_url"`
	ParticipantID  string        `koanf:"participant_id"`
	UnlockPhrase   string        `koanf:"unlock_phrase"`
	SampleInterval time.Duration `koanf:"sample_interval"`
	TrackFile      string        `koanf:"track_file"`
	StartLat       float64       `koanf:"start_lat"`
	StartLon       float64       `koanf:"start_lon"`
}

// RoutingConfig configures the OSRM routing adapter.
type RoutingConfig struct {
	Enabled bool          `koanf:"enabled"`
	BaseURL string        `koanf:"base_url"`
	Profile string        `koanf:"profile"` // driving, walking, cycling
	Timeout time.Duration `koanf:"timeout"`
}

// GeocodingConfig configures the Nominatim geocoding adapter.
type GeocodingConfig struct {
	Enabled           bool          `koanf:"enabled"`
	BaseURL           string        `koanf:"base_url"`
	UserAgent         string        `koanf:"user_agent"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	CacheSize         int           `koanf:"cache_size"`
	CacheTTL          time.Duration `koanf:"cache_ttl"`
	Timeout           time.Duration `koanf:"timeout"`
}
