// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"meridian.yaml",
	"meridian.yml",
	"/etc/meridian/config.yaml",
	"/etc/meridian/config.yml",
}

// ConfigPathEnvVar is the environment variable that overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        3000,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			StaticDir:   "public",
			Environment: "development",
		},
		Relay: RelayConfig{
			SendBuffer:      256,
			BroadcastBuffer: 256,
			MaxMessageSize:  4096,
			WriteWait:       10 * time.Second,
			PongWait:        60 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Viewer: ViewerConfig{
			RelayURL:       "ws://127.0.0.1:3000/ws",
			SampleInterval: 5 * time.Second,
			StartLat:       51.5074,
			StartLon:       -0.1278,
		},
		Routing: RoutingConfig{
			Enabled: true,
			BaseURL: "https://router.project-osrm.org",
			Profile: "driving",
			Timeout: 10 * time.Second,
		},
		Geocoding: GeocodingConfig{
			Enabled:           true,
			BaseURL:           "https://nominatim.openstreetmap.org",
			UserAgent:         "meridian/1.0 (+https://github.com/tomtom215/meridian)",
			RequestsPerSecond: 1, // Nominatim usage policy
			CacheSize:         512,
			CacheTTL:          24 * time.Hour,
			Timeout:           10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration from defaults, an optional YAML file and
// environment variables, in increasing order of priority, then validates it.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
// CONFIG_PATH wins when it points at an existing file.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set via env.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored so the process environment cannot leak
// into configuration.
var envMappings = map[string]string{
	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"static_dir":   "server.static_dir",
	"environment":  "server.environment",

	// Relay
	"relay_send_buffer":      "relay.send_buffer",
	"relay_broadcast_buffer": "relay.broadcast_buffer",
	"relay_max_message_size": "relay.max_message_size",
	"relay_write_wait":       "relay.write_wait",
	"relay_pong_wait":        "relay.pong_wait",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Viewer
	"viewer_relay_url":       "viewer.relay_url",
	"viewer_participant_id":  "viewer.participant_id",
	"viewer_unlock_phrase":   "viewer.unlock_phrase",
	"viewer_sample_interval": "viewer.sample_interval",
	"viewer_track_file":      "viewer.track_file",
	"viewer_start_lat":       "viewer.start_lat",
	"viewer_start_lon":       "viewer.start_lon",

	// Routing (OSRM)
	"routing_enabled":  "routing.enabled",
	"routing_base_url": "routing.base_url",
	"routing_profile":  "routing.profile",
	"routing_timeout":  "routing.timeout",

	// Geocoding (Nominatim)
	"geocoding_enabled":    "geocoding.enabled",
	"geocoding_base_url":   "geocoding.base_url",
	"geocoding_user_agent": "geocoding.user_agent",
	"geocoding_rps":        "geocoding.requests_per_second",
	"geocoding_cache_size": "geocoding.cache_size",
	"geocoding_cache_ttl":  "geocoding.cache_ttl",
	"geocoding_timeout":    "geocoding.timeout",
}

// envTransformFunc transforms environment variable names to koanf paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - RELAY_SEND_BUFFER -> relay.send_buffer
//   - VIEWER_RELAY_URL -> viewer.relay_url
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
