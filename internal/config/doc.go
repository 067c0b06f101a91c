// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package config loads and validates Meridian configuration.

# Configuration Sources

Values are layered with koanf, later layers overriding earlier ones:

  - Struct defaults (defaultConfig)
  - An optional YAML file: $CONFIG_PATH, ./meridian.yaml, /etc/meridian/config.yaml
  - Environment variables, mapped explicitly by envTransformFunc

# Environment Variables

Relay listener:
  - HTTP_HOST: bind address (default: 0.0.0.0)
  - HTTP_PORT: listen port (default: 3000)
  - STATIC_DIR: directory of viewer assets served on / (default: public)
  - ENVIRONMENT: development, staging or production (default: development)
  - CORS_ORIGINS: comma-separated allowed origins (default: *)
  - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW / DISABLE_RATE_LIMIT

Relay hub:
  - RELAY_SEND_BUFFER, RELAY_BROADCAST_BUFFER, RELAY_MAX_MESSAGE_SIZE,
    RELAY_WRITE_WAIT, RELAY_PONG_WAIT

Viewer:
  - VIEWER_RELAY_URL, VIEWER_PARTICIPANT_ID, VIEWER_UNLOCK_PHRASE,
    VIEWER_SAMPLE_INTERVAL, VIEWER_TRACK_FILE, VIEWER_START_LAT, VIEWER_START_LON

Collaborators:
  - ROUTING_ENABLED, ROUTING_BASE_URL, ROUTING_PROFILE, ROUTING_TIMEOUT
  - GEOCODING_ENABLED, GEOCODING_BASE_URL, GEOCODING_USER_AGENT, GEOCODING_RPS,
    GEOCODING_CACHE_SIZE, GEOCODING_CACHE_TTL, GEOCODING_TIMEOUT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	hub := relay.NewHub(cfg.Relay)
*/
package config
