// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package logging

import (
	"github.com/rs/zerolog"
)

// RelayEventLogger logs connection lifecycle and frame events for the
// broadcast relay with consistent field names.
type RelayEventLogger struct {
	logger zerolog.Logger
}

// NewRelayEventLogger creates a RelayEventLogger on top of the global logger.
func NewRelayEventLogger() *RelayEventLogger {
	return &RelayEventLogger{
		logger: WithComponent("relay"),
	}
}

// NewRelayEventLoggerWithLogger creates a RelayEventLogger with a custom logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRelayEventLoggerWithLogger(logger zerolog.Logger) *RelayEventLogger {
	return &RelayEventLogger{
		logger: logger.With().Str("component", "relay").Logger(),
	}
}

// LogPeerConnected logs a newly registered connection.
func (e *RelayEventLogger) LogPeerConnected(connectionID, remoteAddr, userAgent string, total int) {
	e.logger.Info().
		Str("connection_id", connectionID).
		Str("remote_addr", remoteAddr).
		Str("user_agent", SanitizeUserAgent(userAgent)).
		Int("connections", total).
		Msg("peer connected")
}

// LogPeerDisconnected logs a connection leaving the set.
func (e *RelayEventLogger) LogPeerDisconnected(connectionID string, total int) {
	e.logger.Info().
		Str("connection_id", connectionID).
		Int("connections", total).
		Msg("peer disconnected")
}

// LogPeerDropped logs a peer removed because its send queue was full.
func (e *RelayEventLogger) LogPeerDropped(connectionID, reason string) {
	e.logger.Warn().
		Str("connection_id", connectionID).
		Str("reason", reason).
		Msg("peer dropped")
}

// LogReportReceived logs an accepted report at debug level.
func (e *RelayEventLogger) LogReportReceived(connectionID, participantID string, lat, lon float64) {
	e.logger.Debug().
		Str("connection_id", connectionID).
		Str("participant_id", SanitizeParticipantID(participantID)).
		Float64("latitude", lat).
		Float64("longitude", lon).
		Msg("position report received")
}

// LogMalformedFrame logs a rejected inbound frame.
func (e *RelayEventLogger) LogMalformedFrame(connectionID string, payload []byte, err error) {
	e.logger.Warn().
		Str("connection_id", connectionID).
		Int("size", len(payload)).
		Str("payload", SanitizePayload(payload)).
		Err(err).
		Msg("malformed frame rejected")
}

// LogReadError logs an unexpected connection close.
func (e *RelayEventLogger) LogReadError(connectionID string, err error) {
	e.logger.Warn().
		Str("connection_id", connectionID).
		Err(err).
		Msg("unexpected connection close")
}
