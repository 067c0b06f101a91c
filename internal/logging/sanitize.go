// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package logging

import (
	"strings"
	"unicode"
)

const (
	maxPayloadPreview  = 128
	maxParticipantID   = 64
	maxUserAgentLength = 100
)

// SanitizePayload returns a printable preview of an inbound frame.
// Control characters are replaced and the preview is truncated so a hostile
// peer cannot flood or forge log lines.
// Example: "{\"participantId\":\n..." -> "{\"participantId\":?..."
func SanitizePayload(payload []byte) string {
	if len(payload) == 0 {
		return ""
	}
	preview := payload
	if len(preview) > maxPayloadPreview {
		preview = preview[:maxPayloadPreview]
	}
	out := stripControl(string(preview))
	if len(payload) > maxPayloadPreview {
		out += "..."
	}
	return out
}

// SanitizeParticipantID makes a participant ID safe for a log field.
// Example: "alice\r\nlevel=error" -> "alice??level=error"
func SanitizeParticipantID(id string) string {
	return truncateString(stripControl(id), maxParticipantID)
}

// SanitizeUserAgent truncates a client user agent.
func SanitizeUserAgent(ua string) string {
	return truncateString(stripControl(ua), maxUserAgentLength)
}

// SanitizeSecret masks a secret value entirely.
func SanitizeSecret(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '?'
		}
		return r
	}, s)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
