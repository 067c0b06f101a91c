// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		"debug":    zerolog.DebugLevel,
		" Info ":   zerolog.InfoLevel,
		"warn":     zerolog.WarnLevel,
		"warning":  zerolog.WarnLevel,
		"ERROR":    zerolog.ErrorLevel,
		"disabled": zerolog.Disabled,
		"":         zerolog.InfoLevel,
		"verbose":  zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Timestamp: true, Output: &buf})
	defer Init(Config{Level: "error", Output: &bytes.Buffer{}})

	Debug().Str("participant_id", "alice").Msg("tracking started")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("not JSON: %v: %s", err, buf.String())
	}
	for key, want := range map[string]any{
		"level":          "debug",
		"message":        "tracking started",
		"participant_id": "alice",
	} {
		if line[key] != want {
			t.Errorf("%s = %v, want %v", key, line[key], want)
		}
	}
	if _, ok := line["time"]; !ok {
		t.Error("timestamp missing")
	}
}

func TestInitLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	defer Init(Config{Level: "error", Output: &bytes.Buffer{}})

	Info().Msg("hidden")
	Warn().Msg("shown")
	Error().Msg("also shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info written at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "also shown") {
		t.Errorf("warn/error missing: %s", out)
	}
}

func TestInitConsoleAndCaller(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "console", Caller: true, Output: &buf})
	defer Init(Config{Level: "error", Output: &bytes.Buffer{}})

	Info().Msg("console line")

	out := buf.String()
	if strings.Contains(out, `"level"`) {
		t.Errorf("console output is JSON: %s", out)
	}
	if !strings.Contains(out, "logger_test.go") {
		t.Errorf("caller missing: %s", out)
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	SetLogger(zerolog.New(&buf))
	defer SetLogger(prev)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	Info().Msg("swapped")
	if !strings.Contains(buf.String(), "swapped") {
		t.Errorf("output = %q", buf.String())
	}
}
