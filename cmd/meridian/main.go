// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

// Command meridian runs the live location sharing relay or a viewer.
//
//	meridian relay                  serve the WebSocket relay and viewer assets
//	meridian viewer --id alice      share a position and follow other participants
//
// Configuration is layered by koanf: built-in defaults, then a YAML file
// (--config, CONFIG_PATH, ./meridian.yaml or /etc/meridian/config.yaml), then
// environment variables. SIGINT and SIGTERM shut down gracefully; a viewer
// that is tracking publishes a retire report before it exits.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/meridian/internal/command"
	"github.com/tomtom215/meridian/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := command.NewApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.RunContext(ctx, os.Args); err != nil {
		stop()
		logging.Fatal().Err(err).Msg("meridian failed")
	}
}
