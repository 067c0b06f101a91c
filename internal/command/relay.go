// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package command

import (
	"context"
	"errors"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/tomtom215/meridian/internal/api"
	"github.com/tomtom215/meridian/internal/config"
	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/relay"
	"github.com/tomtom215/meridian/internal/supervisor"
	"github.com/tomtom215/meridian/internal/supervisor/services"
)

// RelayCmd runs the broadcast relay.
var RelayCmd = &cli.Command{
	Name:   "relay",
	Usage:  "Run the WebSocket broadcast relay",
	Action: relayAction,
}

func relayAction(cctx *cli.Context) error {
	cfg, err := loadConfig(cctx)
	if err != nil {
		return cli.Exit(err, 1)
	}
	return runRelay(cctx.Context, cfg)
}

// newRelayServer wires the hub into the chi router and returns the server
// for cfg.Server.
func newRelayServer(cfg *config.Config) (*relay.Hub, *http.Server) {
	hub := relay.NewHub(cfg.Relay)
	handler := api.NewHandler(hub, cfg.Security)
	mw := api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(cfg.Security))
	router := api.NewRouter(handler, mw, cfg.Server.StaticDir)

	return hub, &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: cfg.Server.Timeout,
	}
}

// runRelay serves until ctx is canceled.
func runRelay(ctx context.Context, cfg *config.Config) error {
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Strs("cors_origins", cfg.Security.CORSOrigins).Msg("wildcard CORS origin in production")
	}

	hub, server := newRelayServer(cfg)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}
	tree.AddMessagingService(services.NewRelayHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.Timeout))

	logging.Info().
		Str("addr", server.Addr).
		Str("environment", cfg.Server.Environment).
		Str("static_dir", cfg.Server.StaticDir).
		Msg("starting relay")

	return serveTree(ctx, tree)
}

// serveTree runs tree until ctx is canceled and reports services that
// missed the shutdown deadline.
func serveTree(ctx context.Context, tree *supervisor.SupervisorTree) error {
	err := tree.Serve(ctx)

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("service failed to stop within timeout")
	}

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	logging.Info().Msg("stopped")
	return nil
}
