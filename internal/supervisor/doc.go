// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package supervisor runs Meridian's long-lived services under suture v4.

The tree has one root and three layers:

	meridian
	├── messaging-layer
	│   └── RelayHubService        (relay command)
	├── api-layer
	│   └── HTTPServerService      (relay command)
	└── viewer-layer
	    ├── sampler.Sampler        (viewer command)
	    └── ViewerService          (viewer command)

A panicking or failing service is restarted inside its own layer with
suture's backoff. Supervisor events go to the zerolog pipeline through
sutureslog and logging.NewSlogLogger.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewRelayHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(srv, addr, cfg.Server.Timeout))
	return tree.Serve(ctx)

Service wrappers live in the services subpackage.
*/
package supervisor
