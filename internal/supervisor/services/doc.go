// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package services adapts Meridian components to suture.Service.

  - HTTPServerService: ListenAndServe with bounded graceful Shutdown
  - RelayHubService: the relay hub's RunWithContext loop
  - ViewerService: the viewer event loop, closing the relay connection
    once the loop exits so the final retire report is flushed

Every wrapper returns ctx.Err() on shutdown and implements fmt.Stringer so
suture's event log names it.
*/
package services
