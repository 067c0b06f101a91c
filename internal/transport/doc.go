// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package transport connects a viewer to the broadcast relay.

A Channel wraps one gorilla/websocket client connection with the same pump
layout the relay uses on its side: a read pump that decodes frames into
models.PositionReport values and a write pump that owns every data write and
sends keepalive pings.

	ch, err := transport.Dial(ctx, "ws://127.0.0.1:3000/ws", cfg.Relay)
	if err != nil {
	    return err
	}
	defer ch.Close()

	_ = ch.Send(models.NewPositionReport("alice", here))
	for r := range ch.Inbound() {
	    ...
	}

Malformed frames are logged, counted in viewer_transport_frames_total and
dropped without closing the connection. When the connection ends Closed is
signalled; there is no reconnect.
*/
package transport
