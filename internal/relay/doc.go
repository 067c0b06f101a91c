// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package relay implements the broadcast relay: every position report received
on any connection is forwarded, byte for byte, to every open connection,
including the one it arrived on.

Key Components:

  - Hub: owns the connection set and runs the single dispatcher goroutine
  - Client: one WebSocket connection with a read pump and a write pump
  - ServeWS: upgrades an HTTP request and attaches it to a hub

Architecture:

	           ┌──────────┐
	  frame ──▶│   Hub    │── same bytes ──▶ every client
	           └────┬─────┘
	     ┌──────────┼──────────┐
	  Client1    Client2    Client3

The relay is identity blind. It does not know which participant a connection
belongs to and never filters a sender's own reports; viewers drop their own
echoes.

Malformed Frames:

A frame that does not decode as a position report is logged with the
connection ID, counted in relay_malformed_frames_total and discarded. The
connection stays open. Frames larger than relay.max_message_size are a
protocol violation and close the connection.

Slow Peers:

Each client has a bounded send queue (relay.send_buffer). If the queue is
full when a frame is fanned out, the client is removed from the set and its
connection closed. There is no retry and no replay.

Usage Example:

	hub := relay.NewHub(cfg.Relay)
	go hub.RunWithContext(ctx)

	upgrader := &websocket.Upgrader{CheckOrigin: checkOrigin}
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
	    if err := relay.ServeWS(hub, upgrader, w, r); err != nil {
	        log.Printf("upgrade: %v", err)
	    }
	})
*/
package relay
