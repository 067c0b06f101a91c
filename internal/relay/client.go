// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package relay

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/models"
)

// clientIDCounter orders clients for deterministic fan-out.
var clientIDCounter atomic.Uint64

// Client is a middleman between one WebSocket connection and the hub.
type Client struct {
	id         uint64
	connID     string
	remoteAddr string
	userAgent  string
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
}

// NewClient creates a client for an upgraded connection. r may be nil.
func NewClient(hub *Hub, conn *websocket.Conn, r *http.Request) *Client {
	c := &Client{
		id:     clientIDCounter.Add(1),
		connID: logging.GenerateConnectionID(),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, hub.cfg.SendBuffer),
	}
	if r != nil {
		c.remoteAddr = r.RemoteAddr
		c.userAgent = r.UserAgent()
	}
	return c
}

// readPump reads frames until the connection fails. Each frame is decoded
// only to decide whether it is a position report; accepted frames are handed
// to the hub as the original bytes.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	cfg := c.hub.cfg
	c.conn.SetReadLimit(cfg.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait)); err != nil {
		logging.Error().Err(err).Str("connection_id", c.connID).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.events.LogReadError(c.connID, err)
			}
			return
		}

		report, err := models.DecodeReport(payload)
		if err != nil {
			c.hub.recordMalformed(c, payload, err)
			continue
		}
		c.hub.events.LogReportReceived(c.connID, report.ParticipantID, report.Latitude, report.Longitude)
		c.hub.Broadcast(c, payload)
	}
}

// writePump writes queued frames and keepalive pings. It exits when the hub
// closes the send queue or a write fails.
func (c *Client) writePump() {
	cfg := c.hub.cfg
	ticker := time.NewTicker(cfg.PingPeriod())
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait)); err != nil {
				logging.Error().Err(err).Str("connection_id", c.connID).Msg("failed to set write deadline")
				return
			}
			if !ok {
				// The hub closed the queue.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.hub.recordDrop(c, DropReasonWriteError)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// ServeWS upgrades the request, registers the connection with the hub and
// starts its pumps. The upgrader has already answered the request when an
// error is returned. A handshake that lands after the hub stopped is hung up
// with ErrHubStopped.
func ServeWS(hub *Hub, upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := NewClient(hub, conn, r)
	if err := hub.register(client); err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(hub.cfg.WriteWait))
		_ = conn.Close()
		return err
	}
	client.Start()
	return nil
}
