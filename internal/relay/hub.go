// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package relay

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/meridian/internal/config"
	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/metrics"
	"github.com/tomtom215/meridian/internal/models"
)

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path.
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Drop reasons recorded in metrics and logs.
const (
	DropReasonSendBufferFull      = "send_buffer_full"
	DropReasonWriteError          = "write_error"
	DropReasonBroadcastBufferFull = "broadcast_buffer_full"
)

// ErrHubStopped is returned when a connection arrives while no dispatcher is
// running.
var ErrHubStopped = errors.New("relay hub is not running")

// frame is one accepted inbound payload awaiting fan-out.
type frame struct {
	from    *Client
	payload []byte
}

// Hub maintains the connection set and fans every accepted frame out to all
// members, the sender included. It never looks at participant identity.
//
// The connection set is mutated only by the dispatcher goroutine running
// RunWithContext; the mutex lets readers such as ConnectionCount observe it.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan frame
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex

	// stopped is closed whenever no dispatcher is running. Each run of
	// RunWithContext installs a fresh channel and closes it on exit.
	stopped chan struct{}

	cfg    config.RelayConfig
	events *logging.RelayEventLogger

	running         atomic.Bool
	startedAt       time.Time
	framesReceived  atomic.Uint64
	framesForwarded atomic.Uint64
	malformedFrames atomic.Uint64
	peersDropped    atomic.Uint64
}

// NewHub creates a hub using the buffer sizes and timeouts in cfg.
func NewHub(cfg config.RelayConfig) *Hub {
	stopped := make(chan struct{})
	close(stopped)
	return &Hub{
		stopped:    stopped,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan frame, cfg.BroadcastBuffer),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		cfg:        cfg,
		events:     logging.NewRelayEventLogger(),
		startedAt:  time.Now(),
	}
}

// RunWithContext runs the dispatcher until ctx is canceled. On shutdown every
// open connection is closed and ctx.Err() is returned so a supervisor can
// restart the hub without leaving orphaned connections.
//
// Selection is priority based: shutdown first, then lifecycle events, then
// broadcasts. A frame is therefore never fanned out to a set that still has
// a pending registration or removal queued ahead of it.
func (h *Hub) RunWithContext(ctx context.Context) error {
	h.mu.Lock()
	stopped := make(chan struct{})
	h.stopped = stopped
	h.mu.Unlock()

	h.running.Store(true)
	defer func() {
		h.running.Store(false)
		close(stopped)
	}()

	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case f := <-h.broadcast:
			h.broadcastToClients(f)
		}
	}
}

// Running reports whether the dispatcher is active.
func (h *Hub) Running() bool {
	return h.running.Load()
}

func (h *Hub) stoppedCh() <-chan struct{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stopped
}

// register hands client to the dispatcher. It returns ErrHubStopped instead
// of blocking when no dispatcher is running.
func (h *Hub) register(client *Client) error {
	select {
	case h.Register <- client:
		return nil
	case <-h.stoppedCh():
		return ErrHubStopped
	}
}

// unregister removes client from the set. Once the dispatcher has stopped the
// set has already been emptied, so there is nothing to wait for.
func (h *Hub) unregister(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.stoppedCh():
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.RelayConnections.Set(float64(total))
	h.events.LogPeerConnected(client.connID, client.remoteAddr, client.userAgent, total)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		metrics.RelayConnections.Set(float64(total))
		h.events.LogPeerDisconnected(client.connID, total)
	}
}

// Broadcast queues payload for fan-out. The payload is forwarded unchanged.
// When the broadcast queue is full the frame is dropped; the relay makes no
// delivery guarantee.
func (h *Hub) Broadcast(from *Client, payload []byte) {
	select {
	case h.broadcast <- frame{from: from, payload: payload}:
	default:
		connID := ""
		if from != nil {
			connID = from.connID
		}
		metrics.RecordPeerDropped(DropReasonBroadcastBufferFull)
		logging.Warn().
			Str("component", "relay").
			Str("connection_id", connID).
			Msg("broadcast queue full, dropping frame")
	}
}

// broadcastToClients delivers one frame to every member in connection order.
// A member whose send queue is full is removed from the set.
func (h *Hub) broadcastToClients(f frame) {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	delivered := 0
	var dropped []*Client
	for _, client := range clients {
		select {
		case client.send <- f.payload:
			delivered++
		default:
			dropped = append(dropped, client)
		}
	}
	for _, client := range dropped {
		close(client.send)
		delete(h.clients, client)
	}
	total := len(h.clients)
	h.mu.Unlock()

	h.framesReceived.Add(1)
	h.framesForwarded.Add(uint64(delivered))
	metrics.RecordBroadcast(delivered)

	if len(dropped) > 0 {
		metrics.RelayConnections.Set(float64(total))
		for _, client := range dropped {
			h.recordDrop(client, DropReasonSendBufferFull)
		}
	}
}

// recordMalformed counts a rejected inbound frame.
func (h *Hub) recordMalformed(client *Client, payload []byte, err error) {
	h.malformedFrames.Add(1)
	metrics.RelayMalformedFrames.Inc()
	h.events.LogMalformedFrame(client.connID, payload, err)
}

func (h *Hub) recordDrop(client *Client, reason string) {
	h.peersDropped.Add(1)
	metrics.RecordPeerDropped(reason)
	h.events.LogPeerDropped(client.connID, reason)
}

// logGracefulShutdown closes all clients and logs the shutdown. ctx.Err() is
// not logged as an error since cancellation is the expected path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	count := h.closeAllClients()

	logging.Info().
		Str("component", "relay-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", count).
		Msg("relay hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// closeAllClients closes every member's send queue, which makes its write
// pump send a close frame and hang up.
func (h *Hub) closeAllClients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.RelayConnections.Set(0)
	return len(clients)
}

// ConnectionCount returns the number of open connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns a snapshot of the hub counters.
func (h *Hub) Stats() models.RelayStats {
	return models.RelayStats{
		Connections:     h.ConnectionCount(),
		FramesReceived:  h.framesReceived.Load(),
		FramesForwarded: h.framesForwarded.Load(),
		MalformedFrames: h.malformedFrames.Load(),
		PeersDropped:    h.peersDropped.Load(),
		StartedAt:       h.startedAt.UTC(),
		UptimeSeconds:   int64(time.Since(h.startedAt).Seconds()),
	}
}
