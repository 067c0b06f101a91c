// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/meridian/internal/config"
	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/metrics"
	"github.com/tomtom215/meridian/internal/models"
)

var (
	// ErrClosed is returned by Send once the connection is gone.
	ErrClosed = errors.New("relay connection closed")

	// ErrSendBufferFull is returned by Send when the outbound queue is full.
	ErrSendBufferFull = errors.New("relay send buffer full")
)

const (
	handshakeTimeout = 10 * time.Second
	inboundBuffer    = 64
)

// Channel is the viewer end of a relay connection. Disconnection is
// terminal: once Closed is signalled the Channel never reconnects.
type Channel struct {
	conn    *websocket.Conn
	cfg     config.RelayConfig
	connID  string
	logger  zerolog.Logger
	send    chan []byte
	inbound chan models.PositionReport

	closed     chan struct{}
	closedOnce sync.Once
	quit       chan struct{}
	quitOnce   sync.Once
	writerDone chan struct{}
}

// Dial connects to the relay at url. Zero fields in cfg take the relay
// defaults.
func Dial(ctx context.Context, url string, cfg config.RelayConfig) (*Channel, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", url, err)
	}

	c := newChannel(conn, withDefaults(cfg))
	c.logger.Info().Str("url", url).Msg("connected to relay")

	go c.writePump()
	go c.readPump()
	return c, nil
}

func newChannel(conn *websocket.Conn, cfg config.RelayConfig) *Channel {
	connID := logging.GenerateConnectionID()
	return &Channel{
		conn:       conn,
		cfg:        cfg,
		connID:     connID,
		logger:     logging.WithComponent("transport").With().Str("connection_id", connID).Logger(),
		send:       make(chan []byte, cfg.SendBuffer),
		inbound:    make(chan models.PositionReport, inboundBuffer),
		closed:     make(chan struct{}),
		quit:       make(chan struct{}),
		writerDone: make(chan struct{}),
	}
}

func withDefaults(cfg config.RelayConfig) config.RelayConfig {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 4096
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 10 * time.Second
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = 60 * time.Second
	}
	return cfg
}

// Send queues a report for the relay. It never blocks.
func (c *Channel) Send(report models.PositionReport) error {
	payload, err := models.EncodeReport(report)
	if err != nil {
		return err
	}

	select {
	case <-c.closed:
		return ErrClosed
	case <-c.quit:
		return ErrClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	default:
		metrics.RecordTransportFrame("out", "dropped")
		return ErrSendBufferFull
	}
}

// Inbound delivers every well-formed report the relay forwards, the
// viewer's own echoes included.
func (c *Channel) Inbound() <-chan models.PositionReport {
	return c.inbound
}

// Closed is closed once the connection is gone.
func (c *Channel) Closed() <-chan struct{} {
	return c.closed
}

// Close flushes queued reports, sends a close frame and waits briefly for the
// writer to finish.
func (c *Channel) Close() error {
	c.quitOnce.Do(func() { close(c.quit) })

	select {
	case <-c.writerDone:
	case <-time.After(2 * c.cfg.WriteWait):
		_ = c.conn.Close()
		return fmt.Errorf("close relay connection: writer did not stop within %s", 2*c.cfg.WriteWait)
	}
	return nil
}

func (c *Channel) markClosed() {
	c.closedOnce.Do(func() { close(c.closed) })
}

// readPump decodes frames into reports. Malformed frames are dropped and the
// connection is kept.
func (c *Channel) readPump() {
	defer func() {
		c.markClosed()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait)); err != nil {
		c.logger.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})
	c.conn.SetPingHandler(func(data string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait)); err != nil {
			return err
		}
		err := c.conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(c.cfg.WriteWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn().Err(err).Msg("relay connection lost")
			} else {
				c.logger.Info().Msg("relay connection closed")
			}
			return
		}

		report, err := models.DecodeReport(payload)
		if err != nil {
			metrics.RecordTransportFrame("in", "malformed")
			c.logger.Warn().Err(err).Str("payload", logging.SanitizePayload(payload)).Msg("dropping malformed frame")
			continue
		}
		metrics.RecordTransportFrame("in", "ok")

		select {
		case c.inbound <- report:
		case <-c.quit:
			return
		}
	}
}

// writePump owns all data writes on the connection.
func (c *Channel) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod())
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		close(c.writerDone)
	}()

	for {
		select {
		case payload := <-c.send:
			if err := c.write(websocket.TextMessage, payload); err != nil {
				c.logger.Warn().Err(err).Msg("write to relay failed")
				return
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.logger.Warn().Err(err).Msg("ping to relay failed")
				return
			}

		case <-c.quit:
			c.flush()
			_ = c.write(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "viewer closing"))
			return

		case <-c.closed:
			return
		}
	}
}

// flush writes whatever is still queued, stopping at the first error.
func (c *Channel) flush() {
	for {
		select {
		case payload := <-c.send:
			if err := c.write(websocket.TextMessage, payload); err != nil {
				c.logger.Warn().Err(err).Msg("flush to relay failed")
				return
			}
		default:
			return
		}
	}
}

func (c *Channel) write(messageType int, payload []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
		return err
	}
	if err := c.conn.WriteMessage(messageType, payload); err != nil {
		return err
	}
	if messageType == websocket.TextMessage {
		metrics.RecordTransportFrame("out", "ok")
	}
	return nil
}
