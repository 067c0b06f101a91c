// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package viewer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/meridian/internal/geo"
	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/metrics"
	"github.com/tomtom215/meridian/internal/models"
)

var (
	// ErrDisconnected is reported once the relay connection is gone.
	ErrDisconnected = errors.New("disconnected from relay")

	// ErrNoFix is returned when an operation needs a local position sample.
	ErrNoFix = errors.New("no position fix yet")

	// ErrClickUnsupported is returned by the click command when the renderer
	// cannot simulate clicks.
	ErrClickUnsupported = errors.New("renderer does not support clicks")
)

// Channel is the viewer end of the relay connection.
type Channel interface {
	Send(report models.PositionReport) error
	Inbound() <-chan models.PositionReport
	Closed() <-chan struct{}
}

// Notice kinds.
const (
	NoticeDistance    = "distance"
	NoticeRoute       = "route"
	NoticeLocate      = "locate"
	NoticeOrientation = "orientation"
	NoticeConnection  = "connection"
)

// Notice reports the outcome of something that finished outside a command
// reply: an async route or geocode, a marker click, a disconnect.
type Notice struct {
	Kind    string
	Message string
	Err     error
}

func (n Notice) String() string {
	if n.Err != nil {
		if n.Message == "" {
			return n.Err.Error()
		}
		return n.Message + ": " + n.Err.Error()
	}
	return n.Message
}

// Options configures a Viewer.
type Options struct {
	Renderer Renderer
	Channel  Channel // nil runs the viewer offline
	Engine   *geo.Engine
	Samples  <-chan geo.Coordinate

	UnlockPhrase string

	// PreviousID is an identity published by an earlier run; Start retires it.
	PreviousID string

	// Notify receives notices on the event loop goroutine. It must not block.
	Notify func(Notice)
}

// Snapshot is a copy of the viewer state.
type Snapshot struct {
	Phase       Phase
	Active      string
	Entries     map[string]RegistryEntry
	HasDistance bool
	HasRoute    bool
	Connected   bool
}

// artifactKind indexes the per-kind request generations.
type artifactKind int

const (
	kindDistance artifactKind = iota
	kindRoute
	kindLocate
	numKinds
)

func (k artifactKind) String() string {
	switch k {
	case kindDistance:
		return "distance"
	case kindRoute:
		return "route"
	case kindLocate:
		return "locate"
	default:
		return "unknown"
	}
}

// generations implements last-request-wins: a completion is applied only if
// its generation is still the latest issued for its kind.
type generations [numKinds]uint64

func (g *generations) next(k artifactKind) uint64 {
	g[k]++
	return g[k]
}

func (g *generations) current(k artifactKind) uint64 {
	return g[k]
}

// Events handled by the loop.
type (
	commandEvent struct {
		cmd   Command
		reply chan commandResult
	}
	commandResult struct {
		msg string
		err error
	}
	snapshotEvent struct {
		reply chan Snapshot
	}
	clickEvent struct {
		id string
	}
	orientationEvent struct {
		heading float64
	}
	routeDone struct {
		gen    uint64
		target string
		path   geo.Path
		err    error
	}
	locateDone struct {
		gen   uint64
		place string
		coord geo.Coordinate
		err   error
	}
)

// Viewer owns one participant's view of the shared map: registry, tracking
// session, overlays and the derived views. Every mutation happens on the
// goroutine running Run; other goroutines talk to it through Execute,
// Orientation and Snapshot.
type Viewer struct {
	renderer Renderer
	registry *Registry
	session  *Session
	overlay  *Overlay
	engine   *geo.Engine
	gate     *Gate
	channel  Channel
	samples  <-chan geo.Coordinate
	notify   func(Notice)
	events   chan any
	logger   zerolog.Logger

	gens       generations
	lastSample *geo.Coordinate
	hadFix     bool
	connected  bool
}

// New creates a viewer. Run must be called to process anything.
func New(opts Options) *Viewer {
	v := &Viewer{
		renderer:  opts.Renderer,
		session:   NewSession(opts.PreviousID),
		overlay:   NewOverlay(opts.Renderer),
		engine:    opts.Engine,
		gate:      NewGate(opts.UnlockPhrase),
		channel:   opts.Channel,
		samples:   opts.Samples,
		notify:    opts.Notify,
		events:    make(chan any, 64),
		logger:    logging.WithComponent("viewer"),
		connected: opts.Channel != nil,
	}
	if v.engine == nil {
		v.engine = geo.NewEngine(nil, nil)
	}
	if v.notify == nil {
		v.notify = func(n Notice) {
			v.logger.Info().Str("kind", n.Kind).Msg(n.String())
		}
	}
	v.registry = NewRegistry(opts.Renderer, v.enqueueClick)
	return v
}

// Run processes samples, relay traffic, commands and async completions until
// ctx is canceled. On the way out it publishes a retire report for the
// tracked participant so other viewers drop its marker.
func (v *Viewer) Run(ctx context.Context) error {
	var inbound <-chan models.PositionReport
	var closed <-chan struct{}
	if v.channel != nil && v.connected {
		inbound = v.channel.Inbound()
		closed = v.channel.Closed()
	}
	samples := v.samples

	v.logger.Info().Bool("connected", v.connected).Msg("viewer started")

	for {
		select {
		case <-ctx.Done():
			v.shutdown()
			return ctx.Err()

		case c, ok := <-samples:
			if !ok {
				samples = nil
				continue
			}
			v.handleSample(c)

		case r, ok := <-inbound:
			if !ok {
				inbound = nil
				continue
			}
			v.handleInbound(r)

		case <-closed:
			v.drainInbound(inbound)
			closed = nil
			inbound = nil
			v.handleDisconnect()

		case e := <-v.events:
			v.dispatch(ctx, e)
		}
	}
}

// drainInbound applies reports the channel had already received when the
// relay hung up.
func (v *Viewer) drainInbound(inbound <-chan models.PositionReport) {
	for {
		select {
		case r, ok := <-inbound:
			if !ok {
				return
			}
			v.handleInbound(r)
		default:
			return
		}
	}
}

// Execute runs cmd on the event loop and returns its reply. Commands that
// start async work reply immediately; their outcome arrives as a Notice.
func (v *Viewer) Execute(ctx context.Context, cmd Command) (string, error) {
	reply := make(chan commandResult, 1)
	if err := v.post(ctx, commandEvent{cmd: cmd, reply: reply}); err != nil {
		return "", err
	}
	select {
	case r := <-reply:
		return r.msg, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Orientation delivers a device heading in degrees clockwise from north.
func (v *Viewer) Orientation(ctx context.Context, heading float64) error {
	return v.post(ctx, orientationEvent{heading: heading})
}

// Snapshot returns a copy of the current state.
func (v *Viewer) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if err := v.post(ctx, snapshotEvent{reply: reply}); err != nil {
		return Snapshot{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (v *Viewer) post(ctx context.Context, e any) error {
	select {
	case v.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// enqueueClick is bound to every marker. It may be called on the loop
// goroutine itself, so it never blocks.
func (v *Viewer) enqueueClick(id string) {
	select {
	case v.events <- clickEvent{id: id}:
	default:
		go func() { v.events <- clickEvent{id: id} }()
	}
}

func (v *Viewer) dispatch(ctx context.Context, e any) {
	switch ev := e.(type) {
	case commandEvent:
		msg, err := v.execute(ctx, ev.cmd)
		ev.reply <- commandResult{msg: msg, err: err}
	case snapshotEvent:
		ev.reply <- v.snapshot()
	case clickEvent:
		v.handleClick(ev.id)
	case orientationEvent:
		msg, err := v.handleOrientation(ev.heading)
		v.notify(Notice{Kind: NoticeOrientation, Message: msg, Err: err})
	case routeDone:
		v.handleRouteDone(ev)
	case locateDone:
		v.handleLocateDone(ev)
	}
}

func (v *Viewer) execute(ctx context.Context, cmd Command) (string, error) {
	switch cmd.Name {
	case CmdStart:
		return v.start(cmd.Arg)
	case CmdDistance:
		return v.distance(cmd.Arg)
	case CmdRoute:
		return v.route(ctx, cmd.Arg)
	case CmdLocate:
		return v.locate(ctx, cmd.Arg)
	case CmdLookup:
		return v.lookup(cmd.Arg)
	case CmdClick:
		return v.click(cmd.Arg)
	case CmdHeading:
		heading, err := strconv.ParseFloat(cmd.Arg, 64)
		if err != nil {
			return "", fmt.Errorf("invalid heading %q: %w", cmd.Arg, err)
		}
		return v.handleOrientation(heading)
	case CmdUnlock:
		if err := v.gate.Unlock(cmd.Arg); err != nil {
			return "", err
		}
		return "unlocked", nil
	case CmdList:
		return v.list(), nil
	case CmdHelp:
		return HelpText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
	}
}

// handleSample records a local fix and, while tracking, publishes it.
func (v *Viewer) handleSample(c geo.Coordinate) {
	if !c.Valid() {
		v.logger.Warn().Str("position", c.String()).Msg("discarding invalid local sample")
		return
	}
	v.lastSample = &c

	if id, ok := v.session.Active(); ok {
		v.applyOwnPosition(id, c)
	}
}

// applyOwnPosition updates the local entry, publishes it and drops the route,
// which was computed from the previous position.
func (v *Viewer) applyOwnPosition(id string, c geo.Coordinate) {
	report := models.NewPositionReport(id, c)
	v.registry.ApplyLocal(report)
	metrics.ViewerReportsApplied.WithLabelValues("local").Inc()

	if !v.hadFix {
		v.renderer.SetViewport(c, ZoomOwnFix)
		v.hadFix = true
	}

	v.publish(report)

	v.overlay.ClearRoute()
	v.gens.next(kindRoute)
}

func (v *Viewer) publish(report models.PositionReport) {
	if v.channel == nil || !v.connected {
		v.logger.Debug().Str("participant_id", report.ParticipantID).Msg("not connected, report not published")
		return
	}
	if err := v.channel.Send(report); err != nil {
		v.logger.Warn().Err(err).Str("participant_id", report.ParticipantID).Msg("failed to publish report")
	}
}

// handleInbound applies a relayed report. The relay echoes our own reports
// back; those are dropped since local sampling owns our entry.
func (v *Viewer) handleInbound(r models.PositionReport) {
	if err := r.Validate(); err != nil {
		v.logger.Warn().Err(err).Msg("discarding invalid relayed report")
		return
	}
	if v.session.IsSelf(r.ParticipantID) {
		metrics.ViewerEchoesFiltered.Inc()
		return
	}

	v.registry.ApplyReport(r)
	if r.IsRetire() {
		metrics.ViewerReportsApplied.WithLabelValues("retire").Inc()
		v.logger.Info().Str("participant_id", r.ParticipantID).Msg("participant retired")
		return
	}
	metrics.ViewerReportsApplied.WithLabelValues("remote").Inc()
}

func (v *Viewer) handleDisconnect() {
	v.connected = false
	v.logger.Warn().Msg("relay connection closed")
	v.notify(Notice{Kind: NoticeConnection, Err: ErrDisconnected})
}

func (v *Viewer) shutdown() {
	if id, ok := v.session.Active(); ok {
		v.publish(models.RetireReport(id))
	}
	v.logger.Info().Str("phase", v.session.Phase().String()).Msg("viewer stopped")
}

func (v *Viewer) start(id string) (string, error) {
	retire, err := v.session.Start(id, v.registry)
	if err != nil {
		return "", err
	}
	if retire != nil {
		v.publish(*retire)
	}

	v.logger.Info().Str("participant_id", id).Msg("tracking started")
	if v.lastSample != nil {
		v.applyOwnPosition(id, *v.lastSample)
	}
	return fmt.Sprintf("tracking as %s", id), nil
}

// pair returns the local and target positions for a relationship query.
func (v *Viewer) pair(target string) (geo.Coordinate, geo.Coordinate, error) {
	self, ok := v.session.Active()
	if !ok {
		return geo.Coordinate{}, geo.Coordinate{}, ErrNotTracking
	}
	a, b, err := v.registry.LookupPair(self, target)
	if err != nil {
		return geo.Coordinate{}, geo.Coordinate{}, err
	}
	if b.Retired {
		return geo.Coordinate{}, geo.Coordinate{}, fmt.Errorf("%q: %w", target, ErrParticipantRetired)
	}
	return a.Position.Coordinate(), b.Position.Coordinate(), nil
}

func (v *Viewer) drawDistance(target string) (float64, error) {
	a, b, err := v.pair(target)
	if err != nil {
		return 0, err
	}
	v.gens.next(kindDistance)
	v.overlay.SetDistanceOverlay(a, b)
	return geo.Distance(a, b), nil
}

func (v *Viewer) distance(target string) (string, error) {
	km, err := v.drawDistance(target)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Distance: %.2f km", km), nil
}

func (v *Viewer) handleClick(id string) {
	km, err := v.drawDistance(id)
	if err != nil {
		v.notify(Notice{Kind: NoticeDistance, Message: "distance to " + id, Err: err})
		return
	}
	v.notify(Notice{Kind: NoticeDistance, Message: fmt.Sprintf("Distance: %.2f km", km)})
}

func (v *Viewer) route(ctx context.Context, target string) (string, error) {
	a, b, err := v.pair(target)
	if err != nil {
		return "", err
	}

	gen := v.gens.next(kindRoute)
	go func() {
		path, err := v.engine.Route(ctx, a, b)
		_ = v.post(ctx, routeDone{gen: gen, target: target, path: path, err: err})
	}()
	return fmt.Sprintf("routing to %s", target), nil
}

func (v *Viewer) handleRouteDone(d routeDone) {
	if d.gen != v.gens.current(kindRoute) {
		v.discardStale(kindRoute, d.gen)
		return
	}
	if d.err != nil {
		v.notify(Notice{Kind: NoticeRoute, Message: "route to " + d.target, Err: d.err})
		return
	}
	v.overlay.SetRouteOverlay(d.path)
	v.notify(Notice{
		Kind:    NoticeRoute,
		Message: fmt.Sprintf("Route to %s: %.2f km (%d points)", d.target, d.path.Length(), len(d.path)),
	})
}

func (v *Viewer) locate(ctx context.Context, place string) (string, error) {
	if err := v.gate.Check(); err != nil {
		return "", err
	}

	gen := v.gens.next(kindLocate)
	go func() {
		c, err := v.engine.Geocode(ctx, place)
		_ = v.post(ctx, locateDone{gen: gen, place: place, coord: c, err: err})
	}()
	return fmt.Sprintf("locating %s", place), nil
}

func (v *Viewer) handleLocateDone(d locateDone) {
	if d.gen != v.gens.current(kindLocate) {
		v.discardStale(kindLocate, d.gen)
		return
	}
	if d.err != nil {
		v.notify(Notice{Kind: NoticeLocate, Message: "locate " + d.place, Err: d.err})
		return
	}
	v.renderer.SetViewport(d.coord, ZoomCity)
	v.notify(Notice{Kind: NoticeLocate, Message: fmt.Sprintf("%s: %s", d.place, d.coord)})
}

func (v *Viewer) discardStale(k artifactKind, gen uint64) {
	metrics.ViewerStaleCompletions.WithLabelValues(k.String()).Inc()
	v.logger.Debug().
		Str("kind", k.String()).
		Uint64("generation", gen).
		Uint64("latest", v.gens.current(k)).
		Msg("discarding stale completion")
}

func (v *Viewer) lookup(id string) (string, error) {
	if err := v.gate.Check(); err != nil {
		return "", err
	}
	entry, err := v.registry.Lookup(id)
	if err != nil {
		return "", err
	}
	if entry.Retired {
		return fmt.Sprintf("%s has stopped sharing", id), nil
	}
	pos := entry.Position.Coordinate()
	v.renderer.SetViewport(pos, ZoomCity)
	return fmt.Sprintf("%s: %s", id, pos), nil
}

func (v *Viewer) click(id string) (string, error) {
	entry, err := v.registry.Lookup(id)
	if err != nil {
		return "", err
	}
	clicker, ok := v.renderer.(Clicker)
	if !ok {
		return "", ErrClickUnsupported
	}
	if entry.Marker == 0 || !clicker.Click(entry.Marker) {
		return "", fmt.Errorf("%q has no marker", id)
	}
	return fmt.Sprintf("clicked %s", id), nil
}

// handleOrientation reports how far to turn from heading to face true north
// from the current fix.
func (v *Viewer) handleOrientation(heading float64) (string, error) {
	heading = geo.NormalizeDegrees(heading)
	if v.lastSample == nil {
		return "", ErrNoFix
	}
	north := geo.BearingToNorth(*v.lastSample)
	turn := geo.NormalizeDegrees(north - heading)
	return fmt.Sprintf("heading %.1f°, north is %.1f° clockwise", heading, turn), nil
}

func (v *Viewer) list() string {
	ids := v.registry.IDs()
	if len(ids) == 0 {
		return "no participants yet"
	}

	var b strings.Builder
	for i, id := range ids {
		entry, _ := v.registry.Lookup(id)
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(id)
		b.WriteByte(' ')
		b.WriteString(entry.Position.Coordinate().String())
		if v.session.IsSelf(id) {
			b.WriteString(" (you)")
		}
		if entry.Retired {
			b.WriteString(" (retired)")
		}
	}
	return b.String()
}

func (v *Viewer) snapshot() Snapshot {
	entries := make(map[string]RegistryEntry, v.registry.Len())
	for _, id := range v.registry.IDs() {
		entries[id], _ = v.registry.Lookup(id)
	}
	active, _ := v.session.Active()
	return Snapshot{
		Phase:       v.session.Phase(),
		Active:      active,
		Entries:     entries,
		HasDistance: v.overlay.HasDistance(),
		HasRoute:    v.overlay.HasRoute(),
		Connected:   v.connected,
	}
}
