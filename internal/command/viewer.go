// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tomtom215/meridian/internal/config"
	"github.com/tomtom215/meridian/internal/geo"
	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/osm"
	"github.com/tomtom215/meridian/internal/render"
	"github.com/tomtom215/meridian/internal/sampler"
	"github.com/tomtom215/meridian/internal/supervisor"
	"github.com/tomtom215/meridian/internal/supervisor/services"
	"github.com/tomtom215/meridian/internal/transport"
	"github.com/tomtom215/meridian/internal/viewer"
)

const dialTimeout = 10 * time.Second

// ViewerCmd runs an interactive viewer.
var ViewerCmd = &cli.Command{
	Name:   "viewer",
	Usage:  "Share your position and watch others on the map",
	Flags:  viewerFlags,
	Action: viewerAction,
}

var viewerFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "id",
		Usage: "Start tracking as this participant (overrides viewer.participant_id)",
	},
	&cli.StringFlag{
		Name:  "previous-id",
		Usage: "Identity published by an earlier run; retired when tracking starts",
	},
	&cli.BoolFlag{
		Name:  "offline",
		Usage: "Do not connect to the relay",
	},
}

// viewerRun is everything one viewer process needs.
type viewerRun struct {
	cfg        *config.Config
	in         io.Reader
	out        io.Writer
	offline    bool
	previousID string
}

func viewerAction(cctx *cli.Context) error {
	cfg, err := loadConfig(cctx)
	if err != nil {
		return cli.Exit(err, 1)
	}
	if id := cctx.String("id"); id != "" {
		cfg.Viewer.ParticipantID = id
	}

	return (&viewerRun{
		cfg:        cfg,
		in:         cctx.App.Reader,
		out:        cctx.App.Writer,
		offline:    cctx.Bool("offline"),
		previousID: cctx.String("previous-id"),
	}).run(cctx.Context)
}

// syncWriter serializes command replies and asynchronous notices.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) println(a ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, a...)
}

func newEngine(cfg *config.Config) *geo.Engine {
	var router geo.Router
	var geocoder geo.Geocoder
	if cfg.Routing.Enabled {
		router = osm.NewOSRMRouter(cfg.Routing)
	}
	if cfg.Geocoding.Enabled {
		geocoder = osm.NewNominatimGeocoder(cfg.Geocoding)
	}
	return geo.NewEngine(router, geocoder)
}

func (r *viewerRun) dial(ctx context.Context, out *syncWriter) *transport.Channel {
	if r.offline {
		out.println("running offline")
		return nil
	}
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	ch, err := transport.Dial(dialCtx, r.cfg.Viewer.RelayURL, r.cfg.Relay)
	if err != nil {
		logging.Warn().Err(err).Str("relay_url", r.cfg.Viewer.RelayURL).Msg("relay unavailable")
		out.println("relay unavailable, running offline:", err)
		return nil
	}
	out.println("connected to", r.cfg.Viewer.RelayURL)
	return ch
}

func (r *viewerRun) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := &syncWriter{w: r.out}

	src, err := sampler.FromConfig(r.cfg.Viewer)
	if err != nil {
		return cli.Exit(fmt.Errorf("position source: %w", err), 1)
	}

	scene := render.NewMemory()
	opts := viewer.Options{
		Renderer:     scene,
		Engine:       newEngine(r.cfg),
		Samples:      src.Samples(),
		UnlockPhrase: r.cfg.Viewer.UnlockPhrase,
		PreviousID:   r.previousID,
		Notify:       func(n viewer.Notice) { out.println(n.String()) },
	}

	// A nil *transport.Channel must not reach the interfaces below.
	var conn io.Closer
	if ch := r.dial(ctx, out); ch != nil {
		opts.Channel = ch
		conn = ch
	}
	v := viewer.New(opts)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}
	tree.AddViewerService(src)
	tree.AddViewerService(services.NewViewerService(v, conn))
	done := tree.ServeBackground(ctx)

	if id := r.cfg.Viewer.ParticipantID; id != "" {
		reply, err := v.Execute(ctx, viewer.Command{Name: viewer.CmdStart, Arg: id})
		printReply(out, reply, err)
	}

	go func() {
		readCommands(ctx, r.in, v, scene, out, cancel)
		logging.Debug().Msg("command input closed")
	}()
	<-ctx.Done()

	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor shutdown error")
	}
	return nil
}

// readCommands executes one command per input line until EOF. "quit" calls
// quit, which stops the viewer.
func readCommands(ctx context.Context, in io.Reader, v *viewer.Viewer, scene *render.Memory, out *syncWriter, quit func()) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case "quit", "exit":
			quit()
			return
		case "scene":
			out.println(scene.Scene().String())
			continue
		}

		cmd, err := viewer.ParseCommand(line)
		if err != nil {
			out.println("error:", err)
			continue
		}
		reply, err := v.Execute(ctx, cmd)
		if ctx.Err() != nil {
			return
		}
		printReply(out, reply, err)
	}
}

func printReply(out *syncWriter, reply string, err error) {
	if err != nil {
		out.println("error:", err)
		return
	}
	if reply != "" {
		out.println(reply)
	}
}
