// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package command

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tomtom215/meridian/internal/api"
	"github.com/tomtom215/meridian/internal/config"
	"github.com/tomtom215/meridian/internal/logging"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "Path to a YAML config file",
	Aliases: []string{"c"},
	EnvVars: []string{config.ConfigPathEnvVar},
}

var logLevelFlag = &cli.StringFlag{
	Name:  "log-level",
	Usage: "Override logging.level (trace, debug, info, warn, error)",
}

// NewApp builds the CLI. The viewer's command loop reads in and writes out;
// logs go to errOut.
func NewApp(in io.Reader, out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:      "meridian",
		Usage:     "Live location sharing relay and viewer",
		Version:   api.Version,
		Flags:     []cli.Flag{configFlag, logLevelFlag},
		Before:    applyConfigFlag,
		Writer:    out,
		ErrWriter: errOut,
		Reader:    in,
		Commands: []*cli.Command{
			RelayCmd,
			ViewerCmd,
		},
	}
}

// applyConfigFlag exports --config so config.LoadWithKoanf picks it up.
func applyConfigFlag(cctx *cli.Context) error {
	path := cctx.String(configFlag.Name)
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	return os.Setenv(config.ConfigPathEnvVar, path)
}

// loadConfig loads the layered configuration and initializes logging from it.
func loadConfig(cctx *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return nil, err
	}
	if level := cctx.String(logLevelFlag.Name); level != "" {
		cfg.Logging.Level = level
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    cctx.App.ErrWriter,
	})
	return cfg, nil
}
