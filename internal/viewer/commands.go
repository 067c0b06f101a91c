// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package viewer

import (
	"errors"
	"fmt"
	"strings"
)

// Command names accepted by ParseCommand.
const (
	CmdStart    = "start"
	CmdDistance = "distance"
	CmdRoute    = "route"
	CmdLocate   = "locate"
	CmdLookup   = "lookup"
	CmdClick    = "click"
	CmdHeading  = "heading"
	CmdUnlock   = "unlock"
	CmdList     = "list"
	CmdHelp     = "help"
)

var (
	// ErrUnknownCommand is returned by ParseCommand for an unrecognised verb.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrMissingArgument is returned by ParseCommand when a verb needs an argument.
	ErrMissingArgument = errors.New("missing argument")
)

// Command is one user request to the viewer.
type Command struct {
	Name string
	Arg  string
}

// commandArgs lists every verb and whether it takes an argument.
var commandArgs = map[string]bool{
	CmdStart:    true,
	CmdDistance: true,
	CmdRoute:    true,
	CmdLocate:   true,
	CmdLookup:   true,
	CmdClick:    true,
	CmdHeading:  true,
	CmdUnlock:   true,
	CmdList:     false,
	CmdHelp:     false,
}

// HelpText describes the commands.
const HelpText = `commands:
  start <id>        begin publishing your position as <id>
  distance <id>     distance from you to <id>, drawn as a line
  route <id>        road route from you to <id>
  locate <place>    centre the map on a place name
  lookup <id>       show and centre on <id>'s last position
  click <id>        click <id>'s marker
  heading <deg>     set device heading, report bearing to north
  unlock <phrase>   unlock lookup and locate
  list              list known participants
  quit              exit`

// ParseCommand splits a line into a verb and its argument. Everything after
// the first space is the argument, so place names may contain spaces.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	name, arg, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	arg = strings.TrimSpace(arg)

	needsArg, ok := commandArgs[name]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	if needsArg && arg == "" {
		return Command{}, fmt.Errorf("%w: %s needs an argument", ErrMissingArgument, name)
	}
	return Command{Name: name, Arg: arg}, nil
}
