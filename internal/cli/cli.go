// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command parsing for rigrun-chat.
package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdSessions
	CmdCompare
	CmdExport
	CmdVersion
	CmdHelp
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdChat:
		return "chat"
	case CmdSessions:
		return "sessions"
	case CmdCompare:
		return "compare"
	case CmdExport:
		return "export"
	case CmdVersion:
		return "version"
	default:
		return "help"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string
	Location   string
	Plain      bool
	JSON       bool

	// compare
	SessionA string
	SessionB string
	Region   string

	// export
	SessionID string
	Out       string
	Format    string

	// sessions
	Limit int
}

// boolFlags never take a value.
var boolFlags = []string{"plain", "json", "h", "help", "v", "version"}

const usageText = `rigrun-chat - streaming chat client

Usage:
  rigrun-chat [tui]          full-screen chat (default)
  rigrun-chat chat           line-mode chat
  rigrun-chat sessions       list sessions on the server
  rigrun-chat compare A B    compare two sessions
  rigrun-chat export ID      export a session's history
  rigrun-chat version        print version information

Global flags:
  --config PATH     configuration file (default ~/.rigrun-chat/config.toml)
  --location URL    address of the conversation, e.g. http://host/chat?session=abc
  --plain           line mode even on a terminal
  --json            machine-readable output for sessions/compare/version

Command flags:
  compare --region R            region for the analysis (default from config)
  export  --out FILE            output file (default: generated name)
  export  --format md|json      export format (default from --out, else md)
  sessions --limit N            show at most N sessions

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "rigrun-chat version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go version: %s\n", runtime.Version())
}

// Parse parses command-line arguments (without the program name).
func Parse(raw []string) (Command, Args, error) {
	p := NewArgParser(raw, boolFlags...)

	args := Args{
		ConfigPath: p.Flag("config"),
		Location:   p.Flag("location"),
		Plain:      p.BoolFlag("plain"),
		JSON:       p.BoolFlag("json"),
		Region:     p.Flag("region"),
		Out:        p.FlagOrDefault("out", p.Flag("o")),
		Format:     strings.ToLower(p.Flag("format")),
		Limit:      p.FlagIntOrDefault("limit", 0),
	}

	if p.HasFlag("limit") {
		if _, err := p.FlagInt("limit"); err != nil || args.Limit < 0 {
			return CmdHelp, args, NewValidationError("limit", p.Flag("limit"), "must be a non-negative number")
		}
	}

	if p.BoolFlag("h") || p.BoolFlag("help") {
		return CmdHelp, args, nil
	}
	if p.BoolFlag("v") || p.BoolFlag("version") {
		return CmdVersion, args, nil
	}

	switch cmd := strings.ToLower(p.Subcommand()); cmd {
	case "", "tui":
		return CmdTUI, args, nil

	case "chat":
		return CmdChat, args, nil

	case "sessions", "session", "ls":
		return CmdSessions, args, nil

	case "compare":
		args.SessionA, args.SessionB = p.Positional(1), p.Positional(2)
		if args.SessionA == "" || args.SessionB == "" {
			return CmdCompare, args, NewValidationErrorWithExample("compare", "",
				"two session ids are required", "rigrun-chat compare abc123 def456 --region EU")
		}
		if p.PositionalCount() > 3 {
			return CmdCompare, args, NewValidationError("compare", p.Positional(3), "expects exactly two session ids")
		}
		if args.SessionA == args.SessionB {
			return CmdCompare, args, NewValidationError("compare", args.SessionA, "sessions must differ")
		}
		return CmdCompare, args, nil

	case "export":
		args.SessionID = p.Positional(1)
		if args.SessionID == "" {
			return CmdExport, args, NewValidationErrorWithExample("export", "",
				"a session id is required", "rigrun-chat export abc123 --out chat.md")
		}
		switch args.Format {
		case "", "md", "markdown", "json":
		default:
			return CmdExport, args, NewValidationError("format", args.Format, "must be md or json")
		}
		return CmdExport, args, nil

	case "version":
		return CmdVersion, args, nil

	case "help":
		return CmdHelp, args, nil

	default:
		return CmdHelp, args, NewValidationError("command", cmd, "unknown command")
	}
}
