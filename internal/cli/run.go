// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// run.go - Command routing.
package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/jeranaias/rigrun-chat/internal/config"
	"github.com/jeranaias/rigrun-chat/internal/logging"
)

// LoadConfig loads the file at path, or the default location when path is
// empty.
func LoadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// Run executes cmd, writing user-facing output to out.
func Run(ctx context.Context, cmd Command, args Args, out io.Writer) error {
	switch cmd {
	case CmdHelp:
		PrintUsage(out)
		return nil
	case CmdVersion:
		if args.JSON {
			return writeJSON(out, map[string]string{
				"version":    Version,
				"git_commit": GitCommit,
				"build_date": BuildDate,
				"go_version": runtime.Version(),
			})
		}
		PrintVersion(out)
		return nil
	}

	cfg, err := LoadConfig(args.ConfigPath)
	if err != nil {
		return err
	}
	logPath, err := cfg.LogPath()
	if err != nil {
		return err
	}
	logger, closer, err := logging.Open(logPath, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Info("start", "command", cmd.String(), "version", Version, "server", cfg.Server.URL)

	app, err := NewApp(cfg, args.Location, logger)
	if err != nil {
		return err
	}

	switch cmd {
	case CmdTUI:
		if args.Plain || !CanRunTUI() {
			return RunChat(ctx, app, out)
		}
		return RunTUI(ctx, app, out)
	case CmdChat:
		return RunChat(ctx, app, out)
	case CmdSessions:
		return RunSessions(ctx, app, args, out)
	case CmdCompare:
		return RunCompare(ctx, app, args, out)
	case CmdExport:
		return RunExport(ctx, app, args, out)
	}
	return fmt.Errorf("unhandled command %s", cmd)
}
