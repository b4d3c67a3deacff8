// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and execution for rigrun-chat.
//
// # Key Types
//
//   - Command: enumeration of the available commands
//   - Args: parsed command-line arguments
//   - App: the wired client (connection, store, assembler, controllers)
//
// # Usage
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	if err != nil {
//	    cli.DisplayError(os.Stderr, err, args.JSON)
//	    os.Exit(cli.GetExitCode(err))
//	}
//	err = cli.Run(ctx, cmd, args, os.Stdout)
//
// # Commands Overview
//
//	tui        full-screen chat (default)
//	chat       line-mode REPL, also used when stdout is not a terminal
//	sessions   list server sessions
//	compare    compare two sessions
//	export     write a session's history to a file
//	version    print version information
package cli
