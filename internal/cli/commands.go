// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// commands.go - One-shot commands: sessions, compare and export.
//
// Examples:
//   rigrun-chat sessions --limit 10
//   rigrun-chat sessions --json
//   rigrun-chat compare abc123 def456 --region Europe
//   rigrun-chat export abc123 --format json --out chat.json
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jeranaias/rigrun-chat/internal/export"
	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/render"
	"github.com/jeranaias/rigrun-chat/internal/store"
	"github.com/jeranaias/rigrun-chat/internal/util"
)

// =============================================================================
// SESSIONS
// =============================================================================

// RunSessions lists the server's sessions.
func RunSessions(ctx context.Context, app *App, args Args, out io.Writer) error {
	sessions, err := app.API.ListSessions(ctx)
	if err != nil {
		return err
	}
	if args.Limit > 0 && len(sessions) > args.Limit {
		sessions = sessions[:args.Limit]
	}
	if args.JSON {
		return writeJSON(out, sessions)
	}
	writeSessionTable(out, sessions)
	return nil
}

const (
	idColumn    = 14
	titleColumn = 40
)

// writeSessionTable prints sessions one per row.
func writeSessionTable(w io.Writer, sessions []model.Session) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, infoStyle.Render("no sessions"))
		return
	}
	fmt.Fprintln(w, infoStyle.Render(util.PadRight("ID", idColumn)+"  "+util.PadRight("TITLE", titleColumn)+"  MESSAGES"))
	for _, s := range sessions {
		id := util.PadRight(util.TruncateWidth(s.ID, idColumn), idColumn)
		title := util.PadRight(util.TruncateWidth(s.DisplayTitle(), titleColumn), titleColumn)
		fmt.Fprintf(w, "%s  %s  %s\n", id, title, strconv.Itoa(s.MessageCount))
	}
}

// =============================================================================
// COMPARE
// =============================================================================

// RunCompare requests the comparison of two sessions and prints it.
func RunCompare(ctx context.Context, app *App, args Args, out io.Writer) error {
	// Titles travel with the request when the list is reachable.
	if sessions, err := app.API.ListSessions(ctx); err == nil {
		app.Store.SetSessions(sessions)
	} else {
		app.Logger.Debug("compare.titles.unavailable", "error", err)
	}

	result, err := app.Compare.Compare(ctx, args.SessionA, args.SessionB, app.Region(args.Region))
	if err != nil {
		return err
	}
	if args.JSON {
		return writeJSON(out, result)
	}
	writeComparison(out, result, newRenderer(app, nil), GetTerminalWidth())
	return nil
}

func writeComparison(w io.Writer, r *model.ComparisonResult, renderer render.Renderer, width int) {
	heading := fmt.Sprintf("%s vs %s", r.A.DisplayTitle(), r.B.DisplayTitle())
	if r.Region != "" {
		heading += " (" + r.Region + ")"
	}
	fmt.Fprintln(w, assistantStyle.Render(heading))
	fmt.Fprintln(w)
	fmt.Fprintln(w, render.Fallback(renderer, r.Text, width))
}

// =============================================================================
// EXPORT
// =============================================================================

// RunExport fetches a session's history and writes it to a file.
func RunExport(ctx context.Context, app *App, args Args, out io.Writer) error {
	msgs, err := app.API.History(ctx, args.SessionID)
	if err != nil {
		return err
	}

	title := model.Session{ID: args.SessionID}.DisplayTitle()
	if sessions, err := app.API.ListSessions(ctx); err == nil {
		if s, ok := model.FindSession(sessions, args.SessionID); ok {
			title = s.DisplayTitle()
		}
	}

	opts := export.DefaultOptions()
	opts.SessionID = args.SessionID
	format := args.Format
	if format == "" {
		format = formatForPath(args.Out)
	}
	exp, err := export.ForFormat(format, opts)
	if err != nil {
		return NewValidationError("format", format, err.Error())
	}

	path := args.Out
	if path == "" {
		path, err = export.ExportToFile(title, msgs, exp, opts)
	} else {
		err = export.WriteTo(path, title, msgs, exp)
	}
	if err != nil {
		return err
	}

	if args.JSON {
		return writeJSON(out, map[string]any{"success": true, "path": path, "messages": len(msgs)})
	}
	fmt.Fprintf(out, "exported %d messages to %s\n", len(msgs), path)
	return nil
}

// formatForPath returns the export format implied by a file name.
func formatForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "md"
}

// conversationTitle returns the title of the active conversation.
func conversationTitle(snap store.Snapshot) string {
	if s, ok := model.FindSession(snap.Sessions, snap.SessionID); ok {
		return s.DisplayTitle()
	}
	return model.Session{ID: snap.SessionID}.DisplayTitle()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
