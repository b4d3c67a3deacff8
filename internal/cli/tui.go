// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// tui.go - Full-screen chat mode.
package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigrun-chat/internal/export"
	"github.com/jeranaias/rigrun-chat/internal/protocol"
	"github.com/jeranaias/rigrun-chat/internal/render"
	"github.com/jeranaias/rigrun-chat/internal/ui/chat"
	"github.com/jeranaias/rigrun-chat/internal/ui/styles"
)

// newRenderer picks the assistant text renderer for theme. A nil theme
// leaves the style to glamour's detection.
func newRenderer(app *App, theme *styles.Theme) render.Renderer {
	if !app.Config.UI.Markdown || !ColorsEnabled() {
		return render.Plain{}
	}
	if theme == nil {
		return render.NewMarkdown("auto")
	}
	if theme.IsDark {
		return render.NewMarkdown("dark")
	}
	return render.NewMarkdown("light")
}

// RunTUI runs the full-screen chat until the user quits. The final
// location is written to out so the conversation can be reopened with
// --location.
func RunTUI(ctx context.Context, app *App, out io.Writer) error {
	theme := styles.NewTheme(app.Config.UI.Theme)
	if !app.Config.UI.Sidebar {
		app.Store.ToggleSidebar()
	}

	exporter, err := export.ForFormat("md", nil)
	if err != nil {
		return err
	}

	m := chat.New(chat.Deps{
		Store:      app.Store,
		Dispatcher: app.Dispatcher,
		Sessions:   app.Sessions,
		Compare:    app.Compare,
		Lister:     app.API,
		Renderer:   newRenderer(app, theme),
		Exporter:   exporter,
		ExportDir:  ".",
		Theme:      theme,
		Region:     app.Region(""),
		Logger:     app.Logger.With("component", "tui"),
		Resume:     app.Location.SessionID(),
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Every connection event is handled on the program's update loop.
	app.Conn.OnEvent(func(ev protocol.Event) {
		p.Send(chat.ProtocolMsg{Event: ev})
	})
	if err := app.Conn.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer app.Close()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}

	fmt.Fprintf(out, "location: %s\n", app.Location)
	return nil
}
