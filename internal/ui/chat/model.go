// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigrun-chat/internal/compare"
	"github.com/jeranaias/rigrun-chat/internal/export"
	"github.com/jeranaias/rigrun-chat/internal/logging"
	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/protocol"
	"github.com/jeranaias/rigrun-chat/internal/render"
	"github.com/jeranaias/rigrun-chat/internal/session"
	"github.com/jeranaias/rigrun-chat/internal/store"
	"github.com/jeranaias/rigrun-chat/internal/ui/styles"
)

// sidebarWidth is the sidebar's width in cells including its border.
const sidebarWidth = 28

// requestTimeout bounds list and export commands. History and comparison
// use the api client's own timeout.
const requestTimeout = 30 * time.Second

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Dispatcher routes protocol events and submits turns.
type Dispatcher interface {
	Dispatch(ev protocol.Event)
	Submit(ctx context.Context, text string) error
}

// SessionLister lists the server's sessions for the sidebar.
type SessionLister interface {
	ListSessions(ctx context.Context) ([]model.Session, error)
}

// Deps are the components the view drives.
type Deps struct {
	Store      *store.Store
	Dispatcher Dispatcher
	Sessions   *session.Controller
	Compare    *compare.Orchestrator
	Lister     SessionLister

	Renderer render.Renderer
	Exporter export.Exporter
	ExportDir string

	Theme  *styles.Theme
	Region string
	Logger *slog.Logger

	// Resume is opened on start when set.
	Resume string
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	deps   Deps
	theme  *styles.Theme
	keys   KeyMap
	logger *slog.Logger

	// Dimensions
	width  int
	height int
	ready  bool

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Sidebar cursor into the snapshot's session list
	cursor int

	// Rendered finalized messages keyed by message ID; reset on resize
	rendered map[string]string
	sync     *viewportSync

	// Transient status line
	notice string
}

// New creates the chat model.
func New(deps Deps) *Model {
	if deps.Theme == nil {
		deps.Theme = styles.NewTheme("auto")
	}
	if deps.Renderer == nil {
		deps.Renderer = render.Plain{}
	}

	ti := textinput.New()
	ti.Placeholder = "Send a message..."
	ti.Prompt = "> "
	ti.PromptStyle = deps.Theme.InputPrompt
	ti.CharLimit = 8000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = styles.LineSpinner
	sp.Style = deps.Theme.Muted

	return &Model{
		deps:     deps,
		theme:    deps.Theme,
		keys:     DefaultKeyMap(),
		logger:   logging.OrDiscard(deps.Logger),
		input:    ti,
		spinner:  sp,
		rendered: make(map[string]string),
		sync:     newViewportSync(),
	}
}

// Init starts the cursor blink and spinner, loads the session list and
// resumes the requested session.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick, m.loadSessionsCmd()}
	if m.deps.Resume != "" {
		cmds = append(cmds, m.resumeCmd(m.deps.Resume))
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

func (m *Model) loadSessionsCmd() tea.Cmd {
	lister := m.deps.Lister
	if lister == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		sessions, err := lister.ListSessions(ctx)
		return sessionsLoadedMsg{Sessions: sessions, Err: err}
	}
}

// resumeCmd claims the fetch generation on the loop and loads off it.
func (m *Model) resumeCmd(id string) tea.Cmd {
	ctrl := m.deps.Sessions
	if ctrl == nil {
		return nil
	}
	req, err := ctrl.Request(id)
	if err != nil {
		m.notice = err.Error()
		return nil
	}
	return func() tea.Msg {
		h, err := ctrl.Load(context.Background(), req)
		return historyLoadedMsg{History: h, Err: err}
	}
}

// compareCmd marks the comparison pending on the loop and requests it off
// the loop; the outcome is published when it comes back through Update.
func (m *Model) compareCmd() tea.Cmd {
	orch := m.deps.Compare
	if orch == nil {
		return nil
	}
	p, err := orch.BeginSelection(context.Background(), m.deps.Region)
	if err != nil {
		m.comparisonFailed(err)
		return nil
	}
	return func() tea.Msg {
		return comparisonDoneMsg{Outcome: orch.Run(p)}
	}
}

func (m *Model) exportCmd() tea.Cmd {
	exp := m.deps.Exporter
	if exp == nil {
		return nil
	}
	snap := m.deps.Store.Snapshot()
	title := currentTitle(snap)
	opts := export.DefaultOptions()
	opts.SessionID = snap.SessionID
	if m.deps.ExportDir != "" {
		opts.OutputDir = m.deps.ExportDir
	}
	return func() tea.Msg {
		path, err := export.ExportToFile(title, snap.Messages, exp, opts)
		return exportDoneMsg{Path: path, Err: err}
	}
}

// currentTitle is the sidebar title of the active session, if listed.
func currentTitle(snap store.Snapshot) string {
	if s, ok := model.FindSession(snap.Sessions, snap.SessionID); ok {
		return s.DisplayTitle()
	}
	return model.Session{ID: snap.SessionID}.DisplayTitle()
}
