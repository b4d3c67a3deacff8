// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigrun-chat/internal/client"
	"github.com/jeranaias/rigrun-chat/internal/compare"
	"github.com/jeranaias/rigrun-chat/internal/conn"
	"github.com/jeranaias/rigrun-chat/internal/protocol"
	"github.com/jeranaias/rigrun-chat/internal/session"
	"github.com/jeranaias/rigrun-chat/internal/store"
)

// Update handles all Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case ProtocolMsg:
		m.deps.Dispatcher.Dispatch(msg.Event)
		if _, ok := msg.Event.(protocol.SessionAssigned); ok {
			cmds = append(cmds, m.loadSessionsCmd())
		}

	case historyLoadedMsg:
		m.handleHistory(msg)

	case sessionsLoadedMsg:
		if msg.Err != nil {
			m.logger.Warn("chat.sessions.failed", "error", msg.Err)
			m.notice = "could not load sessions"
			break
		}
		m.deps.Store.SetSessions(msg.Sessions)
		m.clampCursor()

	case comparisonDoneMsg:
		if m.deps.Compare != nil {
			_, err := m.deps.Compare.Publish(msg.Outcome)
			m.comparisonFailed(err)
		}

	case exportDoneMsg:
		if msg.Err != nil {
			m.notice = "export failed: " + msg.Err.Error()
		} else {
			m.notice = "exported to " + msg.Path
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		cmd, handled := m.handleKey(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if !handled {
			var icmd tea.Cmd
			m.input, icmd = m.input.Update(msg)
			cmds = append(cmds, icmd)
		}

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.refresh()
	return m, batch(cmds)
}

// batch drops nil commands and avoids wrapping a single one.
func batch(cmds []tea.Cmd) tea.Cmd {
	valid := cmds[:0]
	for _, c := range cmds {
		if c != nil {
			valid = append(valid, c)
		}
	}
	switch len(valid) {
	case 0:
		return nil
	case 1:
		return valid[0]
	}
	return tea.Batch(valid...)
}

// =============================================================================
// RESULT HANDLERS
// =============================================================================

func (m *Model) comparisonFailed(err error) {
	switch {
	case err == nil, errors.Is(err, compare.ErrSuperseded), errors.Is(err, context.Canceled):
	case errors.Is(err, compare.ErrInvalidPair):
		m.notice = "select two different sessions to compare"
	default:
		m.logger.Warn("chat.compare.failed", "error", err)
	}
}

func (m *Model) handleHistory(msg historyLoadedMsg) {
	if msg.Err != nil {
		m.deps.Sessions.Fail(msg.Err)
		if !errors.Is(msg.Err, context.Canceled) {
			m.notice = "could not open session"
		}
		return
	}
	err := m.deps.Sessions.Activate(msg.History)
	switch {
	case err == nil:
		m.notice = ""
		m.sync.ForceUpdate()
	case errors.Is(err, session.ErrStale):
	default:
		m.notice = err.Error()
	}
}

// =============================================================================
// KEY HANDLING
// =============================================================================

// handleKey applies a binding. handled=false passes the key to the input.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	snap := m.deps.Store.Snapshot()

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.deps.Compare != nil {
			m.deps.Compare.Cancel()
		}
		return tea.Quit, true

	case key.Matches(msg, m.keys.NewChat):
		m.deps.Sessions.StartNew()
		m.input.Reset()
		m.notice = "new chat"
		return nil, true

	case key.Matches(msg, m.keys.Sidebar):
		m.deps.Store.ToggleSidebar()
		m.sync.ForceUpdate()
		return nil, true

	case key.Matches(msg, m.keys.CompareMode):
		m.deps.Store.SetCompareMode(!snap.CompareMode)
		return nil, true

	case key.Matches(msg, m.keys.Select) && snap.CompareMode:
		m.toggleSelection(snap)
		return nil, true

	case key.Matches(msg, m.keys.RunCompare):
		if len(snap.Selection) != 2 {
			m.notice = "select two sessions to compare (ctrl+k, space)"
			return nil, true
		}
		return m.compareCmd(), true

	case key.Matches(msg, m.keys.Dismiss):
		m.dismiss(snap)
		return nil, true

	case key.Matches(msg, m.keys.Export):
		if len(snap.Messages) == 0 {
			m.notice = "nothing to export"
			return nil, true
		}
		return m.exportCmd(), true

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return nil, true

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return nil, true

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return nil, true

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return nil, true

	case key.Matches(msg, m.keys.Submit):
		return m.submit(snap), true
	}
	return nil, false
}

func (m *Model) submit(snap store.Snapshot) tea.Cmd {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		if !snap.SidebarCollapsed && m.cursor < len(snap.Sessions) {
			return m.resumeCmd(snap.Sessions[m.cursor].ID)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	err := m.deps.Dispatcher.Submit(ctx, text)
	switch {
	case err == nil:
		m.input.Reset()
		m.notice = ""
		m.viewport.GotoBottom()
	case errors.Is(err, client.ErrEmptyTurn):
	case errors.Is(err, client.ErrBusy):
		m.notice = "waiting for the current response"
	case errors.Is(err, conn.ErrNotConnected):
		m.notice = "not connected; message kept"
	default:
		m.notice = fmt.Sprintf("send failed: %v", err)
	}
	return nil
}

func (m *Model) dismiss(snap store.Snapshot) {
	switch {
	case snap.ComparisonPending && m.deps.Compare != nil:
		m.deps.Compare.Cancel()
	case snap.ShowComparison || snap.ComparisonErr != nil:
		m.deps.Store.DismissComparison()
	case snap.CompareMode:
		m.deps.Store.SetCompareMode(false)
	default:
		m.notice = ""
	}
}

func (m *Model) toggleSelection(snap store.Snapshot) {
	if m.cursor >= len(snap.Sessions) {
		return
	}
	id := snap.Sessions[m.cursor].ID
	if !m.deps.Store.ToggleSessionSelection(id) {
		m.notice = "at most two sessions can be selected"
	}
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.deps.Store.Snapshot().Sessions)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
