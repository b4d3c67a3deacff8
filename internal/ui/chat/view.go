// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/render"
	"github.com/jeranaias/rigrun-chat/internal/store"
	"github.com/jeranaias/rigrun-chat/internal/ui/styles"
	"github.com/jeranaias/rigrun-chat/internal/util"
)

// chromeLines is header + status bar + input.
const chromeLines = 3

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) resize(width, height int) {
	if width != m.width {
		m.rendered = make(map[string]string)
	}
	m.width, m.height = width, height

	vpHeight := height - chromeLines
	if vpHeight < 1 {
		vpHeight = 1
	}
	if !m.ready {
		m.viewport = viewport.New(m.contentWidth(), vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.contentWidth()
		m.viewport.Height = vpHeight
	}
	m.input.Width = width - 4
	m.sync.ForceUpdate()
}

func (m *Model) sidebarVisible() bool {
	return !m.deps.Store.Snapshot().SidebarCollapsed && m.width > sidebarWidth*2
}

func (m *Model) contentWidth() int {
	w := m.width
	if m.sidebarVisible() {
		w -= sidebarWidth
	}
	if w < 10 {
		w = 10
	}
	return w
}

// refresh rebuilds the conversation text and pushes it to the viewport when
// it changed. Follows the bottom when the user has not scrolled up.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.Width = m.contentWidth()
	content := m.conversationView(m.deps.Store.Snapshot(), m.viewport.Width)
	if !m.sync.ShouldUpdate(content) {
		return
	}
	follow := m.viewport.AtBottom()
	m.viewport.SetContent(content)
	if follow {
		m.viewport.GotoBottom()
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the whole screen.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}
	snap := m.deps.Store.Snapshot()

	body := m.viewport.View()
	if overlay, ok := m.comparisonView(snap); ok {
		body = lipgloss.Place(m.viewport.Width, m.viewport.Height, lipgloss.Center, lipgloss.Center, overlay)
	}
	if m.sidebarVisible() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(snap), body)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(snap),
		body,
		m.statusView(snap),
		m.input.View(),
	)
}

func (m *Model) headerView(snap store.Snapshot) string {
	title := "rigrun-chat"
	if snap.SessionID != "" {
		title += "  " + currentTitle(snap)
	} else {
		title += "  new conversation"
	}
	if snap.CompareMode {
		title += "  [compare]"
	}
	return m.theme.Header.Width(m.width).Render(util.TruncateWidth(title, m.width-2))
}

func (m *Model) statusView(snap store.Snapshot) string {
	conn := m.theme.StatusFor(snap.Connection).
		Render(styles.StatusIndicator(snap.Connection) + " " + string(snap.Connection))

	parts := []string{conn}
	if snap.Waiting {
		parts = append(parts, m.spinner.View()+" waiting")
	}
	switch {
	case m.notice != "":
		parts = append(parts, m.notice)
	case snap.Failure != nil:
		parts = append(parts, m.theme.RenderError(snap.Failure.Op+": "+util.FirstLine(snap.Failure.Err.Error())))
	default:
		parts = append(parts, m.theme.Hint.Render(m.keys.ShortHelp(snap.CompareMode)))
	}
	line := strings.Join(parts, "  ")
	return m.theme.StatusBar.Width(m.width).Render(util.TruncateWidth(line, m.width-2))
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m *Model) sidebarView(snap store.Snapshot) string {
	inner := sidebarWidth - 2
	lines := []string{m.theme.SidebarTitle.Render("Sessions")}

	if len(snap.Sessions) == 0 {
		lines = append(lines, m.theme.Muted.Render("(none)"))
	}

	rows := m.viewport.Height - 1
	start := 0
	if m.cursor >= rows && rows > 0 {
		start = m.cursor - rows + 1
	}
	for i := start; i < len(snap.Sessions) && i-start < rows; i++ {
		s := snap.Sessions[i]
		lines = append(lines, m.sidebarRow(snap, s, i == m.cursor, inner))
	}

	return m.theme.Sidebar.
		Width(inner).
		Height(m.viewport.Height).
		Render(strings.Join(lines, "\n"))
}

func (m *Model) sidebarRow(snap store.Snapshot, s model.Session, atCursor bool, width int) string {
	prefix := "  "
	if atCursor {
		prefix = "> "
	}
	mark := ""
	if snap.CompareMode {
		mark = "[ ] "
		if snap.IsSelected(s.ID) {
			mark = "[x] "
		}
	}
	title := util.TruncateWidth(s.DisplayTitle(), width-util.StringWidth(prefix+mark))
	row := prefix + mark + title

	switch {
	case snap.CompareMode && snap.IsSelected(s.ID):
		return m.theme.SidebarSelected.Render(row)
	case atCursor:
		return m.theme.SidebarCursor.Render(row)
	case s.ID == snap.SessionID:
		return m.theme.SidebarActive.Render(row)
	}
	return m.theme.SidebarItem.Render(row)
}

// =============================================================================
// CONVERSATION
// =============================================================================

func (m *Model) conversationView(snap store.Snapshot, width int) string {
	if len(snap.Messages) == 0 && !snap.IsStreaming() && !snap.Waiting {
		return m.theme.Muted.Render("Start typing to begin a conversation.")
	}

	parts := make([]string, 0, len(snap.Messages)+1)
	for _, msg := range snap.Messages {
		parts = append(parts, m.messageView(msg, width))
	}
	if snap.IsStreaming() {
		parts = append(parts, m.theme.AssistantLabel.Render("[Assistant]")+"\n"+
			m.blocksView(snap.Streaming, width, false))
	} else if snap.Waiting {
		parts = append(parts, m.theme.AssistantLabel.Render("[Assistant]")+" "+m.spinner.View())
	}
	return strings.Join(parts, "\n\n")
}

// messageView renders a finalized message. Results are cached by ID.
func (m *Model) messageView(msg model.Message, width int) string {
	if out, ok := m.rendered[msg.ID]; ok && msg.ID != "" {
		return out
	}

	var out string
	switch msg.Role {
	case model.RoleUser:
		body, _ := render.Plain{}.Render(msg.Content, width-4)
		out = m.theme.UserLabel.Render("["+msg.Role.DisplayName()+"]") + "\n" +
			m.theme.UserBubble.Render(body)
	case model.RoleAssistant:
		var body string
		if msg.Blocks != nil {
			body = m.blocksView(msg.Blocks, width-2, true)
		} else {
			body = render.Fallback(m.deps.Renderer, msg.Content, width-2)
		}
		out = m.theme.AssistantLabel.Render("["+msg.Role.DisplayName()+"]") + "\n" +
			m.theme.AssistantBody.Render(body)
	default:
		body, _ := render.Plain{}.Render(msg.Content, width)
		out = m.theme.SystemBubble.Render(body)
	}

	if msg.ID != "" {
		m.rendered[msg.ID] = out
	}
	return out
}

// blocksView renders blocks in index order. Markup rendering is applied to
// text only once the message is final.
func (m *Model) blocksView(blocks []model.ContentBlock, width int, final bool) string {
	sorted := model.SortBlocks(blocks)
	parts := make([]string, 0, len(sorted))
	for _, b := range sorted {
		switch b.Kind {
		case model.BlockText:
			if final {
				parts = append(parts, render.Fallback(m.deps.Renderer, b.Text, width))
			} else {
				text, _ := render.Plain{}.Render(b.Text, width)
				parts = append(parts, m.theme.Streaming.Render(text))
			}
		case model.BlockThinking:
			text, _ := render.Plain{}.Render(b.Text, width)
			parts = append(parts, m.theme.Thinking.Render(text))
		case model.BlockToolExecution:
			parts = append(parts, m.toolView(b, width))
		}
	}
	return strings.Join(parts, "\n")
}

func (m *Model) toolView(b model.ContentBlock, width int) string {
	name := "tool"
	if b.Tool != nil && b.Tool.Name != "" {
		name = b.Tool.Name
	}
	header := m.theme.ToolHeader.Render(name)
	if !b.IsClosed() {
		header += " " + m.spinner.View()
	}

	payload, ok := render.HighlightJSON(b.Text)
	if !ok {
		payload, _ = render.Plain{}.Render(b.Text, width-4)
	}
	return m.theme.ToolBox.Width(width - 2).Render(header + "\n" + payload)
}

// =============================================================================
// COMPARISON MODAL
// =============================================================================

func (m *Model) comparisonView(snap store.Snapshot) (string, bool) {
	width := m.viewport.Width - 6
	if width < 20 {
		width = 20
	}

	var body string
	switch {
	case snap.ComparisonPending:
		body = m.spinner.View() + " comparing " + strings.Join(m.selectionTitles(snap), " and ")
	case snap.ComparisonErr != nil:
		body = m.theme.RenderError(util.FirstLine(snap.ComparisonErr.Error()))
	case snap.ShowComparison && snap.Comparison != nil:
		c := snap.Comparison
		head := fmt.Sprintf("%s vs %s", c.A.DisplayTitle(), c.B.DisplayTitle())
		if c.Region != "" {
			head += " (" + c.Region + ")"
		}
		body = m.theme.Muted.Render(head) + "\n\n" + render.Fallback(m.deps.Renderer, c.Text, width-4)
	default:
		return "", false
	}

	lines := strings.Split(body, "\n")
	if limit := m.viewport.Height - 6; limit > 0 && len(lines) > limit {
		lines = append(lines[:limit], "...")
	}
	box := m.theme.ModalTitle.Render("Comparison") + "\n\n" +
		strings.Join(lines, "\n") + "\n\n" + m.theme.Hint.Render("esc to close")
	return m.theme.Modal.Width(width).Render(box), true
}

func (m *Model) selectionTitles(snap store.Snapshot) []string {
	titles := make([]string, 0, len(snap.Selection))
	for _, id := range snap.Selection {
		s, _ := model.FindSession(snap.Sessions, id)
		if s.ID == "" {
			s.ID = id
		}
		titles = append(titles, s.DisplayTitle())
	}
	return titles
}
