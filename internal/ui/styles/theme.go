// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/rigrun-chat/internal/protocol"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// LAYOUT
	// ==========================================================================

	App       lipgloss.Style
	Header    lipgloss.Style
	Separator lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserLabel      lipgloss.Style
	UserBubble     lipgloss.Style
	AssistantLabel lipgloss.Style
	AssistantBody  lipgloss.Style
	SystemBubble   lipgloss.Style
	Thinking       lipgloss.Style
	ToolBox        lipgloss.Style
	ToolHeader     lipgloss.Style
	Streaming      lipgloss.Style

	// ==========================================================================
	// SIDEBAR
	// ==========================================================================

	Sidebar         lipgloss.Style
	SidebarTitle    lipgloss.Style
	SidebarItem     lipgloss.Style
	SidebarCursor   lipgloss.Style
	SidebarSelected lipgloss.Style
	SidebarActive   lipgloss.Style

	// ==========================================================================
	// STATUS AND INPUT
	// ==========================================================================

	StatusBar          lipgloss.Style
	StatusConnected    lipgloss.Style
	StatusReconnecting lipgloss.Style
	StatusDisconnected lipgloss.Style
	InputPrompt        lipgloss.Style
	Hint               lipgloss.Style

	// ==========================================================================
	// MODAL AND ERRORS
	// ==========================================================================

	Modal      lipgloss.Style
	ModalTitle lipgloss.Style
	ErrorText  lipgloss.Style
	Muted      lipgloss.Style
}

// NewTheme creates a theme. mode is "dark", "light" or "auto"; auto asks
// the terminal for its background.
func NewTheme(mode string) *Theme {
	profile := termenv.ColorProfile()

	var isDark bool
	switch mode {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{IsDark: isDark, ColorProfile: profile}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)

	t.Separator = lipgloss.NewStyle().Foreground(Overlay)

	// Messages
	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1)

	t.AssistantLabel = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.AssistantBody = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderTop(false).
		BorderRight(false).
		BorderBottom(false).
		BorderForeground(AssistantBubbleBorder).
		PaddingLeft(1)

	t.SystemBubble = lipgloss.NewStyle().Foreground(SystemBubbleFg).Italic(true)

	t.Thinking = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Faint(true)

	t.ToolBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ToolBorder).
		Padding(0, 1)

	t.ToolHeader = lipgloss.NewStyle().Bold(true).Foreground(Emerald)

	t.Streaming = lipgloss.NewStyle().Foreground(TextPrimary)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderTop(false).
		BorderLeft(false).
		BorderBottom(false).
		BorderForeground(OverlayDim).
		PaddingRight(1)
	t.SidebarTitle = lipgloss.NewStyle().Bold(true).Foreground(TextSecondary)
	t.SidebarItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.SidebarCursor = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.SidebarSelected = lipgloss.NewStyle().Foreground(Purple).Background(SelectionBg)
	t.SidebarActive = lipgloss.NewStyle().Foreground(Emerald)

	// Status and input
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.StatusConnected = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.StatusReconnecting = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.StatusDisconnected = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.InputPrompt = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.Hint = lipgloss.NewStyle().Foreground(TextMuted)

	// Modal and errors
	t.Modal = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Purple).
		Padding(1, 2)
	t.ModalTitle = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.ErrorText = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)
}

// StatusFor returns the status bar style for a connection state.
func (t *Theme) StatusFor(state protocol.ConnState) lipgloss.Style {
	switch state {
	case protocol.StateConnected:
		return t.StatusConnected
	case protocol.StateConnecting, protocol.StateReconnecting:
		return t.StatusReconnecting
	default:
		return t.StatusDisconnected
	}
}

// StatusIndicator returns the ASCII indicator for a connection state.
func StatusIndicator(state protocol.ConnState) string {
	switch state {
	case protocol.StateConnected:
		return StatusIndicators.Active
	case protocol.StateConnecting, protocol.StateReconnecting:
		return StatusIndicators.Pending
	default:
		return StatusIndicators.Error
	}
}

// RenderError renders an error message with its indicator.
func (t *Theme) RenderError(message string) string {
	return t.ErrorText.Render(StatusIndicators.Error + " " + message)
}
