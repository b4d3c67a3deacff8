// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigrun-chat/internal/protocol"
)

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewTheme_ForcedModes(t *testing.T) {
	if !NewTheme("dark").IsDark {
		t.Error("dark mode should set IsDark")
	}
	if NewTheme("light").IsDark {
		t.Error("light mode should clear IsDark")
	}
}

func TestThemeStylesRenderText(t *testing.T) {
	theme := NewTheme("dark")

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"UserBubble", theme.UserBubble},
		{"AssistantBody", theme.AssistantBody},
		{"Thinking", theme.Thinking},
		{"ToolBox", theme.ToolBox},
		{"Sidebar", theme.Sidebar},
		{"StatusBar", theme.StatusBar},
		{"Modal", theme.Modal},
	}

	for _, s := range styles {
		if rendered := s.style.Render("test"); !strings.Contains(rendered, "test") {
			t.Errorf("%s style dropped its content: %q", s.name, rendered)
		}
	}
}

// =============================================================================
// STATUS TESTS
// =============================================================================

func TestStatusIndicator(t *testing.T) {
	tests := []struct {
		state protocol.ConnState
		want  string
	}{
		{protocol.StateConnected, StatusIndicators.Active},
		{protocol.StateConnecting, StatusIndicators.Pending},
		{protocol.StateReconnecting, StatusIndicators.Pending},
		{protocol.StateDisconnected, StatusIndicators.Error},
	}
	for _, tt := range tests {
		if got := StatusIndicator(tt.state); got != tt.want {
			t.Errorf("StatusIndicator(%s) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestRenderError(t *testing.T) {
	out := NewTheme("dark").RenderError("boom")
	if !strings.Contains(out, "[X] boom") {
		t.Errorf("RenderError() = %q", out)
	}
}

func TestSpinners(t *testing.T) {
	for name, sp := range map[string][]string{"line": LineSpinner.Frames, "dots": DotsSpinner.Frames} {
		if len(sp) == 0 {
			t.Errorf("%s spinner has no frames", name)
		}
	}
}
