// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
)

// =============================================================================
// PLAIN TEXT TESTS
// =============================================================================

func TestPlainText(t *testing.T) {
	tests := []struct {
		name   string
		blocks []ContentBlock
		want   string
	}{
		{
			name: "empty",
			want: "",
		},
		{
			name: "ordered by index not position",
			blocks: []ContentBlock{
				{Index: 2, Kind: BlockText, Text: "c"},
				{Index: 0, Kind: BlockText, Text: "a"},
				{Index: 1, Kind: BlockText, Text: "b"},
			},
			want: "abc",
		},
		{
			name: "non-text blocks excluded",
			blocks: []ContentBlock{
				{Index: 0, Kind: BlockThinking, Text: "hmm"},
				{Index: 1, Kind: BlockText, Text: "answer"},
				{Index: 2, Kind: BlockToolExecution, Text: `{"q":1}`},
			},
			want: "answer",
		},
		{
			name: "sparse indices",
			blocks: []ContentBlock{
				{Index: 10, Kind: BlockText, Text: "!"},
				{Index: 3, Kind: BlockText, Text: "hi"},
			},
			want: "hi!",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := PlainText(tc.blocks); got != tc.want {
				t.Errorf("PlainText() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSortBlocks_DoesNotMutateInput(t *testing.T) {
	in := []ContentBlock{
		{Index: 1, Kind: BlockText, Text: "b", Tool: &ToolCall{Name: "x"}},
		{Index: 0, Kind: BlockText, Text: "a"},
	}
	out := SortBlocks(in)

	if in[0].Index != 1 {
		t.Error("SortBlocks reordered its input")
	}
	if out[0].Index != 0 || out[1].Index != 1 {
		t.Errorf("SortBlocks order = %d,%d", out[0].Index, out[1].Index)
	}
	out[1].Tool.Name = "changed"
	if in[0].Tool.Name != "x" {
		t.Error("SortBlocks shared the Tool pointer with its input")
	}
}

// =============================================================================
// KIND / ROLE TESTS
// =============================================================================

func TestParseBlockKind(t *testing.T) {
	for _, s := range []string{"text", "tool_execution", "thinking"} {
		if _, err := ParseBlockKind(s); err != nil {
			t.Errorf("ParseBlockKind(%q) error: %v", s, err)
		}
	}
	if _, err := ParseBlockKind("image"); err == nil {
		t.Error("ParseBlockKind(image) should fail")
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole("assistant"); err != nil || r != RoleAssistant {
		t.Errorf("ParseRole(assistant) = %v, %v", r, err)
	}
	if _, err := ParseRole("tool"); err == nil {
		t.Error("ParseRole(tool) should fail")
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewAssistantMessage(t *testing.T) {
	msg := NewAssistantMessage([]ContentBlock{
		{Index: 1, Kind: BlockToolExecution, State: BlockClosed},
		{Index: 0, Kind: BlockText, State: BlockClosed, Text: "Hello"},
	})

	if msg.Role != RoleAssistant {
		t.Errorf("Role = %v, want assistant", msg.Role)
	}
	if msg.Content != "Hello" {
		t.Errorf("Content = %q, want Hello", msg.Content)
	}
	if len(msg.Blocks) != 2 || msg.Blocks[0].Index != 0 {
		t.Errorf("Blocks not retained in index order: %+v", msg.Blocks)
	}
	if !msg.HasBlock(BlockToolExecution) {
		t.Error("HasBlock(tool_execution) = false")
	}
	if msg.ID == "" || msg.Timestamp.IsZero() {
		t.Error("ID and Timestamp should be set")
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := NewUserMessage("héllo wörld")
	if got := msg.Preview(20); got != "héllo wörld" {
		t.Errorf("Preview(20) = %q", got)
	}
	if got := msg.Preview(8); got != "héllo..." {
		t.Errorf("Preview(8) = %q", got)
	}
}

func TestSession_DisplayTitle(t *testing.T) {
	if got := (Session{}).DisplayTitle(); got != "New Conversation" {
		t.Errorf("empty DisplayTitle = %q", got)
	}
	if got := (Session{ID: "abc"}).DisplayTitle(); got != "Session abc" {
		t.Errorf("id-only DisplayTitle = %q", got)
	}
	if got := (Session{ID: "abc", Title: "Rain"}).DisplayTitle(); got != "Rain" {
		t.Errorf("titled DisplayTitle = %q", got)
	}
}
