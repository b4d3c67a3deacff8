// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// BLOCK KIND
// =============================================================================

// BlockKind identifies what a content block carries.
type BlockKind string

const (
	BlockText          BlockKind = "text"
	BlockToolExecution BlockKind = "tool_execution"
	BlockThinking      BlockKind = "thinking"
)

// ParseBlockKind converts a wire kind into a BlockKind.
func ParseBlockKind(s string) (BlockKind, error) {
	switch BlockKind(s) {
	case BlockText, BlockToolExecution, BlockThinking:
		return BlockKind(s), nil
	default:
		return "", fmt.Errorf("unknown block kind %q", s)
	}
}

// IsTextBearing reports whether blocks of this kind contribute to the
// message's plain-text content.
func (k BlockKind) IsTextBearing() bool {
	return k == BlockText
}

// =============================================================================
// BLOCK STATE
// =============================================================================

// BlockState is the lifecycle position of a block within one message.
type BlockState string

const (
	BlockOpen      BlockState = "open"
	BlockStreaming BlockState = "streaming"
	BlockClosed    BlockState = "closed"
)

// =============================================================================
// CONTENT BLOCK
// =============================================================================

// ToolCall is the structured part of a tool execution block.
type ToolCall struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// ContentBlock is one typed fragment of an assistant turn.
// Index is assigned by the server and unique within one message.
type ContentBlock struct {
	Index int        `json:"index"`
	Kind  BlockKind  `json:"kind"`
	State BlockState `json:"state"`
	Text  string     `json:"text"`
	Tool  *ToolCall  `json:"tool,omitempty"`
}

// IsClosed reports whether the block accepts no further deltas.
func (b ContentBlock) IsClosed() bool {
	return b.State == BlockClosed
}

// Clone returns a deep copy of the block.
func (b ContentBlock) Clone() ContentBlock {
	if b.Tool != nil {
		tool := *b.Tool
		b.Tool = &tool
	}
	return b
}

// CloneBlocks deep-copies a block slice.
func CloneBlocks(blocks []ContentBlock) []ContentBlock {
	if blocks == nil {
		return nil
	}
	out := make([]ContentBlock, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}
	return out
}

// SortBlocks returns a copy of blocks ordered by ascending index.
func SortBlocks(blocks []ContentBlock) []ContentBlock {
	sorted := CloneBlocks(blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Index < sorted[j].Index
	})
	return sorted
}

// PlainText concatenates the text of all text-bearing blocks in ascending
// index order. Arrival order never matters. Tool execution and thinking
// blocks are excluded.
func PlainText(blocks []ContentBlock) string {
	var sb strings.Builder
	for _, b := range SortBlocks(blocks) {
		if b.Kind.IsTextBearing() {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}
