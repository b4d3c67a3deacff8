// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types shared by the streaming client:
// finalized transcript messages, the typed content blocks an assistant turn
// is assembled from, server-side session summaries, and comparison results.
//
// # Key Types
//
//   - Message: Single finalized turn with role, content, timestamp and blocks
//   - ContentBlock: One indexed fragment (text, tool execution, thinking)
//   - Session: Server-tracked conversation summary, optionally with history
//   - ComparisonResult: Derived prose comparison of two sessions
//
// # Usage
//
// Derive the exportable text of an assembled turn:
//
//	blocks := []model.ContentBlock{
//	    {Index: 1, Kind: model.BlockText, Text: "lo"},
//	    {Index: 0, Kind: model.BlockText, Text: "Hel"},
//	}
//	text := model.PlainText(blocks) // "Hello"
package model
