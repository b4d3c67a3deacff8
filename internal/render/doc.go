// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns finished message text into terminal output.
//
// Markdown uses glamour and is only applied to finalized content; streaming
// blocks are shown as plain text until their message completes. Plain is
// the fallback for pipes and --plain mode.
package render
