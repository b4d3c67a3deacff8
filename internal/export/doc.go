// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export encodes a finished conversation as a downloadable file.
//
// Exporters are pure functions of the ordered message list. They read only
// each message's finalized Content; streaming blocks never reach them.
//
// # Supported Formats
//
//   - Markdown: human-readable with YAML front matter
//   - JSON: machine-readable message list
//
// # Usage
//
//	exp, _ := export.ForFormat("md", nil)
//	path, err := export.ExportToFile(title, snap.Messages, exp, opts)
package export
