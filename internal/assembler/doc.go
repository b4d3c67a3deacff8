// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assembler turns block-scoped protocol events into finalized
// assistant messages.
//
// The server streams one assistant turn as interleaved open/delta/close
// events for numbered blocks, followed by message_done. The Assembler keeps
// an index-keyed map of blocks for the turn in flight, publishes an
// index-ordered snapshot to the store after every event, and on completion
// appends the finalized message. Final text is ordered by block index, never
// by arrival order, so tool execution and thinking blocks can interleave with
// text without corrupting the transcript.
//
// Protocol anomalies (duplicate open, delta for an unknown or closed block,
// unclosed blocks at completion, stray events for an abandoned turn) are
// recovered with a defensive default and logged; they never abort the
// session.
//
// # Usage
//
//	asm := assembler.New(st, logger)
//	conn.OnEvent(asm.Handle)
package assembler
