// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package client ties the streaming core together.
//
// A Dispatcher receives every event the connection delivers and routes it:
// status to the store and the assembler, block events to the assembler,
// session assignment to the session controller, and server errors to the
// visible failure state. It also submits user turns under the waiting-flag
// discipline. Both must be called from the single event-loop goroutine.
package client
