// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol defines the streaming chat wire protocol.
//
// Every frame the server sends is decoded at the boundary into one of a
// closed set of Event types. Frames with an unknown tag or an invalid payload
// are rejected here so nothing untyped reaches the assembler.
//
// # Server Events
//
//   - ConnectionStatus: local transport state transition
//   - BlockOpen, BlockDelta, BlockClose: block-scoped content events
//   - MessageDone: the in-flight assistant turn is complete
//   - SessionAssigned: the server created a session for the first turn
//   - ServerError: the server reported a failure for the current turn
//
// # Client Events
//
//   - SubmitTurn: the user submitted a turn
//
// # Usage
//
//	ev, err := protocol.Decode(frame)
//	if err != nil {
//	    logger.Warn("protocol.rejected", "error", err)
//	    return
//	}
//	switch e := ev.(type) {
//	case protocol.BlockDelta:
//	    // ...
//	}
package protocol
