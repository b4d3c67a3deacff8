// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/rigrun-chat/internal/compare"
	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/protocol"
	"github.com/jeranaias/rigrun-chat/internal/session"
)

// =============================================================================
// PROTOCOL MESSAGES
// =============================================================================

// ProtocolMsg carries one event from the connection manager into the loop.
type ProtocolMsg struct {
	Event protocol.Event
}

// =============================================================================
// COMMAND RESULTS
// =============================================================================

// historyLoadedMsg is the result of a history fetch. Activation happens in
// Update.
type historyLoadedMsg struct {
	History session.History
	Err     error
}

// sessionsLoadedMsg is the result of listing server sessions.
type sessionsLoadedMsg struct {
	Sessions []model.Session
	Err      error
}

// comparisonDoneMsg is delivered when a comparison request returns. Its
// outcome has not been published yet.
type comparisonDoneMsg struct {
	Outcome compare.Outcome
}

// exportDoneMsg reports where the conversation was written.
type exportDoneMsg struct {
	Path string
	Err  error
}
