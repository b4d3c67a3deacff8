// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"github.com/jeranaias/rigrun-chat/internal/model"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

// EventType is the wire tag of an event.
type EventType string

const (
	TypeConnectionStatus EventType = "connection_status"
	TypeBlockOpen        EventType = "block_open"
	TypeBlockDelta       EventType = "block_delta"
	TypeBlockClose       EventType = "block_close"
	TypeMessageDone      EventType = "message_done"
	TypeSessionAssigned  EventType = "session_assigned"
	TypeError            EventType = "error"

	TypeSubmitTurn EventType = "submit_turn"
)

// Event is a server-originated event. The set of implementations is closed.
type Event interface {
	Type() EventType
	sealed()
}

// =============================================================================
// CONNECTION STATE
// =============================================================================

// ConnState is the observable state of the connection.
type ConnState string

const (
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateDisconnected ConnState = "disconnected"
	StateReconnecting ConnState = "reconnecting"
)

// Valid reports whether s is a known state.
func (s ConnState) Valid() bool {
	switch s {
	case StateConnecting, StateConnected, StateDisconnected, StateReconnecting:
		return true
	}
	return false
}

// =============================================================================
// SERVER EVENTS
// =============================================================================

// ConnectionStatus reports a transport state transition.
type ConnectionStatus struct {
	State ConnState
}

// BlockOpen starts a content block at Index.
type BlockOpen struct {
	Index     int
	Kind      model.BlockKind
	SessionID string
	Tool      *model.ToolCall
}

// BlockDelta appends Text to the block at Index.
type BlockDelta struct {
	Index     int
	Text      string
	SessionID string
}

// BlockClose closes the block at Index.
type BlockClose struct {
	Index     int
	SessionID string
}

// MessageDone ends the in-flight assistant turn.
type MessageDone struct {
	SessionID string
}

// SessionAssigned carries the id of a session the server just created.
type SessionAssigned struct {
	SessionID string
}

// ServerError is a failure the server reports for the current turn.
type ServerError struct {
	Message string
}

func (ConnectionStatus) Type() EventType { return TypeConnectionStatus }
func (BlockOpen) Type() EventType        { return TypeBlockOpen }
func (BlockDelta) Type() EventType       { return TypeBlockDelta }
func (BlockClose) Type() EventType       { return TypeBlockClose }
func (MessageDone) Type() EventType      { return TypeMessageDone }
func (SessionAssigned) Type() EventType  { return TypeSessionAssigned }
func (ServerError) Type() EventType      { return TypeError }

func (ConnectionStatus) sealed() {}
func (BlockOpen) sealed()        {}
func (BlockDelta) sealed()       {}
func (BlockClose) sealed()       {}
func (MessageDone) sealed()      {}
func (SessionAssigned) sealed()  {}
func (ServerError) sealed()      {}

// SessionOf returns the session id an event is scoped to, or "" if the
// server did not scope it.
func SessionOf(ev Event) string {
	switch e := ev.(type) {
	case BlockOpen:
		return e.SessionID
	case BlockDelta:
		return e.SessionID
	case BlockClose:
		return e.SessionID
	case MessageDone:
		return e.SessionID
	case SessionAssigned:
		return e.SessionID
	}
	return ""
}

// =============================================================================
// CLIENT EVENTS
// =============================================================================

// ClientEvent is a client-originated event sent over the connection.
type ClientEvent interface {
	Type() EventType
	clientSealed()
}

// SubmitTurn sends a user turn. An empty SessionID asks the server to create
// a new session.
type SubmitTurn struct {
	Text      string
	SessionID string
}

func (SubmitTurn) Type() EventType { return TypeSubmitTurn }
func (SubmitTurn) clientSealed()   {}
