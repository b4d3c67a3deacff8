// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jeranaias/rigrun-chat/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrUnknownEvent is returned for frames whose tag is not recognized.
	ErrUnknownEvent = errors.New("unknown event type")

	// ErrMalformedEvent is returned for frames with a known tag but an
	// invalid payload.
	ErrMalformedEvent = errors.New("malformed event")
)

// =============================================================================
// WIRE FORMAT
// =============================================================================

// envelope is the JSON shape shared by all frames.
type envelope struct {
	Type      EventType       `json:"type"`
	Index     *int            `json:"index,omitempty"`
	Kind      string          `json:"kind,omitempty"`
	Text      string          `json:"text,omitempty"`
	SessionID *string         `json:"session_id,omitempty"`
	Tool      *model.ToolCall `json:"tool,omitempty"`
	State     string          `json:"state,omitempty"`
	Message   string          `json:"message,omitempty"`
}

// submitFrame keeps session_id explicit so a new session is sent as null.
type submitFrame struct {
	Type      EventType `json:"type"`
	Text      string    `json:"text"`
	SessionID *string   `json:"session_id"`
}

// =============================================================================
// DECODE
// =============================================================================

// Decode parses one server frame into a typed Event.
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	session := ""
	if env.SessionID != nil {
		session = *env.SessionID
	}

	switch env.Type {
	case TypeConnectionStatus:
		state := ConnState(env.State)
		if !state.Valid() {
			return nil, fmt.Errorf("%w: connection_status state %q", ErrMalformedEvent, env.State)
		}
		return ConnectionStatus{State: state}, nil

	case TypeBlockOpen:
		index, err := requireIndex(env)
		if err != nil {
			return nil, err
		}
		kind, err := model.ParseBlockKind(env.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		return BlockOpen{Index: index, Kind: kind, SessionID: session, Tool: env.Tool}, nil

	case TypeBlockDelta:
		index, err := requireIndex(env)
		if err != nil {
			return nil, err
		}
		return BlockDelta{Index: index, Text: env.Text, SessionID: session}, nil

	case TypeBlockClose:
		index, err := requireIndex(env)
		if err != nil {
			return nil, err
		}
		return BlockClose{Index: index, SessionID: session}, nil

	case TypeMessageDone:
		return MessageDone{SessionID: session}, nil

	case TypeSessionAssigned:
		if session == "" {
			return nil, fmt.Errorf("%w: session_assigned without session_id", ErrMalformedEvent)
		}
		return SessionAssigned{SessionID: session}, nil

	case TypeError:
		return ServerError{Message: env.Message}, nil

	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformedEvent)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
	}
}

func requireIndex(env envelope) (int, error) {
	if env.Index == nil {
		return 0, fmt.Errorf("%w: %s without index", ErrMalformedEvent, env.Type)
	}
	if *env.Index < 0 {
		return 0, fmt.Errorf("%w: %s with negative index %d", ErrMalformedEvent, env.Type, *env.Index)
	}
	return *env.Index, nil
}

// =============================================================================
// ENCODE
// =============================================================================

// Encode serializes a server event. Used by test servers and fixtures.
func Encode(ev Event) ([]byte, error) {
	env := envelope{Type: ev.Type()}
	setSession := func(id string) {
		if id != "" {
			env.SessionID = &id
		}
	}

	switch e := ev.(type) {
	case ConnectionStatus:
		env.State = string(e.State)
	case BlockOpen:
		env.Index = &e.Index
		env.Kind = string(e.Kind)
		env.Tool = e.Tool
		setSession(e.SessionID)
	case BlockDelta:
		env.Index = &e.Index
		env.Text = e.Text
		setSession(e.SessionID)
	case BlockClose:
		env.Index = &e.Index
		setSession(e.SessionID)
	case MessageDone:
		setSession(e.SessionID)
	case SessionAssigned:
		setSession(e.SessionID)
	case ServerError:
		env.Message = e.Message
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
	return json.Marshal(env)
}

// EncodeClient serializes a client event for the wire.
func EncodeClient(ev ClientEvent) ([]byte, error) {
	switch e := ev.(type) {
	case SubmitTurn:
		frame := submitFrame{Type: TypeSubmitTurn, Text: e.Text}
		if e.SessionID != "" {
			id := e.SessionID
			frame.SessionID = &id
		}
		return json.Marshal(frame)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
}

// DecodeClient parses a client frame. Used by test servers.
func DecodeClient(data []byte) (ClientEvent, error) {
	var frame submitFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if frame.Type != TypeSubmitTurn {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, frame.Type)
	}
	turn := SubmitTurn{Text: frame.Text}
	if frame.SessionID != nil {
		turn.SessionID = *frame.SessionID
	}
	return turn, nil
}
