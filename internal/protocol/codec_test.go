// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigrun-chat/internal/model"
)

// =============================================================================
// DECODE TESTS
// =============================================================================

func TestDecode_KnownEvents(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  Event
	}{
		{
			name:  "block_open with tool",
			frame: `{"type":"block_open","index":1,"kind":"tool_execution","tool":{"id":"t1","name":"search"}}`,
			want:  BlockOpen{Index: 1, Kind: model.BlockToolExecution, Tool: &model.ToolCall{ID: "t1", Name: "search"}},
		},
		{
			name:  "block_open index zero",
			frame: `{"type":"block_open","index":0,"kind":"text"}`,
			want:  BlockOpen{Index: 0, Kind: model.BlockText},
		},
		{
			name:  "block_delta",
			frame: `{"type":"block_delta","index":0,"text":"Hel","session_id":"s1"}`,
			want:  BlockDelta{Index: 0, Text: "Hel", SessionID: "s1"},
		},
		{
			name:  "block_close",
			frame: `{"type":"block_close","index":3}`,
			want:  BlockClose{Index: 3},
		},
		{
			name:  "message_done",
			frame: `{"type":"message_done"}`,
			want:  MessageDone{},
		},
		{
			name:  "session_assigned",
			frame: `{"type":"session_assigned","session_id":"abc123"}`,
			want:  SessionAssigned{SessionID: "abc123"},
		},
		{
			name:  "connection_status",
			frame: `{"type":"connection_status","state":"reconnecting"}`,
			want:  ConnectionStatus{State: StateReconnecting},
		},
		{
			name:  "server error",
			frame: `{"type":"error","message":"model overloaded"}`,
			want:  ServerError{Message: "model overloaded"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.frame))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  error
	}{
		{"unknown tag", `{"type":"ping"}`, ErrUnknownEvent},
		{"missing tag", `{"index":0}`, ErrMalformedEvent},
		{"not json", `hello`, ErrMalformedEvent},
		{"delta without index", `{"type":"block_delta","text":"x"}`, ErrMalformedEvent},
		{"negative index", `{"type":"block_close","index":-1}`, ErrMalformedEvent},
		{"unknown kind", `{"type":"block_open","index":0,"kind":"image"}`, ErrMalformedEvent},
		{"assigned without id", `{"type":"session_assigned"}`, ErrMalformedEvent},
		{"bad state", `{"type":"connection_status","state":"sleeping"}`, ErrMalformedEvent},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := Decode([]byte(tc.frame))
			assert.Nil(t, ev)
			assert.True(t, errors.Is(err, tc.want), "Decode() error = %v, want %v", err, tc.want)
		})
	}
}

func TestEncode_DecodesBack(t *testing.T) {
	events := []Event{
		BlockOpen{Index: 2, Kind: model.BlockThinking, SessionID: "s"},
		BlockDelta{Index: 2, Text: "…"},
		BlockClose{Index: 2},
		MessageDone{},
		SessionAssigned{SessionID: "s"},
	}
	for _, ev := range events {
		data, err := Encode(ev)
		require.NoError(t, err)
		got, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, ev, got)
	}
}

// =============================================================================
// CLIENT EVENT TESTS
// =============================================================================

func TestEncodeClient_NewSessionIsNull(t *testing.T) {
	data, err := EncodeClient(SubmitTurn{Text: "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"submit_turn","text":"hi","session_id":null}`, string(data))

	data, err = EncodeClient(SubmitTurn{Text: "hi", SessionID: "abc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"submit_turn","text":"hi","session_id":"abc"}`, string(data))

	turn, err := DecodeClient(data)
	require.NoError(t, err)
	assert.Equal(t, SubmitTurn{Text: "hi", SessionID: "abc"}, turn)
}

func TestSessionOf(t *testing.T) {
	assert.Equal(t, "x", SessionOf(BlockDelta{SessionID: "x"}))
	assert.Equal(t, "", SessionOf(ConnectionStatus{State: StateConnected}))
}
