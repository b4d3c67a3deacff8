// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/protocol"
)

// fakeLocation records every id written to it.
type fakeLocation struct {
	id     string
	writes []string
}

func (l *fakeLocation) SetSessionID(id string) {
	l.id = id
	l.writes = append(l.writes, id)
}

func history(n int) []model.Message {
	msgs := make([]model.Message, n)
	for i := range msgs {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		msgs[i] = model.NewMessage(role, "m")
	}
	return msgs
}

// =============================================================================
// SELECTION TESTS
// =============================================================================

func TestToggleSessionSelection_CapsAtTwo(t *testing.T) {
	st := New()

	assert.True(t, st.ToggleSessionSelection("s1"))
	assert.True(t, st.ToggleSessionSelection("s2"))
	assert.False(t, st.ToggleSessionSelection("s3"), "third selection should be a no-op")
	assert.Equal(t, []string{"s1", "s2"}, st.Snapshot().Selection)

	assert.True(t, st.ToggleSessionSelection("s1"), "toggling a selected id removes it")
	assert.Equal(t, []string{"s2"}, st.Snapshot().Selection)

	assert.True(t, st.ToggleSessionSelection("s3"))
	assert.Equal(t, []string{"s2", "s3"}, st.Snapshot().Selection)
}

func TestToggleSessionSelection_NoOpDoesNotNotify(t *testing.T) {
	st := New()
	st.ToggleSessionSelection("a")
	st.ToggleSessionSelection("b")

	calls := 0
	st.Subscribe(SliceUI, func(Snapshot) { calls++ })
	st.ToggleSessionSelection("c")
	assert.Equal(t, 0, calls)
}

func TestSetCompareMode_LeavingClearsSelection(t *testing.T) {
	st := New()
	st.SetCompareMode(true)
	st.ToggleSessionSelection("a")
	st.SetCompareMode(false)

	snap := st.Snapshot()
	assert.False(t, snap.CompareMode)
	assert.Empty(t, snap.Selection)
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestReplace_PublishesIDAndHistoryTogether(t *testing.T) {
	loc := &fakeLocation{}
	st := New(WithLocation(loc))

	var observed []Snapshot
	var locAtNotify []string
	st.Subscribe(SliceAll, func(s Snapshot) {
		observed = append(observed, s)
		locAtNotify = append(locAtNotify, loc.id)
	})

	st.Replace("abc123", history(4))

	require.Len(t, observed, 1, "resume must be a single commit")
	assert.Equal(t, "abc123", observed[0].SessionID)
	assert.Len(t, observed[0].Messages, 4)
	assert.Equal(t, "abc123", locAtNotify[0], "location must be written before observers run")
}

func TestReset_ClearsConversationKeepsPreferences(t *testing.T) {
	loc := &fakeLocation{}
	st := New(WithLocation(loc))
	st.Replace("abc", history(2))
	st.SetStreaming([]model.ContentBlock{{Index: 0, Kind: model.BlockText}})
	st.SetWaiting(true)
	st.ToggleSidebar()
	st.SetComparison(model.ComparisonResult{Text: "x"})

	st.Reset()

	snap := st.Snapshot()
	assert.Empty(t, snap.SessionID)
	assert.Empty(t, snap.Messages)
	assert.False(t, snap.IsStreaming())
	assert.False(t, snap.Waiting)
	assert.False(t, snap.ShowComparison)
	assert.True(t, snap.SidebarCollapsed)
	assert.Equal(t, "", loc.id)
}

func TestAssignSession(t *testing.T) {
	st := New()
	st.AppendMessage(model.NewUserMessage("hi"))

	require.NoError(t, st.AssignSession("s1"))
	assert.Equal(t, "s1", st.SessionID())
	assert.Len(t, st.Snapshot().Messages, 1, "assignment must not touch messages")

	assert.True(t, errors.Is(st.AssignSession("s1"), ErrDuplicateSession))
	assert.True(t, errors.Is(st.AssignSession("s2"), ErrSessionActive))
	assert.Equal(t, "s1", st.SessionID(), "identity is immutable once active")
	assert.True(t, errors.Is(New().AssignSession(""), ErrEmptySession))
}

// =============================================================================
// STREAMING TESTS
// =============================================================================

func TestCommitStreaming(t *testing.T) {
	st := New()
	st.SetWaiting(true)
	st.SetStreaming([]model.ContentBlock{{Index: 0, Kind: model.BlockText, Text: "hi"}})
	require.True(t, st.Snapshot().IsStreaming())

	var seen Snapshot
	st.Subscribe(SliceMessages, func(s Snapshot) { seen = s })
	st.CommitStreaming(model.NewAssistantMessage([]model.ContentBlock{{Index: 0, Kind: model.BlockText, Text: "hi"}}))

	assert.Len(t, seen.Messages, 1)
	assert.False(t, seen.IsStreaming(), "observers never see the turn both streaming and appended")
	assert.False(t, seen.Waiting)
}

func TestClearStreaming(t *testing.T) {
	st := New()
	st.SetWaiting(true)
	st.SetStreaming(nil)
	assert.True(t, st.Snapshot().IsStreaming(), "an empty turn is still in progress")

	st.ClearStreaming()
	snap := st.Snapshot()
	assert.False(t, snap.IsStreaming())
	assert.False(t, snap.Waiting)
	assert.Empty(t, snap.Messages)
}

func TestReplaceLast(t *testing.T) {
	st := New()
	assert.True(t, errors.Is(st.ReplaceLast(model.NewUserMessage("x")), ErrEmpty))

	st.AppendMessage(model.NewUserMessage("a"))
	st.AppendMessage(model.NewUserMessage("b"))
	require.NoError(t, st.ReplaceLast(model.NewUserMessage("c")))

	msgs := st.Snapshot().Messages
	assert.Equal(t, "a", msgs[0].Content)
	assert.Equal(t, "c", msgs[1].Content)
}

// =============================================================================
// SUBSCRIPTION TESTS
// =============================================================================

func TestSubscribe_FiltersBySlice(t *testing.T) {
	st := New()
	var conn, msgs int
	st.Subscribe(SliceConnection, func(Snapshot) { conn++ })
	unsubscribe := st.Subscribe(SliceMessages, func(Snapshot) { msgs++ })

	st.SetConnection(protocol.StateConnected)
	st.SetConnection(protocol.StateConnected)
	st.AppendMessage(model.NewUserMessage("a"))
	unsubscribe()
	st.AppendMessage(model.NewUserMessage("b"))

	assert.Equal(t, 1, conn, "unchanged status is not a transition")
	assert.Equal(t, 1, msgs)
}

func TestSnapshot_IsIsolated(t *testing.T) {
	st := New()
	st.AppendMessage(model.NewAssistantMessage([]model.ContentBlock{{Index: 0, Kind: model.BlockText, Text: "x"}}))

	snap := st.Snapshot()
	snap.Messages[0].Blocks[0].Text = "mutated"
	snap.Messages[0].Content = "mutated"

	again := st.Snapshot()
	assert.Equal(t, "x", again.Messages[0].Content)
	assert.Equal(t, "x", again.Messages[0].Blocks[0].Text)
}

func TestObserverMayMutate(t *testing.T) {
	st := New()
	st.Subscribe(SliceSession, func(s Snapshot) {
		if s.SessionID != "" {
			st.SetSessions([]model.Session{{ID: s.SessionID}})
		}
	})
	require.NoError(t, st.AssignSession("s1"))
	assert.Len(t, st.Snapshot().Sessions, 1)
}

// =============================================================================
// COMPARISON TESTS
// =============================================================================

func TestComparisonFlags(t *testing.T) {
	st := New()
	st.SetComparisonPending()
	assert.True(t, st.Snapshot().ComparisonPending)

	st.SetComparisonError(errors.New("boom"))
	snap := st.Snapshot()
	assert.False(t, snap.ShowComparison)
	assert.Nil(t, snap.Comparison)
	assert.EqualError(t, snap.ComparisonErr, "boom")

	st.SetComparison(model.ComparisonResult{Text: "A is wetter"})
	snap = st.Snapshot()
	assert.True(t, snap.ShowComparison)
	assert.NoError(t, snap.ComparisonErr)

	st.DismissComparison()
	assert.False(t, st.Snapshot().ShowComparison)
}
