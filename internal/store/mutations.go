// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"time"

	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/protocol"
)

// =============================================================================
// MESSAGES
// =============================================================================

// AppendMessage appends a finished message.
func (s *Store) AppendMessage(msg model.Message) {
	s.commit(func(st *Snapshot) Slice {
		st.Messages = append(st.Messages, msg.Clone())
		return SliceMessages
	})
}

// ReplaceLast replaces the last message.
func (s *Store) ReplaceLast(msg model.Message) error {
	var err error
	s.commit(func(st *Snapshot) Slice {
		if len(st.Messages) == 0 {
			err = ErrEmpty
			return 0
		}
		st.Messages[len(st.Messages)-1] = msg.Clone()
		return SliceMessages
	})
	return err
}

// =============================================================================
// STREAMING
// =============================================================================

// SetStreaming publishes the in-progress assistant turn.
func (s *Store) SetStreaming(blocks []model.ContentBlock) {
	s.commit(func(st *Snapshot) Slice {
		st.Streaming = model.CloneBlocks(blocks)
		if st.Streaming == nil {
			st.Streaming = []model.ContentBlock{}
		}
		return SliceStreaming
	})
}

// ClearStreaming discards the in-progress turn and clears the waiting flag.
func (s *Store) ClearStreaming() {
	s.commit(func(st *Snapshot) Slice {
		var changed Slice
		if st.Streaming != nil {
			st.Streaming = nil
			changed |= SliceStreaming
		}
		if st.Waiting {
			st.Waiting = false
			changed |= SliceWaiting
		}
		return changed
	})
}

// CommitStreaming appends the finalized turn, clears the in-progress turn and
// the waiting flag in one commit.
func (s *Store) CommitStreaming(msg model.Message) {
	s.commit(func(st *Snapshot) Slice {
		st.Messages = append(st.Messages, msg.Clone())
		st.Streaming = nil
		st.Waiting = false
		return SliceMessages | SliceStreaming | SliceWaiting
	})
}

// SetWaiting sets the waiting-for-response flag.
func (s *Store) SetWaiting(waiting bool) {
	s.commit(func(st *Snapshot) Slice {
		if st.Waiting == waiting {
			return 0
		}
		st.Waiting = waiting
		return SliceWaiting
	})
}

// =============================================================================
// SESSION
// =============================================================================

// Reset starts a new chat: session id, messages, in-progress turn, waiting
// flag, comparison and failure state are cleared. UI preferences are kept.
func (s *Store) Reset() {
	s.commit(func(st *Snapshot) Slice {
		st.SessionID = ""
		st.Messages = nil
		st.Streaming = nil
		st.Waiting = false
		st.Comparison = nil
		st.ComparisonPending = false
		st.ShowComparison = false
		st.ComparisonErr = nil
		st.Failure = nil
		return SliceSession | SliceMessages | SliceStreaming | SliceWaiting | SliceComparison | SliceFailure
	})
}

// Replace resumes a session: the id and its history are published in one
// commit, and the in-progress turn is discarded.
func (s *Store) Replace(id string, history []model.Message) {
	s.commit(func(st *Snapshot) Slice {
		st.SessionID = id
		st.Messages = model.CloneMessages(history)
		st.Streaming = nil
		st.Waiting = false
		st.Failure = nil
		return SliceSession | SliceMessages | SliceStreaming | SliceWaiting | SliceFailure
	})
}

// AssignSession records the id the server issued for a new conversation.
// Messages are untouched. Valid only while no session is active.
func (s *Store) AssignSession(id string) error {
	var err error
	s.commit(func(st *Snapshot) Slice {
		switch {
		case id == "":
			err = ErrEmptySession
		case st.SessionID == id:
			err = ErrDuplicateSession
		case st.SessionID != "":
			err = ErrSessionActive
		default:
			st.SessionID = id
			return SliceSession
		}
		return 0
	})
	return err
}

// SetSessions replaces the sidebar session list.
func (s *Store) SetSessions(sessions []model.Session) {
	s.commit(func(st *Snapshot) Slice {
		st.Sessions = make([]model.Session, len(sessions))
		for i, sess := range sessions {
			st.Sessions[i] = sess.Clone()
		}
		return SliceSessions
	})
}

// =============================================================================
// CONNECTION / FAILURE
// =============================================================================

// SetConnection records the connection status.
func (s *Store) SetConnection(state protocol.ConnState) {
	s.commit(func(st *Snapshot) Slice {
		if st.Connection == state {
			return 0
		}
		st.Connection = state
		return SliceConnection
	})
}

// ReportFailure records a visible request failure.
func (s *Store) ReportFailure(op string, err error) {
	s.commit(func(st *Snapshot) Slice {
		st.Failure = &Failure{Op: op, Err: err, At: time.Now()}
		return SliceFailure
	})
}

// ClearFailure dismisses the visible failure.
func (s *Store) ClearFailure() {
	s.commit(func(st *Snapshot) Slice {
		if st.Failure == nil {
			return 0
		}
		st.Failure = nil
		return SliceFailure
	})
}

// =============================================================================
// UI STATE
// =============================================================================

// ToggleSidebar collapses or expands the sidebar.
func (s *Store) ToggleSidebar() {
	s.commit(func(st *Snapshot) Slice {
		st.SidebarCollapsed = !st.SidebarCollapsed
		return SliceUI
	})
}

// SetCompareMode enters or leaves compare mode. Leaving clears the selection.
func (s *Store) SetCompareMode(on bool) {
	s.commit(func(st *Snapshot) Slice {
		if st.CompareMode == on {
			return 0
		}
		st.CompareMode = on
		if !on {
			st.Selection = nil
		}
		return SliceUI
	})
}

// ToggleSessionSelection selects or deselects a session for comparison.
// Selecting a third session is a no-op. Returns whether the selection
// changed.
func (s *Store) ToggleSessionSelection(id string) bool {
	changed := false
	s.commit(func(st *Snapshot) Slice {
		for i, sel := range st.Selection {
			if sel == id {
				st.Selection = append(st.Selection[:i:i], st.Selection[i+1:]...)
				changed = true
				return SliceUI
			}
		}
		if id == "" || len(st.Selection) >= MaxSelection {
			return 0
		}
		st.Selection = append(st.Selection, id)
		changed = true
		return SliceUI
	})
	return changed
}

// ClearSelection deselects all sessions.
func (s *Store) ClearSelection() {
	s.commit(func(st *Snapshot) Slice {
		if len(st.Selection) == 0 {
			return 0
		}
		st.Selection = nil
		return SliceUI
	})
}

// =============================================================================
// COMPARISON
// =============================================================================

// SetComparisonPending marks a comparison request as in flight.
func (s *Store) SetComparisonPending() {
	s.commit(func(st *Snapshot) Slice {
		st.ComparisonPending = true
		st.ComparisonErr = nil
		return SliceComparison
	})
}

// SetComparison publishes a result and shows it.
func (s *Store) SetComparison(result model.ComparisonResult) {
	s.commit(func(st *Snapshot) Slice {
		r := result.Clone()
		st.Comparison = &r
		st.ComparisonPending = false
		st.ShowComparison = true
		st.ComparisonErr = nil
		return SliceComparison
	})
}

// SetComparisonError records a failed comparison. The result is not shown.
func (s *Store) SetComparisonError(err error) {
	s.commit(func(st *Snapshot) Slice {
		st.Comparison = nil
		st.ComparisonPending = false
		st.ShowComparison = false
		st.ComparisonErr = err
		return SliceComparison
	})
}

// DismissComparison hides the comparison and forgets its result and any
// pending marker.
func (s *Store) DismissComparison() {
	s.commit(func(st *Snapshot) Slice {
		if st.Comparison == nil && !st.ShowComparison && st.ComparisonErr == nil && !st.ComparisonPending {
			return 0
		}
		st.Comparison = nil
		st.ComparisonPending = false
		st.ShowComparison = false
		st.ComparisonErr = nil
		return SliceComparison
	})
}
