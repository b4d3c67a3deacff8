// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session is a server-tracked conversation. Messages is only populated when
// the history has been loaded.
type Session struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	Region       string    `json:"region,omitempty"`
	Messages     []Message `json:"messages,omitempty"`
}

// DisplayTitle returns the session title or a default.
func (s Session) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	if s.ID != "" {
		return "Session " + s.ID
	}
	return "New Conversation"
}

// Clone returns a deep copy of the session.
func (s Session) Clone() Session {
	s.Messages = CloneMessages(s.Messages)
	return s
}

// FindSession returns the session with the given id from a list.
func FindSession(sessions []Session, id string) (Session, bool) {
	for _, s := range sessions {
		if s.ID == id {
			return s, true
		}
	}
	return Session{}, false
}

// =============================================================================
// COMPARISON RESULT
// =============================================================================

// ComparisonResult is the derived, read-only analysis of two sessions.
type ComparisonResult struct {
	A      Session `json:"session_a"`
	B      Session `json:"session_b"`
	Region string  `json:"region,omitempty"`
	Text   string  `json:"comparison"`
}

// Clone returns a deep copy of the result.
func (r ComparisonResult) Clone() ComparisonResult {
	r.A = r.A.Clone()
	r.B = r.B.Clone()
	return r
}
