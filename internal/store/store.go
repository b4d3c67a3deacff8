// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"errors"
	"sync"
	"time"

	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/protocol"
)

// MaxSelection is the number of sessions that can be selected for comparison.
const MaxSelection = 2

var (
	// ErrEmpty is returned when a mutation needs a message and there is none.
	ErrEmpty = errors.New("no messages")

	// ErrEmptySession is returned when an empty session id is assigned.
	ErrEmptySession = errors.New("empty session id")

	// ErrDuplicateSession is returned when the active id is assigned again.
	ErrDuplicateSession = errors.New("session already assigned")

	// ErrSessionActive is returned when a different id is assigned while a
	// session is active. Identity changes only through Reset or Replace.
	ErrSessionActive = errors.New("another session is active")
)

// =============================================================================
// SLICES
// =============================================================================

// Slice names a part of the store's state for subscriptions.
type Slice uint16

const (
	SliceMessages Slice = 1 << iota
	SliceStreaming
	SliceSession
	SliceWaiting
	SliceUI
	SliceSessions
	SliceComparison
	SliceConnection
	SliceFailure

	SliceAll Slice = 1<<iota - 1
)

// =============================================================================
// SNAPSHOT
// =============================================================================

// Failure is a visible request failure, such as a history fetch error.
type Failure struct {
	Op  string
	Err error
	At  time.Time
}

// Snapshot is a deep copy of the store state at one commit.
type Snapshot struct {
	SessionID string
	Messages  []model.Message

	// Streaming is the in-progress assistant turn ordered by index;
	// nil when no turn is streaming.
	Streaming []model.ContentBlock
	Waiting   bool

	Connection protocol.ConnState
	Sessions   []model.Session

	SidebarCollapsed bool
	CompareMode      bool
	Selection        []string

	Comparison        *model.ComparisonResult
	ComparisonPending bool
	ShowComparison    bool
	ComparisonErr     error

	Failure *Failure
}

// IsStreaming reports whether an assistant turn is in progress.
func (s Snapshot) IsStreaming() bool {
	return s.Streaming != nil
}

// IsSelected reports whether a session is selected for comparison.
func (s Snapshot) IsSelected(id string) bool {
	for _, sel := range s.Selection {
		if sel == id {
			return true
		}
	}
	return false
}

func (s *Snapshot) clone() Snapshot {
	c := *s
	c.Messages = model.CloneMessages(s.Messages)
	c.Streaming = model.CloneBlocks(s.Streaming)
	if s.Sessions != nil {
		c.Sessions = make([]model.Session, len(s.Sessions))
		for i, sess := range s.Sessions {
			c.Sessions[i] = sess.Clone()
		}
	}
	if s.Selection != nil {
		c.Selection = append([]string(nil), s.Selection...)
	}
	if s.Comparison != nil {
		r := s.Comparison.Clone()
		c.Comparison = &r
	}
	if s.Failure != nil {
		f := *s.Failure
		c.Failure = &f
	}
	return c
}

// =============================================================================
// STORE
// =============================================================================

// LocationWriter mirrors the session id into the addressable location.
type LocationWriter interface {
	SetSessionID(id string)
}

// Option configures a Store.
type Option func(*Store)

// WithLocation keeps loc in step with the session id. The location is
// written inside the commit, before any observer runs.
func WithLocation(loc LocationWriter) Option {
	return func(s *Store) {
		s.location = loc
	}
}

type subscription struct {
	slices Slice
	fn     func(Snapshot)
}

// Store is the conversation state container. All methods are safe for
// concurrent use; observers run synchronously on the mutating goroutine.
type Store struct {
	mu       sync.Mutex
	state    Snapshot
	location LocationWriter

	subs    map[int]subscription
	nextSub int
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		state: Snapshot{Connection: protocol.StateDisconnected},
		subs:  make(map[int]subscription),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// SessionID returns the active session id, or "" when there is none.
func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SessionID
}

// Waiting reports whether a response is outstanding.
func (s *Store) Waiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Waiting
}

// Subscribe registers fn for mutations touching any of slices. The returned
// func removes the subscription.
func (s *Store) Subscribe(slices Slice, fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = subscription{slices: slices, fn: fn}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// commit applies fn under the lock. fn returns the slices it changed; when
// any changed, observers receive the post-commit snapshot after unlock.
func (s *Store) commit(fn func(st *Snapshot) Slice) {
	s.mu.Lock()
	changed := fn(&s.state)
	if changed == 0 {
		s.mu.Unlock()
		return
	}
	if changed&SliceSession != 0 && s.location != nil {
		s.location.SetSessionID(s.state.SessionID)
	}

	snap := s.state.clone()
	var notify []func(Snapshot)
	for id := 0; id < s.nextSub; id++ {
		sub, ok := s.subs[id]
		if ok && sub.slices&changed != 0 {
			notify = append(notify, sub.fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range notify {
		fn(snap)
	}
}
