// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/jeranaias/rigrun-chat/internal/logging"
	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/store"
)

// OpRequestHistory names history fetches in failure reports.
const OpRequestHistory = "request_history"

var (
	// ErrEmptyID is returned when resuming without an id.
	ErrEmptyID = errors.New("empty session id")

	// ErrStale is returned by Activate for a history fetched before a later
	// StartNew or Resume. The store is left untouched.
	ErrStale = errors.New("history superseded by a later session change")
)

// RequestError is a failed history request. The store is untouched apart
// from the visible failure report.
type RequestError struct {
	SessionID string
	Err       error

	gen uint64
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", OpRequestHistory, e.SessionID, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// HistorySource fetches the finalized history of a session.
type HistorySource interface {
	History(ctx context.Context, sessionID string) ([]model.Message, error)
}

// Abandoner discards the assistant turn in flight. With drain, events of
// the abandoned turn still arriving are dropped.
type Abandoner interface {
	Abandon(drain bool)
}

// =============================================================================
// STATE
// =============================================================================

// State is NoSession (zero value) or Active(ID).
type State struct {
	ID string
}

// Active reports whether a session is active.
func (s State) Active() bool { return s.ID != "" }

func (s State) String() string {
	if s.ID == "" {
		return "no-session"
	}
	return "active(" + s.ID + ")"
}

// History is a fetched session history waiting to be activated.
type History struct {
	SessionID string
	Messages  []model.Message

	gen uint64
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns session transitions. StartNew, Request, Activate, Fail
// and OnSessionAssigned must run on the event-loop goroutine; Load touches
// no store state and may run anywhere.
type Controller struct {
	store   *store.Store
	history HistorySource
	abandon Abandoner
	logger  *slog.Logger

	// gen increments on every session change request; a fetched History
	// can only be activated while its generation is current.
	gen atomic.Uint64
}

// NewController creates a Controller. abandon may be nil when no stream
// can be in flight (one-shot commands).
func NewController(st *store.Store, history HistorySource, abandon Abandoner, logger *slog.Logger) *Controller {
	return &Controller{
		store:   st,
		history: history,
		abandon: abandon,
		logger:  logging.OrDiscard(logger),
	}
}

// State returns the current session state.
func (c *Controller) State() State {
	return State{ID: c.store.SessionID()}
}

// StartNew abandons any in-flight turn and starts a fresh conversation.
// The location marker is cleared with the id.
func (c *Controller) StartNew() {
	c.gen.Add(1)
	c.drop()
	c.store.Reset()
	c.logger.Info("session.new")
}

// Resume fetches id's history and activates it.
func (c *Controller) Resume(ctx context.Context, id string) error {
	h, err := c.Fetch(ctx, id)
	if err != nil {
		return err
	}
	return c.Activate(h)
}

// HistoryRequest is a history fetch whose generation has been claimed.
type HistoryRequest struct {
	SessionID string

	gen uint64
}

// Request claims a generation for a fetch of id. Call it on the event loop
// so that the order of requests matches the order of user actions; Load
// may then run anywhere.
func (c *Controller) Request(id string) (HistoryRequest, error) {
	if id == "" {
		return HistoryRequest{}, ErrEmptyID
	}
	return HistoryRequest{SessionID: id, gen: c.gen.Add(1)}, nil
}

// Load performs the fetch claimed by req. The store is not modified; a
// failure comes back as a *RequestError for Fail.
func (c *Controller) Load(ctx context.Context, req HistoryRequest) (History, error) {
	if req.SessionID == "" {
		return History{}, ErrEmptyID
	}
	id := req.SessionID
	msgs, err := c.history.History(ctx, id)
	if err != nil {
		c.logger.Warn("session.history.failed", "session", id, "error", err)
		return History{}, &RequestError{SessionID: id, Err: err, gen: req.gen}
	}
	return History{SessionID: id, Messages: msgs, gen: req.gen}, nil
}

// Fail makes a failed Load visible in the store. Cancelled fetches and
// fetches superseded by a later session change are not reported.
func (c *Controller) Fail(err error) {
	var rerr *RequestError
	if !errors.As(err, &rerr) || errors.Is(err, context.Canceled) {
		return
	}
	if rerr.gen != c.gen.Load() {
		c.logger.Debug("session.failure.stale", "session", rerr.SessionID)
		return
	}
	c.store.ReportFailure(OpRequestHistory, rerr)
}

// Fetch requests id's history: Request, Load and, on failure, Fail. It
// mutates the store, so run it where Activate may run.
func (c *Controller) Fetch(ctx context.Context, id string) (History, error) {
	req, err := c.Request(id)
	if err != nil {
		return History{}, err
	}
	h, err := c.Load(ctx, req)
	if err != nil {
		c.Fail(err)
	}
	return h, err
}

// Activate abandons any in-flight turn and publishes h's id and messages
// in one commit.
func (c *Controller) Activate(h History) error {
	if h.SessionID == "" {
		return ErrEmptyID
	}
	if h.gen != c.gen.Load() {
		c.logger.Debug("session.activate.stale", "session", h.SessionID)
		return ErrStale
	}
	c.drop()
	c.store.Replace(h.SessionID, h.Messages)
	c.logger.Info("session.resume", "session", h.SessionID, "messages", len(h.Messages))
	return nil
}

// OnSessionAssigned records the id the server issued for the current
// conversation. A repeated or conflicting assignment is logged and
// ignored.
func (c *Controller) OnSessionAssigned(id string) {
	err := c.store.AssignSession(id)
	switch {
	case err == nil:
		c.logger.Info("session.assigned", "session", id)
	case errors.Is(err, store.ErrDuplicateSession):
		c.logger.Debug("session.assigned.duplicate", "session", id)
	default:
		c.logger.Warn("session.assigned.rejected", "session", id,
			"active", c.store.SessionID(), "error", err)
	}
}

func (c *Controller) drop() {
	if c.abandon != nil {
		c.abandon.Abandon(true)
	}
}
