// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package compare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jeranaias/rigrun-chat/internal/api"
	"github.com/jeranaias/rigrun-chat/internal/logging"
	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/store"
)

// OpRequestComparison names comparison requests in logs.
const OpRequestComparison = "request_comparison"

var (
	// ErrInvalidPair is returned without any request when the ids are empty
	// or identical.
	ErrInvalidPair = errors.New("comparison needs two different sessions")

	// ErrSuperseded is returned by a call replaced by a newer Compare.
	ErrSuperseded = errors.New("comparison superseded by a newer request")

	// ErrMalformed is returned when the response lacks the comparison text
	// or a session summary.
	ErrMalformed = errors.New("malformed comparison response")
)

// Requester performs the comparison request.
type Requester interface {
	Compare(ctx context.Context, req api.CompareRequest) (*model.ComparisonResult, error)
}

// Orchestrator owns the single pending comparison.
type Orchestrator struct {
	store  *store.Store
	client Requester
	logger *slog.Logger

	// mu guards gen and cancel, and is held while the pending marker and
	// the outcome are published so a superseded call can never write over
	// a newer one. Store observers must not call into the Orchestrator.
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// New creates an Orchestrator publishing into st.
func New(st *store.Store, client Requester, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:  st,
		client: client,
		logger: logging.OrDiscard(logger),
	}
}

// Pending is a claimed comparison whose request has not been published.
type Pending struct {
	ctx    context.Context
	req    api.CompareRequest
	region string
	gen    uint64
}

// Outcome is the answer to a Pending request.
type Outcome struct {
	pending *Pending
	Result  *model.ComparisonResult
	Err     error
}

// Compare requests the analysis of sessions idA and idB. On success the
// result is published and shown. On failure the show flag stays false,
// the error is recorded in the store for display, and returned.
func (o *Orchestrator) Compare(ctx context.Context, idA, idB, region string) (*model.ComparisonResult, error) {
	p, err := o.Begin(ctx, idA, idB, region)
	if err != nil {
		return nil, err
	}
	return o.Publish(o.Run(p))
}

// CompareSelection compares the two sessions selected in the store.
func (o *Orchestrator) CompareSelection(ctx context.Context, region string) (*model.ComparisonResult, error) {
	p, err := o.BeginSelection(ctx, region)
	if err != nil {
		return nil, err
	}
	return o.Publish(o.Run(p))
}

// Begin supersedes the pending comparison, marks a new one pending and
// returns it. With Run and Publish it splits Compare so that only Begin
// and Publish touch the store; call those two on the event loop.
func (o *Orchestrator) Begin(ctx context.Context, idA, idB, region string) (*Pending, error) {
	idA, idB = strings.TrimSpace(idA), strings.TrimSpace(idB)
	if idA == "" || idB == "" || idA == idB {
		return nil, ErrInvalidPair
	}

	req := api.CompareRequest{SessionA: idA, SessionB: idB, Region: region}
	sessions := o.store.Snapshot().Sessions
	if s, ok := model.FindSession(sessions, idA); ok {
		req.TitleA = s.DisplayTitle()
	}
	if s, ok := model.FindSession(sessions, idB); ok {
		req.TitleB = s.DisplayTitle()
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.gen++
	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.store.SetComparisonPending()
	return &Pending{ctx: ctx, req: req, region: region, gen: o.gen}, nil
}

// BeginSelection is Begin for the two sessions selected in the store.
func (o *Orchestrator) BeginSelection(ctx context.Context, region string) (*Pending, error) {
	sel := o.store.Snapshot().Selection
	if len(sel) != store.MaxSelection {
		return nil, ErrInvalidPair
	}
	return o.Begin(ctx, sel[0], sel[1], region)
}

// Run performs the request of p. It does not touch the store and may run
// on any goroutine.
func (o *Orchestrator) Run(p *Pending) Outcome {
	o.logger.Info("compare.request", "session_a", p.req.SessionA, "session_b", p.req.SessionB, "region", p.region)
	result, err := o.client.Compare(p.ctx, p.req)
	if err == nil {
		err = checkResult(result)
	} else if errors.Is(err, api.ErrMalformedResponse) {
		err = fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return Outcome{pending: p, Result: result, Err: err}
}

// Publish records out in the store unless a newer Begin or a Cancel
// superseded it, in which case ErrSuperseded is returned.
func (o *Orchestrator) Publish(out Outcome) (*model.ComparisonResult, error) {
	p := out.pending
	if p == nil {
		return nil, ErrSuperseded
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if p.gen != o.gen {
		o.logger.Debug("compare.superseded", "session_a", p.req.SessionA, "session_b", p.req.SessionB)
		return nil, ErrSuperseded
	}
	o.cancel()
	o.cancel = nil

	if out.Err != nil {
		err := fmt.Errorf("%s: %w", OpRequestComparison, out.Err)
		o.logger.Warn("compare.failed", "session_a", p.req.SessionA, "session_b", p.req.SessionB, "error", err)
		o.store.SetComparisonError(err)
		return nil, err
	}
	result := out.Result
	if result.Region == "" {
		result.Region = p.region
	}
	o.store.SetComparison(*result)
	return result, nil
}

// Cancel abandons the pending comparison, if any, and clears the pending
// marker. Its caller receives ErrSuperseded and nothing is published.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
		o.store.DismissComparison()
	}
	o.gen++
}

func checkResult(r *model.ComparisonResult) error {
	switch {
	case r == nil:
		return fmt.Errorf("%w: empty response", ErrMalformed)
	case strings.TrimSpace(r.Text) == "":
		return fmt.Errorf("%w: no comparison text", ErrMalformed)
	case r.A.ID == "" || r.B.ID == "":
		return fmt.Errorf("%w: missing session summary", ErrMalformed)
	}
	return nil
}
