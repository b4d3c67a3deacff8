// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assembler

import (
	"log/slog"

	"github.com/jeranaias/rigrun-chat/internal/logging"
	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/protocol"
	"github.com/jeranaias/rigrun-chat/internal/store"
)

// =============================================================================
// ASSEMBLER
// =============================================================================

// Assembler owns the content blocks of the assistant turn in flight.
// Handle must be called from a single goroutine; it never blocks.
type Assembler struct {
	store  *store.Store
	logger *slog.Logger

	// blocks is scoped to one in-flight turn and discarded on finalize or
	// abandon.
	blocks map[int]*model.ContentBlock

	// draining drops events of an abandoned turn until its message_done.
	draining bool

	anomalies map[AnomalyKind]int
}

// New creates an Assembler publishing into st.
func New(st *store.Store, logger *slog.Logger) *Assembler {
	logger = logging.OrDiscard(logger)
	return &Assembler{
		store:     st,
		logger:    logger,
		blocks:    make(map[int]*model.ContentBlock),
		anomalies: make(map[AnomalyKind]int),
	}
}

// Handle processes one protocol event. Events the assembler does not own
// are ignored.
func (a *Assembler) Handle(ev protocol.Event) {
	switch e := ev.(type) {
	case protocol.ConnectionStatus:
		a.handleStatus(e)
	case protocol.BlockOpen:
		if a.accept(ev, e.Index) {
			a.open(e)
		}
	case protocol.BlockDelta:
		if a.accept(ev, e.Index) {
			a.delta(e)
		}
	case protocol.BlockClose:
		if a.accept(ev, e.Index) {
			a.close(e)
		}
	case protocol.MessageDone:
		a.done(e)
	}
}

// Abandon discards the turn in flight without waiting for message_done.
// With drain set, further events of that turn on the same connection are
// dropped until its message_done arrives. Without drain the server has
// ended the stream itself, so any earlier drain ends too.
func (a *Assembler) Abandon(drain bool) {
	inFlight := len(a.blocks) > 0 || a.store.Waiting() || a.store.Snapshot().IsStreaming()
	if inFlight || a.draining {
		a.logger.Debug("assembler.abandon", "blocks", len(a.blocks), "drain", drain)
	}
	a.draining = drain && inFlight
	a.blocks = make(map[int]*model.ContentBlock)
	a.store.ClearStreaming()
}

// Draining reports whether events of an abandoned turn are being dropped.
func (a *Assembler) Draining() bool {
	return a.draining
}

// Anomalies returns a copy of the anomaly counters.
func (a *Assembler) Anomalies() map[AnomalyKind]int {
	out := make(map[AnomalyKind]int, len(a.anomalies))
	for k, v := range a.anomalies {
		out[k] = v
	}
	return out
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

func (a *Assembler) handleStatus(e protocol.ConnectionStatus) {
	switch e.State {
	case protocol.StateDisconnected, protocol.StateReconnecting:
		// The stream died with the transport; nothing more will arrive.
		a.draining = false
		if len(a.blocks) > 0 || a.store.Waiting() {
			a.logger.Info("assembler.discard", "reason", "connection lost", "blocks", len(a.blocks))
		}
		a.blocks = make(map[int]*model.ContentBlock)
		a.store.ClearStreaming()
	case protocol.StateConnected:
		a.draining = false
	}
}

func (a *Assembler) open(e protocol.BlockOpen) {
	if _, exists := a.blocks[e.Index]; exists {
		a.anomaly(AnomalyDuplicateOpen, e.Index, "kind", e.Kind)
		return
	}
	block := &model.ContentBlock{
		Index: e.Index,
		Kind:  e.Kind,
		State: model.BlockOpen,
	}
	if e.Tool != nil {
		tool := *e.Tool
		block.Tool = &tool
	}
	a.blocks[e.Index] = block
	a.publish()
}

func (a *Assembler) delta(e protocol.BlockDelta) {
	block, exists := a.blocks[e.Index]
	if !exists {
		a.anomaly(AnomalyUnknownDelta, e.Index)
		block = &model.ContentBlock{Index: e.Index, Kind: model.BlockText}
		a.blocks[e.Index] = block
	}
	if block.IsClosed() {
		a.anomaly(AnomalyLateDelta, e.Index)
		return
	}
	block.Text += e.Text
	block.State = model.BlockStreaming
	a.publish()
}

func (a *Assembler) close(e protocol.BlockClose) {
	block, exists := a.blocks[e.Index]
	if !exists {
		a.anomaly(AnomalyUnknownClose, e.Index)
		return
	}
	if block.IsClosed() {
		return
	}
	block.State = model.BlockClosed
	a.publish()
}

func (a *Assembler) done(e protocol.MessageDone) {
	if a.draining {
		a.draining = false
		a.logger.Debug("assembler.drained")
		return
	}
	if !a.sameSession(e.SessionID) {
		a.anomaly(AnomalyStrayEvent, -1, "event", e.Type(), "session_id", e.SessionID)
		return
	}

	blocks := make([]model.ContentBlock, 0, len(a.blocks))
	for _, block := range a.blocks {
		if !block.IsClosed() {
			a.anomaly(AnomalyUnclosedAtDone, block.Index, "state", block.State)
			block.State = model.BlockClosed
		}
		blocks = append(blocks, *block)
	}

	msg := model.NewAssistantMessage(blocks)
	a.blocks = make(map[int]*model.ContentBlock)
	a.store.CommitStreaming(msg)
	a.logger.Debug("assembler.finalized", "blocks", len(blocks), "chars", len(msg.Content))
}

// =============================================================================
// HELPERS
// =============================================================================

// accept filters events of abandoned turns and of other sessions.
func (a *Assembler) accept(ev protocol.Event, index int) bool {
	if a.draining {
		a.anomaly(AnomalyStrayEvent, index, "event", ev.Type(), "reason", "abandoned turn")
		return false
	}
	if sid := protocol.SessionOf(ev); !a.sameSession(sid) {
		a.anomaly(AnomalyStrayEvent, index, "event", ev.Type(), "session_id", sid)
		return false
	}
	return true
}

func (a *Assembler) sameSession(sid string) bool {
	if sid == "" {
		return true
	}
	active := a.store.SessionID()
	return active == "" || active == sid
}

// publish pushes the index-ordered scratch state to the store.
func (a *Assembler) publish() {
	blocks := make([]model.ContentBlock, 0, len(a.blocks))
	for _, block := range a.blocks {
		blocks = append(blocks, *block)
	}
	a.store.SetStreaming(model.SortBlocks(blocks))
}

func (a *Assembler) anomaly(kind AnomalyKind, index int, attrs ...any) {
	a.anomalies[kind]++
	args := append([]any{"kind", string(kind), "index", index}, attrs...)
	a.logger.Warn("assembler.anomaly", args...)
}
