// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/rigrun-chat/internal/assembler"
	"github.com/jeranaias/rigrun-chat/internal/conn"
	"github.com/jeranaias/rigrun-chat/internal/logging"
	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/protocol"
	"github.com/jeranaias/rigrun-chat/internal/session"
	"github.com/jeranaias/rigrun-chat/internal/store"
)

const (
	// OpSubmitTurn names failed sends in failure reports.
	OpSubmitTurn = "submit_turn"
	// OpServer names server-reported errors in failure reports.
	OpServer = "server"
)

var (
	// ErrEmptyTurn is returned for a turn with no text after trimming.
	ErrEmptyTurn = errors.New("empty turn")

	// ErrBusy is returned while the previous turn is still being answered.
	ErrBusy = errors.New("waiting for the previous response")
)

// Sender transmits client events.
type Sender interface {
	Send(ctx context.Context, ev protocol.ClientEvent) error
}

// Dispatcher routes protocol events and submits turns.
type Dispatcher struct {
	store     *store.Store
	assembler *assembler.Assembler
	sessions  *session.Controller
	sender    Sender
	logger    *slog.Logger
}

// New creates a Dispatcher.
func New(st *store.Store, asm *assembler.Assembler, ctrl *session.Controller, sender Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:     st,
		assembler: asm,
		sessions:  ctrl,
		sender:    sender,
		logger:    logging.OrDiscard(logger),
	}
}

// Dispatch routes one event delivered by the connection.
func (d *Dispatcher) Dispatch(ev protocol.Event) {
	switch e := ev.(type) {
	case protocol.ConnectionStatus:
		d.store.SetConnection(e.State)
		d.assembler.Handle(e)
	case protocol.BlockOpen, protocol.BlockDelta, protocol.BlockClose, protocol.MessageDone:
		d.assembler.Handle(e)
	case protocol.SessionAssigned:
		d.sessions.OnSessionAssigned(e.SessionID)
	case protocol.ServerError:
		// The server gave up on the turn; no message_done follows.
		d.logger.Warn("client.server_error", "message", e.Message)
		d.assembler.Abandon(false)
		d.store.ReportFailure(OpServer, errors.New(e.Message))
	default:
		d.logger.Warn("client.unhandled_event", "type", ev.Type())
	}
}

// NormalizeTurn returns text in NFC with surrounding space removed.
func NormalizeTurn(text string) string {
	return strings.TrimSpace(norm.NFC.String(text))
}

// Submit sends a user turn. Empty text and a turn while waiting are
// rejected without touching the store. When the send fails the user
// message stays, the waiting flag is cleared and the failure is reported.
func (d *Dispatcher) Submit(ctx context.Context, text string) error {
	text = NormalizeTurn(text)
	if text == "" {
		return ErrEmptyTurn
	}
	snap := d.store.Snapshot()
	if snap.Waiting {
		return ErrBusy
	}
	if snap.Connection != protocol.StateConnected {
		return conn.ErrNotConnected
	}

	d.store.AppendMessage(model.NewUserMessage(text))
	d.store.SetWaiting(true)
	d.store.ClearFailure()

	err := d.sender.Send(ctx, protocol.SubmitTurn{Text: text, SessionID: snap.SessionID})
	if err != nil {
		d.store.SetWaiting(false)
		d.store.ReportFailure(OpSubmitTurn, err)
		return fmt.Errorf("%s: %w", OpSubmitTurn, err)
	}
	d.logger.Debug("client.submit", "session", snap.SessionID, "chars", len(text))
	return nil
}
