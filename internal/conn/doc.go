// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conn owns the persistent connection to the chat server.
//
// A Manager dials the server, decodes every inbound frame into a typed
// protocol event and delivers it, together with connection status
// transitions, to a single handler in strict arrival order. Transport loss
// is never fatal: the Manager reconnects on its own with exponential backoff,
// and a dial limiter keeps a minimum interval between attempts.
//
// # Status Transitions
//
//	connecting -> connected
//	connected -> disconnected -> reconnecting -> connected
//
// Each transition is reported exactly once.
//
// # Usage
//
//	mgr := conn.New(conn.ConfigFrom(cfg), conn.NewWebsocketDialer(nil), logger)
//	mgr.OnEvent(func(ev protocol.Event) { program.Send(chat.ProtocolMsg{Event: ev}) })
//	mgr.Connect(ctx)
//	defer mgr.Close()
//
//	if err := mgr.Send(ctx, protocol.SubmitTurn{Text: "hi"}); errors.Is(err, conn.ErrNotConnected) {
//	    // show the rejection
//	}
package conn
