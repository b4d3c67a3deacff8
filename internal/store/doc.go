// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the conversation store, the single source of truth
// for client state.
//
// The store holds the transcript, the assembler's live streaming snapshot,
// the session identity, connection status and UI selection state. State is
// changed only through named mutations; each mutation commits atomically and
// then notifies the observers subscribed to the slices it touched.
//
// # Key Types
//
//   - Store: Explicitly constructed state container
//   - Snapshot: Deep copy of the state at one commit
//   - Slice: Bitmask naming the parts of state an observer cares about
//
// # Usage
//
//	st := store.New(store.WithLocation(loc))
//	unsubscribe := st.Subscribe(store.SliceMessages|store.SliceStreaming, func(s store.Snapshot) {
//	    render(s.Messages, s.Streaming)
//	})
//	defer unsubscribe()
//
//	st.AppendMessage(model.NewUserMessage("Will it rain in Lisbon?"))
package store
