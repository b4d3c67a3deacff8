// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives which conversation is active.
//
// A conversation is either in NoSession (a fresh chat the server has not
// named yet) or Active(id). The Controller moves between the two:
//
//	NoSession --session_assigned(id)--> Active(id)
//	Active(x) --Resume(y)-----------> NoSession --history--> Active(y)
//	any       --StartNew-------------> NoSession
//
// Resume passes through NoSession and reaches Active(y) in a single store
// commit, so observers never see a mixture of x's messages and y's id.
//
// # Addressable location
//
// The active id is mirrored into a shareable location, a URL with a
// "session" query parameter:
//
//	http://localhost:8000/?session=abc123
//
// The store writes the location inside the commit that changes the id.
// At startup a location carrying an id is resumed before history renders.
//
// # Usage
//
//	loc, _ := session.ParseLocation(flagLocation)
//	st := store.New(store.WithLocation(loc))
//	ctrl := session.NewController(st, apiClient, asm, logger)
//	if id := loc.SessionID(); id != "" {
//	    err = ctrl.Resume(ctx, id)
//	}
package session
