// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the request/response HTTP client of the chat server.
//
// The streaming conversation travels over the websocket (package conn);
// everything that is a plain request with one answer goes through here:
//
//   - GET  /api/sessions               session list for the sidebar
//   - GET  /api/sessions/{id}/history  history of one session
//   - POST /api/compare                comparison of two sessions
//
// Responses are checked against struct tags with
// github.com/go-playground/validator before they are converted to model
// types, so a payload missing required fields fails with
// ErrMalformedResponse instead of producing half-filled values.
//
// # Usage
//
//	client := api.NewFromConfig(cfg, logger)
//	msgs, err := client.History(ctx, "abc123")
//	var se *api.StatusError
//	if errors.As(err, &se) && se.Code == http.StatusNotFound { ... }
package api
