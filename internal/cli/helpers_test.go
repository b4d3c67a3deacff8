// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigrun-chat/internal/config"
	"github.com/jeranaias/rigrun-chat/internal/protocol"
)

const (
	sessionsBody = `[{"id":"a","title":"Alpha","message_count":2},{"id":"b","title":"Beta","message_count":0}]`
	historyBody  = `{"messages":[{"role":"user","content":"old question"},{"role":"assistant","content":"old answer"}]}`
	compareBody  = `{"comparison":"A is shorter than B.","session_a":{"id":"a","title":"Alpha"},"session_b":{"id":"b","title":"Beta"},"region":"Europe"}`
)

// newTestServer serves the chat API with sessions a and b. Only a has a
// history.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, sessionsBody)
	})
	r.Get("/api/sessions/{id}/history", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") != "a" {
			respond(w, http.StatusNotFound, `{"detail":"no such session"}`)
			return
		}
		respond(w, http.StatusOK, historyBody)
	})
	r.Post("/api/compare", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, compareBody)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func respond(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// newTestApp wires an App against srv. The connection is never dialed.
func newTestApp(t *testing.T, srv *httptest.Server) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Server.APIURL = srv.URL
	cfg.UI.Markdown = false
	app, err := NewApp(cfg, "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

// scriptedSender records turns and runs onSend for each.
type scriptedSender struct {
	mu     sync.Mutex
	sent   []protocol.ClientEvent
	onSend func(ev protocol.ClientEvent)
}

func (s *scriptedSender) Send(ctx context.Context, ev protocol.ClientEvent) error {
	s.mu.Lock()
	s.sent = append(s.sent, ev)
	fn := s.onSend
	s.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
	return nil
}

func (s *scriptedSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}
