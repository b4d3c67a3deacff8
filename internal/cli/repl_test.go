// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigrun-chat/internal/client"
	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/protocol"
	"github.com/jeranaias/rigrun-chat/internal/render"
)

// syncBuffer is written from the loop goroutine and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type replHarness struct {
	app    *App
	chat   *lineChat
	out    *syncBuffer
	sender *scriptedSender
}

// newReplHarness wires a lineChat whose turns go to a scripted sender and
// marks the connection as established.
func newReplHarness(t *testing.T) *replHarness {
	t.Helper()
	app := newTestApp(t, newTestServer(t))
	sender := &scriptedSender{}
	app.Dispatcher = client.New(app.Store, app.Assembler, app.Sessions, sender, nil)

	out := &syncBuffer{}
	c := newLineChat(app, out, render.Plain{}, 80)
	t.Cleanup(c.close)

	c.loop.call(func() {
		app.Dispatcher.Dispatch(protocol.ConnectionStatus{State: protocol.StateConnected})
	})
	select {
	case <-c.ready:
	case <-time.After(time.Second):
		t.Fatal("connection never reported")
	}
	return &replHarness{app: app, chat: c, out: out, sender: sender}
}

// replyWith makes the sender answer every turn with text.
func (h *replHarness) replyWith(text string) {
	h.sender.onSend = func(protocol.ClientEvent) {
		for _, ev := range []protocol.Event{
			protocol.SessionAssigned{SessionID: "s-new"},
			protocol.BlockOpen{Index: 0, Kind: model.BlockText},
			protocol.BlockDelta{Index: 0, Text: text},
			protocol.BlockClose{Index: 0},
			protocol.MessageDone{},
		} {
			h.chat.dispatch(ev)
		}
	}
}

func (h *replHarness) line(t *testing.T, input string) (bool, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.chat.handleLine(ctx, input, make(chan os.Signal))
}

func TestLineChat_SubmitPrintsReply(t *testing.T) {
	h := newReplHarness(t)
	h.replyWith("Hi there")

	more, err := h.line(t, "hello")
	require.NoError(t, err)
	assert.True(t, more)

	out := h.out.String()
	assert.Contains(t, out, "assistant:")
	assert.Contains(t, out, "Hi there")
	assert.NotContains(t, out, "you: hello", "the typed turn is not echoed")

	snap := h.app.Store.Snapshot()
	require.Len(t, snap.Messages, 2)
	assert.False(t, snap.Waiting)
	assert.Equal(t, "s-new", snap.SessionID)
	assert.Equal(t, "s-new", h.app.Location.SessionID())
	assert.Equal(t, 1, h.sender.count())
}

func TestLineChat_SubmitWhileDisconnected(t *testing.T) {
	h := newReplHarness(t)
	h.chat.loop.call(func() {
		h.app.Dispatcher.Dispatch(protocol.ConnectionStatus{State: protocol.StateReconnecting})
	})

	_, err := h.line(t, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
	assert.Equal(t, 0, h.sender.count())
	assert.Contains(t, h.out.String(), "reconnecting")
}

func TestLineChat_OpenPrintsHistory(t *testing.T) {
	h := newReplHarness(t)

	_, err := h.line(t, "/open a")
	require.NoError(t, err)

	out := h.out.String()
	assert.Contains(t, out, "you: old question")
	assert.Contains(t, out, "old answer")
	assert.Equal(t, "a", h.app.Location.SessionID())

	_, err = h.line(t, "/where")
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "session=a")
}

func TestLineChat_OpenUnknownSession(t *testing.T) {
	h := newReplHarness(t)

	_, err := h.line(t, "/open zzz")
	require.Error(t, err)
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
	assert.Equal(t, "", h.app.Store.SessionID())
	assert.Contains(t, h.out.String(), "[Error]", "the failure report is printed")
}

func TestLineChat_NewClearsConversation(t *testing.T) {
	h := newReplHarness(t)
	_, err := h.line(t, "/open a")
	require.NoError(t, err)

	_, err = h.line(t, "/new")
	require.NoError(t, err)

	snap := h.app.Store.Snapshot()
	assert.Empty(t, snap.Messages)
	assert.Equal(t, "", snap.SessionID)
	assert.Equal(t, "", h.app.Location.SessionID())
	assert.Contains(t, h.out.String(), "new conversation")
}

func TestLineChat_SessionsAndCompare(t *testing.T) {
	h := newReplHarness(t)

	_, err := h.line(t, "/sessions")
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "Alpha")
	assert.Len(t, h.app.Store.Snapshot().Sessions, 2)

	_, err = h.line(t, "/compare a b")
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "A is shorter than B.")

	_, err = h.line(t, "/compare a")
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestLineChat_Export(t *testing.T) {
	h := newReplHarness(t)
	_, err := h.line(t, "/open a")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "chat.json")
	_, err = h.line(t, "/export "+path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"old answer"`)
	assert.Contains(t, h.out.String(), "exported to "+path)
}

func TestLineChat_Commands(t *testing.T) {
	h := newReplHarness(t)

	more, err := h.line(t, "   ")
	assert.NoError(t, err)
	assert.True(t, more)

	_, err = h.line(t, "/help")
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "/compare A B [REGION]")

	_, err = h.line(t, "/bogus")
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	for _, quit := range []string{"/quit", "/q", "exit", "QUIT"} {
		more, err := h.line(t, quit)
		assert.NoError(t, err)
		assert.False(t, more, quit)
	}
}

func TestLineChat_ServerErrorEndsWait(t *testing.T) {
	h := newReplHarness(t)
	h.sender.onSend = func(protocol.ClientEvent) {
		h.chat.dispatch(protocol.ServerError{Message: "model overloaded"})
	}

	_, err := h.line(t, "hello")
	require.NoError(t, err)
	assert.False(t, h.app.Store.Waiting())
	// The failure is reported right after the wait ends.
	assert.Eventually(t, func() bool {
		return strings.Contains(h.out.String(), "model overloaded")
	}, time.Second, 10*time.Millisecond)
}
