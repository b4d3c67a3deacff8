// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSessions_Table(t *testing.T) {
	app := newTestApp(t, newTestServer(t))
	var buf bytes.Buffer

	require.NoError(t, RunSessions(context.Background(), app, Args{}, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "TITLE")
	assert.Contains(t, lines[1], "Alpha")
	assert.True(t, strings.HasSuffix(lines[1], "2"))
	assert.Contains(t, lines[2], "Beta")
}

func TestRunSessions_JSONWithLimit(t *testing.T) {
	app := newTestApp(t, newTestServer(t))
	var buf bytes.Buffer

	require.NoError(t, RunSessions(context.Background(), app, Args{JSON: true, Limit: 1}, &buf))

	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0]["id"])
}

func TestRunCompare(t *testing.T) {
	app := newTestApp(t, newTestServer(t))
	var buf bytes.Buffer

	err := RunCompare(context.Background(), app, Args{SessionA: "a", SessionB: "b"}, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Alpha vs Beta (Europe)")
	assert.Contains(t, buf.String(), "A is shorter than B.")

	snap := app.Store.Snapshot()
	assert.True(t, snap.ShowComparison)
	assert.False(t, snap.ComparisonPending)
}

func TestRunCompare_JSON(t *testing.T) {
	app := newTestApp(t, newTestServer(t))
	var buf bytes.Buffer

	require.NoError(t, RunCompare(context.Background(), app, Args{SessionA: "a", SessionB: "b", JSON: true}, &buf))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "A is shorter than B.", out["comparison"])
}

func TestRunExport_Markdown(t *testing.T) {
	app := newTestApp(t, newTestServer(t))
	path := filepath.Join(t.TempDir(), "alpha.md")
	var buf bytes.Buffer

	require.NoError(t, RunExport(context.Background(), app, Args{SessionID: "a", Out: path}, &buf))
	assert.Equal(t, "exported 2 messages to "+path+"\n", buf.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Alpha")
	assert.Contains(t, string(data), "old question")
	assert.Contains(t, string(data), "old answer")
}

func TestRunExport_FormatFromExtension(t *testing.T) {
	app := newTestApp(t, newTestServer(t))
	path := filepath.Join(t.TempDir(), "alpha.json")

	require.NoError(t, RunExport(context.Background(), app, Args{SessionID: "a", Out: path}, &bytes.Buffer{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "Alpha", doc["title"])
	assert.Len(t, doc["messages"], 2)
}

func TestRunExport_UnknownSession(t *testing.T) {
	app := newTestApp(t, newTestServer(t))
	err := RunExport(context.Background(), app, Args{SessionID: "zzz", Out: filepath.Join(t.TempDir(), "x.md")}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, "json", formatForPath("a/b.JSON"))
	assert.Equal(t, "md", formatForPath("a/b.md"))
	assert.Equal(t, "md", formatForPath(""))
}
