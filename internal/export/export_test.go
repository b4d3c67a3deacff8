// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigrun-chat/internal/model"
)

var fixedTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func sampleMessages() []model.Message {
	asst := model.NewAssistantMessage([]model.ContentBlock{
		{Index: 0, Kind: model.BlockText, Text: "The answer is 4."},
	})
	asst.Timestamp = fixedTime.Add(time.Second)
	return []model.Message{
		{ID: "u1", Role: model.RoleUser, Content: "What is 2+2?", Timestamp: fixedTime},
		asst,
	}
}

func testOptions() *Options {
	opts := DefaultOptions()
	opts.ExportedAt = fixedTime
	opts.SessionID = "sess-1"
	return opts
}

// =============================================================================
// MARKDOWN
// =============================================================================

func TestMarkdownExporter_Export(t *testing.T) {
	out, err := NewMarkdownExporter(testOptions()).Export("Math help", sampleMessages())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\ntitle: Math help\n"), md)
	assert.Contains(t, md, "session: sess-1\n")
	assert.Contains(t, md, "# Math help\n")
	assert.Contains(t, md, "### [You] <sub>09:26:53</sub>")
	assert.Contains(t, md, "What is 2+2?")
	assert.Contains(t, md, "### [Assistant]")
	assert.Contains(t, md, "The answer is 4.")
	assert.Less(t, strings.Index(md, "What is 2+2?"), strings.Index(md, "The answer is 4."))
}

func TestMarkdownExporter_NoMetadata(t *testing.T) {
	opts := testOptions()
	opts.IncludeMetadata = false
	opts.IncludeTimestamps = false

	out, err := NewMarkdownExporter(opts).Export("Plain", sampleMessages())
	require.NoError(t, err)
	md := string(out)

	assert.False(t, strings.HasPrefix(md, "---"))
	assert.NotContains(t, md, "Session Information")
	assert.NotContains(t, md, "<sub>")
}

func TestMarkdownExporter_TitleCannotInjectYAML(t *testing.T) {
	out, err := NewMarkdownExporter(testOptions()).Export("Evil\ninjected: true", sampleMessages())
	require.NoError(t, err)

	frontMatter := strings.SplitN(string(out), "---\n", 3)[1]
	for _, line := range strings.Split(frontMatter, "\n") {
		assert.False(t, strings.HasPrefix(line, "injected:"), "front matter line %q", line)
	}
	assert.Contains(t, frontMatter, `title: "Evil\ninjected: true"`)
}

func TestMarkdownExporter_Empty(t *testing.T) {
	_, err := NewMarkdownExporter(nil).Export("t", nil)
	assert.True(t, errors.Is(err, ErrNoMessages))
}

func TestEscapeYAML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"simple", "simple"},
		{"a: b", `"a: b"`},
		{`say "hi"`, `"say \"hi\""`},
		{" padded", `" padded"`},
		{`back\slash`, `"back\\slash"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeYAML(tt.in), "escapeYAML(%q)", tt.in)
	}
}

// =============================================================================
// JSON
// =============================================================================

func TestJSONExporter_Export(t *testing.T) {
	out, err := NewJSONExporter(testOptions()).Export("Math help", sampleMessages())
	require.NoError(t, err)

	var doc jsonDocument
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "Math help", doc.Title)
	assert.Equal(t, "sess-1", doc.SessionID)
	require.Len(t, doc.Messages, 2)
	assert.Equal(t, model.RoleUser, doc.Messages[0].Role)
	assert.Equal(t, "The answer is 4.", doc.Messages[1].Content)
	assert.NotContains(t, string(out), "blocks")
}

// =============================================================================
// FILES
// =============================================================================

func TestExportToFile(t *testing.T) {
	opts := testOptions()
	opts.OutputDir = t.TempDir()

	path, err := ExportToFile("a/b: c", sampleMessages(), NewMarkdownExporter(opts), opts)
	require.NoError(t, err)

	assert.Equal(t, opts.OutputDir, filepath.Dir(path))
	assert.Equal(t, "conversation_a-b-_c_20250314_092653.md", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "What is 2+2?")
}

func TestWriteTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteTo(path, "t", sampleMessages(), NewJSONExporter(testOptions())))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestForFormat(t *testing.T) {
	for format, ext := range map[string]string{"md": ".md", "markdown": ".md", ".json": ".json", "": ".md"} {
		exp, err := ForFormat(format, nil)
		require.NoError(t, err, format)
		assert.Equal(t, ext, exp.FileExtension(), format)
	}
	_, err := ForFormat("html", nil)
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "conversation", sanitizeFilename("   "))
	assert.Equal(t, "x-y", sanitizeFilename("x?y"))
	assert.Equal(t, "tab_here", sanitizeFilename("tab\there"))
	assert.Len(t, []rune(sanitizeFilename(strings.Repeat("z", 80))), 50)
}
