// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"
)

// Renderer converts finished text to output wrapped at width cells.
type Renderer interface {
	Render(text string, width int) (string, error)
}

// =============================================================================
// MARKDOWN
// =============================================================================

// Markdown renders with glamour. Term renderers are built per wrap width
// and cached.
type Markdown struct {
	style string

	mu    sync.Mutex
	cache map[int]*glamour.TermRenderer
}

// NewMarkdown creates a Markdown renderer. style is "dark", "light" or
// "auto".
func NewMarkdown(style string) *Markdown {
	return &Markdown{style: style, cache: make(map[int]*glamour.TermRenderer)}
}

// Render renders text as markdown.
func (m *Markdown) Render(text string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := m.renderer(width)
	if err != nil {
		return "", err
	}
	out, err := r.Render(text)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}

func (m *Markdown) renderer(width int) (*glamour.TermRenderer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.cache[width]; ok {
		return r, nil
	}
	styleOpt := glamour.WithAutoStyle()
	switch m.style {
	case "dark", "light":
		styleOpt = glamour.WithStandardStyle(m.style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}
	m.cache[width] = r
	return r, nil
}

// =============================================================================
// PLAIN
// =============================================================================

// Plain word-wraps text without markup.
type Plain struct{}

// Render wraps each line of text at width cells. Words longer than width
// are left on their own line.
func (Plain) Render(text string, width int) (string, error) {
	if width <= 0 {
		return text, nil
	}
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n"), nil
}

func wrapLine(line string, width int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}
	var (
		lines []string
		cur   strings.Builder
		used  int
	)
	for _, w := range words {
		ww := runewidth.StringWidth(w)
		if used > 0 && used+1+ww > width {
			lines = append(lines, cur.String())
			cur.Reset()
			used = 0
		}
		if used > 0 {
			cur.WriteByte(' ')
			used++
		}
		cur.WriteString(w)
		used += ww
	}
	return append(lines, cur.String())
}

// Fallback renders with r and returns text unchanged on error.
func Fallback(r Renderer, text string, width int) string {
	if r == nil {
		return text
	}
	out, err := r.Render(text, width)
	if err != nil {
		return text
	}
	return out
}

// =============================================================================
// TOOL PAYLOADS
// =============================================================================

// HighlightJSON returns payload indented and colorized when it parses as
// JSON, and ok=false otherwise. Partial payloads from a streaming tool block
// do not parse and are shown as-is by the caller.
func HighlightJSON(payload string) (string, bool) {
	trimmed := strings.TrimSpace(payload)
	var v any
	if trimmed == "" || json.Unmarshal([]byte(trimmed), &v) != nil {
		return payload, false
	}
	var pretty strings.Builder
	enc := json.NewEncoder(&pretty)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return payload, false
	}
	src := strings.TrimRight(pretty.String(), "\n")

	var buf strings.Builder
	if err := quick.Highlight(&buf, src, "json", "terminal256", "monokai"); err != nil {
		return src, true
	}
	return strings.TrimRight(buf.String(), "\n"), true
}
