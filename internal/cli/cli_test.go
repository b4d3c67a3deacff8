// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigrun-chat/internal/api"
	"github.com/jeranaias/rigrun-chat/internal/config"
	"github.com/jeranaias/rigrun-chat/internal/conn"
)

// =============================================================================
// ARG PARSER
// =============================================================================

func TestArgParser(t *testing.T) {
	p := NewArgParser([]string{"export", "abc", "--format=json", "--out", "x.json", "--json"}, "json")

	assert.Equal(t, "export", p.Subcommand())
	assert.Equal(t, "abc", p.Positional(1))
	assert.Equal(t, "json", p.Flag("format"))
	assert.Equal(t, "x.json", p.Flag("--out"))
	assert.True(t, p.BoolFlag("json"))
	assert.False(t, p.BoolFlag("plain"))
	assert.Equal(t, 2, p.PositionalCount())
	assert.True(t, p.HasFlag("--out"))
	assert.False(t, p.HasFlag("region"))
}

func TestArgParser_KnownBoolDoesNotConsumeValue(t *testing.T) {
	p := NewArgParser([]string{"--plain", "chat"}, "plain")
	assert.True(t, p.BoolFlag("plain"))
	assert.Equal(t, "chat", p.Subcommand())

	// Unknown flags still take the next argument as their value.
	p = NewArgParser([]string{"--plain", "chat"})
	assert.Equal(t, "chat", p.Flag("plain"))
	assert.Equal(t, "", p.Subcommand())
}

func TestArgParser_FlagIntOrDefault(t *testing.T) {
	p := NewArgParser([]string{"--limit", "3", "--bad", "x"})
	assert.Equal(t, 3, p.FlagIntOrDefault("limit", 0))
	assert.Equal(t, 7, p.FlagIntOrDefault("bad", 7))
	assert.Equal(t, 9, p.FlagIntOrDefault("missing", 9))
}

// =============================================================================
// PARSE
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		raw   []string
		cmd   Command
		check func(t *testing.T, a Args)
	}{
		{"default is tui", nil, CmdTUI, nil},
		{"plain before command", []string{"--plain", "chat"}, CmdChat, func(t *testing.T, a Args) {
			assert.True(t, a.Plain)
		}},
		{"location", []string{"--location", "http://h/?session=s1"}, CmdTUI, func(t *testing.T, a Args) {
			assert.Equal(t, "http://h/?session=s1", a.Location)
		}},
		{"sessions limit", []string{"sessions", "--limit", "5", "--json"}, CmdSessions, func(t *testing.T, a Args) {
			assert.Equal(t, 5, a.Limit)
			assert.True(t, a.JSON)
		}},
		{"compare", []string{"compare", "a", "b", "--region", "Europe"}, CmdCompare, func(t *testing.T, a Args) {
			assert.Equal(t, "a", a.SessionA)
			assert.Equal(t, "b", a.SessionB)
			assert.Equal(t, "Europe", a.Region)
		}},
		{"export", []string{"export", "abc", "--format", "JSON", "-o", "out.json"}, CmdExport, func(t *testing.T, a Args) {
			assert.Equal(t, "abc", a.SessionID)
			assert.Equal(t, "json", a.Format)
			assert.Equal(t, "out.json", a.Out)
		}},
		{"version flag", []string{"--version"}, CmdVersion, nil},
		{"help flag wins", []string{"sessions", "-h"}, CmdHelp, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.cmd, cmd)
			if tt.check != nil {
				tt.check(t, args)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		cmd  Command
	}{
		{"compare needs two", []string{"compare", "a"}, CmdCompare},
		{"compare same session", []string{"compare", "a", "a"}, CmdCompare},
		{"export needs id", []string{"export"}, CmdExport},
		{"export bad format", []string{"export", "abc", "--format", "pdf"}, CmdExport},
		{"compare extra id", []string{"compare", "a", "b", "c"}, CmdCompare},
		{"limit not a number", []string{"sessions", "--limit", "many"}, CmdHelp},
		{"limit without value", []string{"sessions", "--limit"}, CmdHelp},
		{"unknown command", []string{"frobnicate"}, CmdHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _, err := Parse(tt.raw)
			require.Error(t, err)
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, ExitUsageError, GetExitCode(err))
		})
	}
}

func TestCommand_String(t *testing.T) {
	assert.Equal(t, "tui", CmdTUI.String())
	assert.Equal(t, "export", CmdExport.String())
}

// =============================================================================
// ERRORS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", NewValidationError("x", "y", "bad"), ExitUsageError},
		{"config", fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "server.url", Message: "bad"}}), ExitConfigError},
		{"not found", fmt.Errorf("history: %w", &api.StatusError{Code: 404}), ExitNotFoundError},
		{"server error", &api.StatusError{Code: 500}, ExitGeneralError},
		{"timeout", fmt.Errorf("wrap: %w", context.DeadlineExceeded), ExitTimeoutError},
		{"not connected", conn.ErrNotConnected, ExitNetworkError},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestDisplayError(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, errors.New("boom"), false)
	assert.Equal(t, "Error: boom\n", buf.String())

	buf.Reset()
	DisplayError(&buf, NewValidationError("format", "pdf", "must be md or json"), true)
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, false, out["success"])
	assert.EqualValues(t, ExitUsageError, out["exit_code"])

	buf.Reset()
	DisplayError(&buf, nil, false)
	assert.Empty(t, buf.String())
}

func TestRun_Version(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Run(context.Background(), CmdVersion, Args{JSON: true}, &buf))
	var out map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, Version, out["version"])
}

func TestNewApp_Location(t *testing.T) {
	cfg := config.Default()

	app, err := NewApp(cfg, "http://localhost:8000/chat?session=s1&theme=dark", nil)
	require.NoError(t, err)
	defer app.Close()
	assert.Equal(t, "s1", app.Location.SessionID())

	_, err = NewApp(cfg, "http://[::1", nil)
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	fresh, err := NewApp(cfg, "", nil)
	require.NoError(t, err)
	defer fresh.Close()
	assert.Equal(t, "", fresh.Location.SessionID())
	assert.Equal(t, "Global", fresh.Region(""))
	assert.Equal(t, "Europe", fresh.Region("Europe"))
}
