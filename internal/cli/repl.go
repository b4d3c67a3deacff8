// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - Line-mode chat for terminals that cannot run the TUI.
//
// Command: chat
// Short:   Chat line by line with input history
//
// Examples:
//   rigrun-chat chat
//   rigrun-chat chat --location "http://localhost:8000/?session=abc123"
//   rigrun-chat --plain
//
// Interactive Commands (during chat):
//   /help, /h              Show available commands
//   /new, /n               Start a new conversation
//   /open ID               Resume a session
//   /sessions, /s          List sessions
//   /compare A B [REGION]  Compare two sessions
//   /export [FILE]         Export the conversation
//   /where                 Print the shareable location
//   /quit, /q              Exit chat
//   Ctrl+C                 Abandon the reply in flight
//   Ctrl+D                 Exit chat
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/rigrun-chat/internal/client"
	"github.com/jeranaias/rigrun-chat/internal/compare"
	"github.com/jeranaias/rigrun-chat/internal/config"
	"github.com/jeranaias/rigrun-chat/internal/conn"
	"github.com/jeranaias/rigrun-chat/internal/export"
	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/protocol"
	"github.com/jeranaias/rigrun-chat/internal/render"
	"github.com/jeranaias/rigrun-chat/internal/session"
	"github.com/jeranaias/rigrun-chat/internal/store"
	"github.com/jeranaias/rigrun-chat/internal/ui/styles"
)

// connectWait bounds how long chat waits for the first connection before
// showing the prompt.
const connectWait = 5 * time.Second

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle    = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	youStyle       = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	infoStyle      = lipgloss.NewStyle().Foreground(styles.TextSecondary)
	toolStyle      = lipgloss.NewStyle().Foreground(styles.Emerald)
	warningStyle   = lipgloss.NewStyle().Foreground(styles.Amber)
	errorStyle     = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// inputHistory wraps liner with a persistent history file.
type inputHistory struct {
	line *liner.State
	path string
}

func newInputHistory() *inputHistory {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	h := &inputHistory{line: line, path: filepath.Join(dir, "chat_history")}
	if f, err := os.Open(h.path); err == nil {
		h.line.ReadHistory(f)
		f.Close()
	}
	return h
}

func (h *inputHistory) read(prompt string) (string, error) {
	input, err := h.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		h.line.AppendHistory(input)
	}
	return input, nil
}

func (h *inputHistory) close() {
	if err := os.MkdirAll(filepath.Dir(h.path), 0o700); err == nil {
		if f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			h.line.WriteHistory(f)
			f.Close()
		}
	}
	h.line.Close()
}

// =============================================================================
// LINE CHAT
// =============================================================================

// lineChat prints store changes as plain lines. Dispatch, Submit and the
// session transitions all run on one eventLoop.
type lineChat struct {
	app      *App
	loop     *eventLoop
	out      io.Writer
	renderer render.Renderer
	width    int

	idle  chan struct{}
	ready chan struct{}

	unsubscribe func()

	// mu guards the fields below and serializes output.
	mu        sync.Mutex
	printed   int
	lastID    string
	submitted string
	waiting   bool
	conn      protocol.ConnState
	failureAt time.Time
	readyOnce sync.Once
}

func newLineChat(app *App, out io.Writer, renderer render.Renderer, width int) *lineChat {
	c := &lineChat{
		app:      app,
		loop:     newEventLoop(),
		out:      out,
		renderer: renderer,
		width:    width,
		idle:     make(chan struct{}, 1),
		ready:    make(chan struct{}),
	}
	snap := app.Store.Snapshot()
	c.conn = snap.Connection
	c.printed = len(snap.Messages)
	if c.printed > 0 {
		c.lastID = snap.Messages[c.printed-1].ID
	}
	c.unsubscribe = app.Store.Subscribe(
		store.SliceMessages|store.SliceWaiting|store.SliceFailure|store.SliceConnection,
		c.onChange,
	)
	return c
}

func (c *lineChat) close() {
	c.unsubscribe()
	c.loop.stop()
}

// dispatch hands a connection event to the loop.
func (c *lineChat) dispatch(ev protocol.Event) {
	c.loop.post(func() { c.app.Dispatcher.Dispatch(ev) })
}

func (c *lineChat) onChange(snap store.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.printMessages(snap.Messages)

	if snap.Connection != c.conn {
		c.conn = snap.Connection
		if snap.Connection == protocol.StateConnected {
			c.readyOnce.Do(func() { close(c.ready) })
		}
		fmt.Fprintln(c.out, infoStyle.Render(styles.StatusIndicator(snap.Connection)+" "+string(snap.Connection)))
	}

	if f := snap.Failure; f != nil && !f.At.Equal(c.failureAt) {
		c.failureAt = f.At
		fmt.Fprintf(c.out, "%s %s: %v\n", errorStyle.Render("[Error]"), f.Op, f.Err)
	}

	if c.waiting && !snap.Waiting {
		select {
		case c.idle <- struct{}{}:
		default:
		}
	}
	c.waiting = snap.Waiting
}

// printMessages prints messages not yet shown. A list that no longer
// extends the printed one (new chat, resumed session) is printed from the
// start. The turn just typed is not echoed.
func (c *lineChat) printMessages(msgs []model.Message) {
	if c.printed > len(msgs) || (c.printed > 0 && msgs[c.printed-1].ID != c.lastID) {
		c.printed = 0
	}
	for _, msg := range msgs[c.printed:] {
		if msg.Role == model.RoleUser && c.submitted != "" && msg.Content == c.submitted {
			c.submitted = ""
			continue
		}
		c.printMessage(msg)
	}
	c.printed = len(msgs)
	if c.printed > 0 {
		c.lastID = msgs[c.printed-1].ID
	}
}

func (c *lineChat) printMessage(msg model.Message) {
	switch msg.Role {
	case model.RoleUser:
		fmt.Fprintf(c.out, "%s %s\n", youStyle.Render("you:"), msg.Content)
	case model.RoleAssistant:
		fmt.Fprintln(c.out, assistantStyle.Render("assistant:"))
		for _, b := range msg.Blocks {
			if b.Kind != model.BlockToolExecution || b.Tool == nil {
				continue
			}
			fmt.Fprintln(c.out, toolStyle.Render("  [tool] "+b.Tool.Name))
			if hl, ok := render.HighlightJSON(b.Text); ok {
				fmt.Fprintln(c.out, hl)
			}
		}
		fmt.Fprintln(c.out, render.Fallback(c.renderer, msg.Content, c.width))
	default:
		fmt.Fprintln(c.out, infoStyle.Render(msg.Content))
	}
	fmt.Fprintln(c.out)
}

func (c *lineChat) println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, a...)
}

// =============================================================================
// ACTIONS
// =============================================================================

// submit sends a turn and waits until the reply is finished, the turn is
// abandoned with Ctrl+C, or ctx ends.
func (c *lineChat) submit(ctx context.Context, text string, interrupt <-chan os.Signal) error {
	select {
	case <-c.idle:
	default:
	}
	select {
	case <-interrupt:
	default:
	}

	c.mu.Lock()
	c.submitted = client.NormalizeTurn(text)
	c.mu.Unlock()

	var err error
	c.loop.call(func() { err = c.app.Dispatcher.Submit(ctx, text) })
	if err != nil {
		c.mu.Lock()
		c.submitted = ""
		c.mu.Unlock()
	}
	switch {
	case errors.Is(err, conn.ErrNotConnected):
		return fmt.Errorf("%w; try again once the connection is back", err)
	case errors.Is(err, client.ErrBusy):
		return errors.New("still waiting for the current reply")
	case err != nil:
		return err
	}

	select {
	case <-c.idle:
	case <-interrupt:
		c.loop.call(func() { c.app.Assembler.Abandon(true) })
		c.println(warningStyle.Render("[Cancelled]"))
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (c *lineChat) startNew() {
	c.loop.call(c.app.Sessions.StartNew)
	c.println(infoStyle.Render("new conversation"))
}

func (c *lineChat) open(ctx context.Context, id string) error {
	var (
		req  session.HistoryRequest
		rerr error
	)
	c.loop.call(func() { req, rerr = c.app.Sessions.Request(id) })
	if rerr != nil {
		return rerr
	}
	h, err := c.app.Sessions.Load(ctx, req)
	if err != nil {
		c.loop.call(func() { c.app.Sessions.Fail(err) })
		return err
	}
	c.loop.call(func() { rerr = c.app.Sessions.Activate(h) })
	if errors.Is(rerr, session.ErrStale) {
		return nil
	}
	return rerr
}

func (c *lineChat) listSessions(ctx context.Context) error {
	sessions, err := c.app.API.ListSessions(ctx)
	if err != nil {
		return err
	}
	c.loop.call(func() { c.app.Store.SetSessions(sessions) })
	c.mu.Lock()
	defer c.mu.Unlock()
	writeSessionTable(c.out, sessions)
	return nil
}

func (c *lineChat) compare(ctx context.Context, idA, idB, region string) error {
	if len(c.app.Store.Snapshot().Sessions) == 0 {
		if sessions, err := c.app.API.ListSessions(ctx); err == nil {
			c.loop.call(func() { c.app.Store.SetSessions(sessions) })
		}
	}
	var (
		pending *compare.Pending
		result  *model.ComparisonResult
		err     error
	)
	c.loop.call(func() { pending, err = c.app.Compare.Begin(ctx, idA, idB, c.app.Region(region)) })
	if err != nil || pending == nil {
		return err
	}
	out := c.app.Compare.Run(pending)
	c.loop.call(func() { result, err = c.app.Compare.Publish(out) })
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	writeComparison(c.out, result, c.renderer, c.width)
	return nil
}

func (c *lineChat) export(path string) error {
	snap := c.app.Store.Snapshot()
	title := conversationTitle(snap)
	opts := export.DefaultOptions()
	opts.SessionID = snap.SessionID

	exp, err := export.ForFormat(formatForPath(path), opts)
	if err != nil {
		return err
	}
	if path == "" {
		path, err = export.ExportToFile(title, snap.Messages, exp, opts)
	} else {
		err = export.WriteTo(path, title, snap.Messages, exp)
	}
	if err != nil {
		return err
	}
	c.println(infoStyle.Render("exported to " + path))
	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleLine runs one line of input. It returns false when chat should end.
func (c *lineChat) handleLine(ctx context.Context, input string, interrupt <-chan os.Signal) (bool, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return true, nil
	}
	if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
		return false, nil
	}
	if !strings.HasPrefix(input, "/") {
		return true, c.submit(ctx, input, interrupt)
	}

	fields := strings.Fields(input)
	cmd, rest := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "/quit", "/q", "/exit":
		return false, nil
	case "/help", "/h":
		c.println(chatHelp)
	case "/new", "/n":
		c.startNew()
	case "/open", "/o":
		if len(rest) != 1 {
			return true, NewValidationErrorWithExample("open", "", "expects one session id", "/open abc123")
		}
		return true, c.open(ctx, rest[0])
	case "/sessions", "/s":
		return true, c.listSessions(ctx)
	case "/compare":
		if len(rest) < 2 || len(rest) > 3 {
			return true, NewValidationErrorWithExample("compare", "", "expects two session ids", "/compare abc123 def456 Europe")
		}
		region := ""
		if len(rest) == 3 {
			region = rest[2]
		}
		return true, c.compare(ctx, rest[0], rest[1], region)
	case "/export":
		path := ""
		if len(rest) > 0 {
			path = rest[0]
		}
		return true, c.export(path)
	case "/where":
		c.println(c.app.Location.String())
	default:
		return true, NewValidationError("command", cmd, "unknown command, try /help")
	}
	return true, nil
}

const chatHelp = `Commands:
  /new                   start a new conversation
  /open ID               resume a session
  /sessions              list sessions
  /compare A B [REGION]  compare two sessions
  /export [FILE]         export the conversation (.md or .json)
  /where                 print the shareable location
  /quit                  exit
Ctrl+C abandons the reply in flight; Ctrl+D exits.`

// =============================================================================
// RUN
// =============================================================================

// RunChat runs line-mode chat on stdin until the user quits.
func RunChat(ctx context.Context, app *App, out io.Writer) error {
	lipgloss.SetColorProfile(GetColorProfile())
	width := GetTerminalWidth()
	c := newLineChat(app, out, newRenderer(app, styles.NewTheme(app.Config.UI.Theme)), width)
	defer c.close()

	app.Conn.OnEvent(c.dispatch)
	if err := app.Conn.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer app.Close()

	history := newInputHistory()
	defer history.close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	c.println(assistantStyle.Render("rigrun-chat") + infoStyle.Render("  /help for commands"))
	select {
	case <-c.ready:
	case <-time.After(connectWait):
		c.println(warningStyle.Render("server not reachable yet; still trying"))
	case <-ctx.Done():
		return nil
	}

	if id := app.Location.SessionID(); id != "" {
		if err := c.open(ctx, id); err != nil {
			c.println(errorStyle.Render("[Error]"), err)
		}
	}

	for {
		input, err := history.read(promptStyle.Render("chat> "))
		if err != nil {
			// Ctrl+C at the prompt, Ctrl+D or a closed stdin.
			c.println()
			break
		}
		more, err := c.handleLine(ctx, input, interrupt)
		if err != nil {
			c.println(errorStyle.Render("[Error]"), err)
		}
		if !more || ctx.Err() != nil {
			break
		}
	}

	c.println(infoStyle.Render("location: " + app.Location.String()))
	return nil
}
