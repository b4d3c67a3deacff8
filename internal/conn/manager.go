// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/rigrun-chat/internal/logging"
	"github.com/jeranaias/rigrun-chat/internal/protocol"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotConnected is returned by Send while no transport is established.
	// The event is rejected, not queued.
	ErrNotConnected = errors.New("not connected")

	// ErrAlreadyStarted is returned by a second Connect.
	ErrAlreadyStarted = errors.New("connection manager already started")
)

// =============================================================================
// MANAGER
// =============================================================================

// Manager owns one persistent connection and its reconnection loop.
type Manager struct {
	cfg     Config
	dialer  Dialer
	logger  *slog.Logger
	limiter *rate.Limiter

	mu        sync.Mutex
	status    protocol.ConnState
	transport Transport
	handler   func(protocol.Event)
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates a Manager. It does not dial until Connect.
func New(cfg Config, dialer Dialer, logger *slog.Logger) *Manager {
	logger = logging.OrDiscard(logger)
	limit := rate.Inf
	if cfg.MinDialInterval > 0 {
		limit = rate.Every(cfg.MinDialInterval)
	}
	return &Manager{
		cfg:     cfg,
		dialer:  dialer,
		logger:  logger,
		limiter: rate.NewLimiter(limit, 1),
		status:  protocol.StateDisconnected,
	}
}

// OnEvent sets the handler receiving every server event and status
// transition. Call before Connect. The handler runs on the Manager's
// goroutine and must not block for long.
func (m *Manager) OnEvent(handler func(protocol.Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
}

// Status returns the current connection status.
func (m *Manager) Status() protocol.ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Connect starts the connection loop and returns immediately.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done != nil {
		return ErrAlreadyStarted
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	go m.run(ctx)
	return nil
}

// Close stops the loop, closes the transport and waits for the final
// disconnected transition to be delivered.
func (m *Manager) Close() error {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

// Send transmits a client event. It fails with ErrNotConnected unless the
// connection is established.
func (m *Manager) Send(ctx context.Context, ev protocol.ClientEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := protocol.EncodeClient(ev)
	if err != nil {
		return err
	}

	m.mu.Lock()
	t, status := m.transport, m.status
	m.mu.Unlock()

	if t == nil || status != protocol.StateConnected {
		m.logger.Warn("conn.send.rejected", "event", ev.Type(), "status", status)
		return ErrNotConnected
	}
	if err := t.WriteMessage(data); err != nil {
		m.logger.Warn("conn.send.failed", "event", ev.Type(), "error", err)
		return fmt.Errorf("send %s: %w", ev.Type(), err)
	}
	return nil
}

// =============================================================================
// CONNECTION LOOP
// =============================================================================

func (m *Manager) run(ctx context.Context) {
	defer close(m.done)
	defer m.setStatus(protocol.StateDisconnected)

	b := newBackoff(m.cfg)
	m.setStatus(protocol.StateConnecting)

	for {
		if err := m.limiter.Wait(ctx); err != nil {
			return
		}

		t, err := m.dialer.Dial(ctx, m.cfg.URL)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Warn("conn.dial.failed", "url", m.cfg.URL, "error", err)
			if m.Status() == protocol.StateConnecting {
				m.setStatus(protocol.StateDisconnected)
			}
			if !m.wait(ctx, b.Next()) {
				return
			}
			m.setStatus(protocol.StateReconnecting)
			continue
		}

		b.Reset()
		m.attach(t)
		m.setStatus(protocol.StateConnected)

		err = m.readLoop(ctx, t)

		m.detach()
		_ = t.Close()
		if ctx.Err() != nil {
			return
		}
		m.logger.Warn("conn.lost", "error", err)
		m.setStatus(protocol.StateDisconnected)

		if !m.wait(ctx, b.Next()) {
			return
		}
		m.setStatus(protocol.StateReconnecting)
	}
}

// readLoop delivers frames until the transport fails or ctx ends.
func (m *Manager) readLoop(ctx context.Context, t Transport) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = t.Close()
		case <-stop:
		}
	}()

	for {
		data, err := t.ReadMessage()
		if err != nil {
			return err
		}

		ev, err := protocol.Decode(data)
		if err != nil {
			m.logger.Warn("conn.frame.rejected", "error", err, "bytes", len(data))
			continue
		}
		if _, local := ev.(protocol.ConnectionStatus); local {
			m.logger.Warn("conn.frame.rejected", "error", "connection_status is local only")
			continue
		}
		m.deliver(ev)
	}
}

// wait sleeps for d unless ctx ends first.
func (m *Manager) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// =============================================================================
// STATE HELPERS
// =============================================================================

func (m *Manager) attach(t Transport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transport = t
}

func (m *Manager) detach() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transport = nil
}

// setStatus records and delivers a transition. Unchanged states are not
// transitions and are not reported.
func (m *Manager) setStatus(state protocol.ConnState) {
	m.mu.Lock()
	if m.status == state {
		m.mu.Unlock()
		return
	}
	prev := m.status
	m.status = state
	m.mu.Unlock()

	m.logger.Info("conn.status", "from", prev, "to", state)
	m.deliver(protocol.ConnectionStatus{State: state})
}

func (m *Manager) deliver(ev protocol.Event) {
	m.mu.Lock()
	handler := m.handler
	m.mu.Unlock()

	if handler != nil {
		handler(ev)
	}
}
