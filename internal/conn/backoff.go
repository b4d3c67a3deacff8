// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conn

import (
	"time"

	"github.com/jeranaias/rigrun-chat/internal/config"
)

// Config holds connection tunables.
type Config struct {
	URL string

	// Reconnect backoff: the first retry waits InitialDelay, each further
	// retry multiplies the wait by Multiplier up to MaxDelay. A successful
	// connect resets it.
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// MinDialInterval is the minimum spacing between dial attempts, even
	// when a connection is accepted and dropped at once.
	MinDialInterval time.Duration
}

// DefaultConfig returns the default connection configuration.
func DefaultConfig() Config {
	return Config{
		URL:             "ws://localhost:8000/ws/chat",
		InitialDelay:    500 * time.Millisecond,
		MaxDelay:        15 * time.Second,
		Multiplier:      2,
		MinDialInterval: 250 * time.Millisecond,
	}
}

// ConfigFrom builds a connection Config from the application config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		URL:             cfg.Server.URL,
		InitialDelay:    time.Duration(cfg.Reconnect.InitialDelayMs) * time.Millisecond,
		MaxDelay:        time.Duration(cfg.Reconnect.MaxDelayMs) * time.Millisecond,
		Multiplier:      cfg.Reconnect.Multiplier,
		MinDialInterval: time.Duration(cfg.Reconnect.MinDialIntervalMs) * time.Millisecond,
	}
}

// backoff computes successive reconnect delays.
type backoff struct {
	initial    time.Duration
	max        time.Duration
	multiplier float64
	current    time.Duration
}

func newBackoff(cfg Config) *backoff {
	b := &backoff{
		initial:    cfg.InitialDelay,
		max:        cfg.MaxDelay,
		multiplier: cfg.Multiplier,
	}
	if b.multiplier < 1 {
		b.multiplier = 1
	}
	if b.max < b.initial {
		b.max = b.initial
	}
	b.Reset()
	return b
}

// Next returns the delay to wait now and advances the sequence.
func (b *backoff) Next() time.Duration {
	d := b.current
	next := time.Duration(float64(b.current) * b.multiplier)
	if next > b.max || next < b.current {
		next = b.max
	}
	b.current = next
	return d
}

// Reset restarts the sequence at the initial delay.
func (b *backoff) Reset() {
	b.current = b.initial
}
