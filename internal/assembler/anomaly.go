// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assembler

// AnomalyKind classifies a recoverable protocol anomaly.
type AnomalyKind string

const (
	// AnomalyDuplicateOpen: block_open for an index that already exists.
	// The existing block is kept.
	AnomalyDuplicateOpen AnomalyKind = "duplicate_open"

	// AnomalyUnknownDelta: block_delta for an index never opened. A text
	// block is created on demand.
	AnomalyUnknownDelta AnomalyKind = "unknown_delta"

	// AnomalyLateDelta: block_delta after the block was closed. Ignored.
	AnomalyLateDelta AnomalyKind = "late_delta"

	// AnomalyUnknownClose: block_close for an index never opened. Ignored.
	AnomalyUnknownClose AnomalyKind = "unknown_close"

	// AnomalyUnclosedAtDone: message_done while blocks were still open.
	// They are force-closed with their accumulated text.
	AnomalyUnclosedAtDone AnomalyKind = "unclosed_at_done"

	// AnomalyStrayEvent: an event for an abandoned turn or another session.
	// Dropped.
	AnomalyStrayEvent AnomalyKind = "stray_event"
)
