// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"crypto/sha256"
	"encoding/hex"
)

// viewportSync skips viewport updates whose content has not changed. Every
// Update rebuilds the conversation text, but most messages leave it as is.
type viewportSync struct {
	lastHash    string
	updateCount uint64
	skipCount   uint64
}

func newViewportSync() *viewportSync {
	return &viewportSync{}
}

// ShouldUpdate reports whether content differs from the last accepted
// content and records it if so.
func (vs *viewportSync) ShouldUpdate(content string) bool {
	vs.updateCount++
	h := hashContent(content)
	if vs.updateCount > 1 && h == vs.lastHash {
		vs.skipCount++
		return false
	}
	vs.lastHash = h
	return true
}

// ForceUpdate makes the next ShouldUpdate return true.
func (vs *viewportSync) ForceUpdate() {
	vs.updateCount = 0
	vs.lastHash = ""
}

// Stats returns the number of update attempts and skips.
func (vs *viewportSync) Stats() (total, skipped uint64) {
	return vs.updateCount, vs.skipCount
}

func hashContent(content string) string {
	if content == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
