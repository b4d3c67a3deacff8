// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package compare runs the side-by-side analysis of two finished sessions.
//
// A comparison is one non-streaming request. Only one may be pending: a
// new Compare supersedes the previous one, cancelling its request, and
// only the newest call may publish into the store's comparison slot.
package compare
