// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the rigrun-chat TUI.

All colors use Lip Gloss AdaptiveColor, so the same palette works on light
and dark terminals. NewTheme detects the background with termenv unless a
mode is forced from configuration.

# Colors (colors.go)

  - Purple - assistant messages and selections
  - Cyan - user messages and the sidebar cursor
  - Emerald / Amber / Rose - connected / reconnecting / disconnected

# Theme (theme.go)

	theme := styles.NewTheme("auto")
	theme.StatusFor(protocol.StateConnected).Render("connected")

# Spinners (spinner.go)

LineSpinner and DotsSpinner plug directly into bubbles/spinner.
*/
package styles
