// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the full-screen chat view for rigrun-chat.

The Bubble Tea program loop is the single logical thread of the client.
Connection events are forwarded into it with Program.Send as ProtocolMsg
values and dispatched in Update, alongside key presses. History fetches,
session listing, comparisons and exports run as tea.Cmds; their results
re-enter the loop as messages.

# Layout

	+-----------+--------------------------------------+
	| sessions  | conversation viewport                |
	|  > a      |   [You] ...                          |
	|  * b      |   [Assistant] ...                    |
	+-----------+--------------------------------------+
	| status: connection, session, hints               |
	| > input                                          |
	+--------------------------------------------------+

# Keys

	enter    submit (or open the highlighted session when the input is empty)
	up/down  move the sidebar cursor
	pgup/dn  scroll the conversation
	ctrl+n   new chat
	ctrl+b   toggle sidebar
	ctrl+k   toggle compare mode
	space    select for comparison (compare mode)
	ctrl+r   run comparison
	esc      dismiss comparison / leave compare mode
	ctrl+e   export conversation
	ctrl+c   quit
*/
package chat
