// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package export renders a session transcript to portable formats.

A Transcript wraps the history entries fetched from the chat server
together with the session identity. Exporters turn it into Markdown,
JSON, or plain text; ForFormat maps a user-supplied format name to the
right exporter and WriteFile handles the save-to-disk path used by
"thatbot history --output".
*/
package export
