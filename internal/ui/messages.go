// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/jeranaias/scholar-tui/internal/api"
	"github.com/jeranaias/scholar-tui/internal/kb"
)

// loginDoneMsg reports the outcome of a login attempt.
type loginDoneMsg struct {
	result *api.LoginResult
	err    error
}

// sessionsLoadedMsg carries the user's session list.
type sessionsLoadedMsg struct {
	sessions []api.Session
	err      error
}

// sessionDeletedMsg reports a session delete.
type sessionDeletedMsg struct {
	sessionID int64
	err       error
}

// conversationChangedMsg signals that the message store mutated and the
// chat view should redraw. Sent from the streaming goroutine.
type conversationChangedMsg struct{}

// conversationBoundMsg signals that the conversation acquired its
// server-side identifier.
type conversationBoundMsg struct {
	id string
}

// exchangeDoneMsg reports that a Send finished (successfully or not).
type exchangeDoneMsg struct {
	err error
}

// historyLoadedMsg reports that LoadHistory finished.
type historyLoadedMsg struct {
	err error
}

// uploadDoneMsg reports the outcome of a document upload.
type uploadDoneMsg struct {
	pdfID    string
	filename string
	err      error
}

// papersSavedMsg reports how many papers were added to the library.
type papersSavedMsg struct {
	saved int
	err   error
}

// libraryLoadedMsg carries the saved-paper gallery contents.
type libraryLoadedMsg struct {
	entries []kb.Entry
	err     error
}
