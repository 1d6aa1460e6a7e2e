// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages,
// and extracted paper references.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// PAPER REFERENCE TYPE
// =============================================================================

// PaperReference is a citation-like record derived from assistant text by
// pattern matching. It is best-effort metadata, not validated against any
// catalog.
type PaperReference struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	PDFURL   string `json:"pdf_url"`
	Abstract string `json:"abstract"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
//
// Assistant messages are created empty ("placeholders") and populated
// incrementally while a response streams in. Content grows append-only
// until FinalizeStream freezes it. ID, Role, and Timestamp never change
// after creation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Papers holds references extracted from the final content of an
	// assistant message. Attached at most once, after streaming ends,
	// and only when extraction yielded at least one result.
	Papers []PaperReference `json:"papers,omitempty"`

	// Streaming state (not persisted).
	// strings.Builder avoids quadratic allocations during streaming.
	IsStreaming   bool            `json:"-"`
	streamContent strings.Builder `json:"-"`
}

// NewUserMessage creates a user message with a generated ID.
func NewUserMessage(content string) *Message {
	return &Message{
		ID:        generateMessageID(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantPlaceholder creates an empty assistant message that is ready
// to receive streamed fragments.
func NewAssistantPlaceholder() *Message {
	return &Message{
		ID:          generateMessageID(),
		Role:        RoleAssistant,
		Timestamp:   time.Now(),
		IsStreaming: true,
	}
}

// RestoredMessage rebuilds a message from persisted history. The server
// does not return client message IDs, so a fresh one is generated.
func RestoredMessage(role Role, content string, at time.Time) *Message {
	if at.IsZero() {
		at = time.Now()
	}
	return &Message{
		ID:        generateMessageID(),
		Role:      role,
		Content:   content,
		Timestamp: at,
	}
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// AppendFragment appends a decoded text fragment to a streaming message.
// Fragments must be applied in arrival order; the final content is their
// in-order concatenation.
func (m *Message) AppendFragment(fragment string) {
	if m.IsStreaming {
		m.streamContent.WriteString(fragment)
	}
}

// FinalizeStream freezes the streamed content. After finalization the
// message content never changes again.
func (m *Message) FinalizeStream() {
	if !m.IsStreaming {
		return
	}
	m.Content = m.streamContent.String()
	m.streamContent.Reset()
	m.IsStreaming = false
}

// FailStream replaces whatever content accumulated with a notice and ends
// streaming. Used when the network call behind the message failed.
func (m *Message) FailStream(notice string) {
	m.streamContent.Reset()
	m.Content = notice
	m.IsStreaming = false
}

// DisplayContent returns the content to render (streamed-so-far or final).
func (m *Message) DisplayContent() string {
	if m.IsStreaming {
		return m.streamContent.String()
	}
	return m.Content
}

// AttachPapers records extracted paper references on a finalized assistant
// message. Attaching an empty list is a no-op, as is attaching twice.
func (m *Message) AttachPapers(refs []PaperReference) {
	if m.Role != RoleAssistant || m.IsStreaming {
		return
	}
	if len(refs) == 0 || m.Papers != nil {
		return
	}
	m.Papers = refs
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0 && m.streamContent.Len() == 0
}

// Preview returns a truncated single-line preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	content := strings.ReplaceAll(m.DisplayContent(), "\n", " ")
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateMessageID creates a unique message ID. IDs are generated
// client-side and stable for the message's lifetime.
func generateMessageID() string {
	return "msg_" + uuid.NewString()
}
