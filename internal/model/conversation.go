// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sync"
	"time"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the ordered message store backing one chat view.
//
// It is owned by exactly one orchestrator for the lifetime of one view and
// is discarded and rebuilt when the user switches to a different session or
// document. Insertion order equals conversation order: a user message is
// immediately followed by its paired assistant placeholder.
//
// The orchestrator mutates the store from a streaming goroutine while the
// UI renders snapshots, so all operations are mutex-guarded.
type Conversation struct {
	mu sync.Mutex

	// id is the server-assigned session or document identifier. Empty
	// until resolved ("new" conversation); once set it never changes.
	id string

	title     string
	createdAt time.Time
	messages  []*Message
}

// NewConversation creates an empty, unresolved conversation.
func NewConversation() *Conversation {
	return &Conversation{createdAt: time.Now()}
}

// NewConversationWithID creates a conversation already bound to a
// server-assigned identifier (e.g. when opening an existing session).
func NewConversationWithID(id string) *Conversation {
	return &Conversation{id: id, createdAt: time.Now()}
}

// =============================================================================
// IDENTIFIER BINDING
// =============================================================================

// ID returns the bound conversation identifier, or "" when unresolved.
func (c *Conversation) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// IsNew reports whether the conversation has no server-assigned id yet.
func (c *Conversation) IsNew() bool {
	return c.ID() == ""
}

// Bind records the server-assigned identifier. Binding is permanent: once
// a conversation is ACTIVE it never transitions back to NEW, and rebinding
// to a different id is ignored.
func (c *Conversation) Bind(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.id == "" {
		c.id = id
	}
}

// SetTitle sets the conversation title (first user message, typically).
func (c *Conversation) SetTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.title == "" {
		c.title = title
	}
}

// Title returns the conversation title or a default.
func (c *Conversation) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.title != "" {
		return c.title
	}
	return "New Conversation"
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddUserMessage creates and appends a user message, returning its id.
func (c *Conversation) AddUserMessage(content string) string {
	msg := NewUserMessage(content)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	return msg.ID
}

// AddAssistantPlaceholder appends an empty streaming assistant message and
// returns its id.
func (c *Conversation) AddAssistantPlaceholder() string {
	msg := NewAssistantPlaceholder()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	return msg.ID
}

// AppendFragment appends a text fragment to the message with the given id.
// Updates touch exactly one message, so repeated rapid updates are safe.
func (c *Conversation) AppendFragment(id, fragment string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg := c.byID(id); msg != nil {
		msg.AppendFragment(fragment)
	}
}

// Finalize freezes the streamed content of the message with the given id.
func (c *Conversation) Finalize(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg := c.byID(id); msg != nil {
		msg.FinalizeStream()
	}
}

// Fail replaces the content of the message with the given id with a
// failure notice and ends its streaming state.
func (c *Conversation) Fail(id, notice string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg := c.byID(id); msg != nil {
		msg.FailStream(notice)
	}
}

// AttachPapers attaches extracted references to a finalized message.
func (c *Conversation) AttachPapers(id string, refs []PaperReference) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg := c.byID(id); msg != nil {
		msg.AttachPapers(refs)
	}
}

// Replace swaps the entire message sequence, e.g. with loaded history.
func (c *Conversation) Replace(msgs []*Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = msgs
}

// =============================================================================
// ACCESS
// =============================================================================

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// MessageByID returns a copy of the message with the given id, or nil.
func (c *Conversation) MessageByID(id string) *Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg := c.byID(id); msg != nil {
		return msg.snapshot()
	}
	return nil
}

// Snapshot returns copies of all messages in conversation order. The
// copies are safe to read while streaming continues.
func (c *Conversation) Snapshot() []*Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Message, len(c.messages))
	for i, msg := range c.messages {
		out[i] = msg.snapshot()
	}
	return out
}

// byID finds a live message by id. Caller must hold the lock.
func (c *Conversation) byID(id string) *Message {
	for _, msg := range c.messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// snapshot returns a read-only copy with the streamed-so-far content
// materialized into Content.
func (m *Message) snapshot() *Message {
	out := &Message{
		ID:          m.ID,
		Role:        m.Role,
		Content:     m.DisplayContent(),
		Timestamp:   m.Timestamp,
		IsStreaming: m.IsStreaming,
	}
	if m.Papers != nil {
		out.Papers = append([]PaperReference(nil), m.Papers...)
	}
	return out
}
