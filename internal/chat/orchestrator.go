// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/scholar-tui/internal/model"
	"github.com/jeranaias/scholar-tui/internal/papers"
)

// streamFailureNotice replaces the assistant placeholder when the exchange
// fails. The user message stays in place; there is no automatic retry.
const streamFailureNotice = "Sorry, there was an error processing your request. Please try again."

// ErrEmptyMessage indicates Send was called with blank input.
var ErrEmptyMessage = errors.New("empty message")

// Orchestrator runs one conversation view: it owns a message store, a
// binding, and the send loop that ties them together. All observable side
// effects of Send land in the store; callbacks only signal that something
// changed.
//
// Send is a blocking call meant to run in its own goroutine (the TUI wraps
// it in a tea.Cmd). Concurrent Sends each get their own placeholder and
// stream independently.
type Orchestrator struct {
	conv    *model.Conversation
	binding Binding

	// onBound fires once, as soon as the conversation acquires its
	// server-side identifier, before the first exchange completes.
	onBound func(id string)

	// onChange fires after every store mutation so the view can redraw.
	onChange func()
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithOnBound sets the identifier-binding callback.
func WithOnBound(fn func(id string)) Option {
	return func(o *Orchestrator) { o.onBound = fn }
}

// WithOnChange sets the store-change callback.
func WithOnChange(fn func()) Option {
	return func(o *Orchestrator) { o.onChange = fn }
}

// NewOrchestrator creates an orchestrator over the given store and binding.
func NewOrchestrator(conv *model.Conversation, binding Binding, opts ...Option) *Orchestrator {
	o := &Orchestrator{conv: conv, binding: binding}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Conversation returns the message store the orchestrator mutates.
func (o *Orchestrator) Conversation() *model.Conversation {
	return o.conv
}

// notifyChange invokes the change callback if set.
func (o *Orchestrator) notifyChange() {
	if o.onChange != nil {
		o.onChange()
	}
}

// Send runs one full exchange: resolve the conversation if needed, record
// the user message, stream the reply into an assistant placeholder, then
// finalize and extract paper references.
//
// Blank input is rejected before anything is recorded. If resolution fails
// the store is left untouched. After the user message is recorded, any
// failure converts the placeholder into a fixed notice instead of
// returning partial content.
func (o *Orchestrator) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	if o.conv.IsNew() {
		id, err := o.binding.Resolve(ctx, text)
		if err != nil {
			return fmt.Errorf("failed to resolve conversation: %w", err)
		}
		o.conv.Bind(id)
		o.conv.SetTitle(text)
		if o.onBound != nil {
			o.onBound(id)
		}
	}

	o.conv.AddUserMessage(text)
	placeholderID := o.conv.AddAssistantPlaceholder()
	o.notifyChange()

	stream, err := o.binding.Stream(ctx, o.conv.ID(), text)
	if err != nil {
		o.conv.Fail(placeholderID, streamFailureNotice)
		o.notifyChange()
		return fmt.Errorf("failed to start stream: %w", err)
	}
	defer stream.Close()

	for {
		fragment, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			o.conv.Fail(placeholderID, streamFailureNotice)
			o.notifyChange()
			return fmt.Errorf("stream failed: %w", err)
		}
		o.conv.AppendFragment(placeholderID, fragment)
		o.notifyChange()
	}

	// An empty body finalizes to an empty message; that is completion,
	// not an error.
	o.conv.Finalize(placeholderID)
	if msg := o.conv.MessageByID(placeholderID); msg != nil {
		if refs := papers.Extract(msg.Content); len(refs) > 0 {
			o.conv.AttachPapers(placeholderID, refs)
		}
	}
	o.notifyChange()
	return nil
}

// LoadHistory fetches the bound conversation's persisted messages and
// replaces the store contents with them. Calling it on an unresolved
// conversation is a no-op.
func (o *Orchestrator) LoadHistory(ctx context.Context) error {
	if o.conv.IsNew() {
		return nil
	}

	messages, err := o.binding.History(ctx, o.conv.ID())
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	// Re-run extraction so restored assistant replies keep their paper
	// references.
	for _, msg := range messages {
		if msg.Role == model.RoleAssistant {
			if refs := papers.Extract(msg.Content); len(refs) > 0 {
				msg.AttachPapers(refs)
			}
		}
	}

	o.conv.Replace(messages)
	o.notifyChange()
	return nil
}
