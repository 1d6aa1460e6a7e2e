// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat drives a conversation against the Scholar backend: it owns
// the message store for one view and turns user input into streamed
// exchanges.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jeranaias/scholar-tui/internal/api"
	"github.com/jeranaias/scholar-tui/internal/model"
)

// ErrNoDocument indicates a document conversation was started before any
// document was uploaded.
var ErrNoDocument = errors.New("no document uploaded")

// Binding is the capability set a conversation runs against. General chat
// and document chat are the two implementations; the orchestrator itself
// does not know which one it drives.
type Binding interface {
	// Resolve obtains the server-side conversation identifier for a
	// conversation that does not have one yet. firstMessage is the user
	// text that triggered resolution.
	Resolve(ctx context.Context, firstMessage string) (string, error)

	// Stream sends user text to the bound conversation and returns the
	// streamed reply.
	Stream(ctx context.Context, conversationID, text string) (*api.TextStream, error)

	// History fetches the persisted messages of the bound conversation.
	History(ctx context.Context, conversationID string) ([]*model.Message, error)
}

// =============================================================================
// GENERAL CHAT BINDING
// =============================================================================

// GeneralBinding runs a conversation against the research-session
// endpoints. Sessions are created lazily on the first message, titled with
// that message.
type GeneralBinding struct {
	client *api.Client
	userID int64
}

// NewGeneralBinding creates a binding for the given user.
func NewGeneralBinding(client *api.Client, userID int64) *GeneralBinding {
	return &GeneralBinding{client: client, userID: userID}
}

// Resolve creates a session titled with the first message.
func (b *GeneralBinding) Resolve(ctx context.Context, firstMessage string) (string, error) {
	session, err := b.client.CreateSession(ctx, b.userID, firstMessage)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return strconv.FormatInt(session.ID, 10), nil
}

// Stream sends a query to the session.
func (b *GeneralBinding) Stream(ctx context.Context, conversationID, text string) (*api.TextStream, error) {
	sessionID, err := strconv.ParseInt(conversationID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", conversationID, err)
	}
	return b.client.ResearchChat(ctx, api.ResearchChatRequest{
		UserID:    b.userID,
		SessionID: sessionID,
		Query:     text,
	})
}

// History fetches the session's persisted messages.
func (b *GeneralBinding) History(ctx context.Context, conversationID string) ([]*model.Message, error) {
	sessionID, err := strconv.ParseInt(conversationID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", conversationID, err)
	}
	records, err := b.client.SessionMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	messages := make([]*model.Message, 0, len(records))
	for _, rec := range records {
		messages = append(messages, model.RestoredMessage(model.Role(rec.Role), rec.Content, rec.CreatedAt))
	}
	return messages, nil
}

// =============================================================================
// DOCUMENT CHAT BINDING
// =============================================================================

// DocumentBinding runs a conversation against an uploaded PDF. The
// document id comes from a completed upload; until one is set, sending is
// rejected.
type DocumentBinding struct {
	client *api.Client
	pdfID  string
}

// NewDocumentBinding creates a binding; pdfID may be empty until an upload
// completes.
func NewDocumentBinding(client *api.Client, pdfID string) *DocumentBinding {
	return &DocumentBinding{client: client, pdfID: pdfID}
}

// SetDocument records the id of a completed upload.
func (b *DocumentBinding) SetDocument(pdfID string) {
	b.pdfID = pdfID
}

// Resolve returns the uploaded document's id, or ErrNoDocument when no
// upload has completed.
func (b *DocumentBinding) Resolve(ctx context.Context, firstMessage string) (string, error) {
	if b.pdfID == "" {
		return "", ErrNoDocument
	}
	return b.pdfID, nil
}

// Stream asks a question about the document.
func (b *DocumentBinding) Stream(ctx context.Context, conversationID, text string) (*api.TextStream, error) {
	return b.client.DocumentChat(ctx, conversationID, text)
}

// History fetches the document's question/answer history.
func (b *DocumentBinding) History(ctx context.Context, conversationID string) ([]*model.Message, error) {
	records, err := b.client.DocumentHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	messages := make([]*model.Message, 0, len(records))
	for _, rec := range records {
		messages = append(messages, model.RestoredMessage(model.Role(rec.Role), rec.Content, time.Time{}))
	}
	return messages, nil
}
