// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationBinding(t *testing.T) {
	conv := NewConversation()
	assert.True(t, conv.IsNew())
	assert.Empty(t, conv.ID())

	conv.Bind("42")
	assert.False(t, conv.IsNew())
	assert.Equal(t, "42", conv.ID())

	// Rebinding is ignored; ACTIVE never goes back to NEW or to another id.
	conv.Bind("99")
	assert.Equal(t, "42", conv.ID())
}

func TestConversationWithID(t *testing.T) {
	conv := NewConversationWithID("7")
	assert.False(t, conv.IsNew())
	assert.Equal(t, "7", conv.ID())
}

func TestConversationOrdering(t *testing.T) {
	conv := NewConversation()
	userID := conv.AddUserMessage("question")
	placeholderID := conv.AddAssistantPlaceholder()

	msgs := conv.Snapshot()
	require.Len(t, msgs, 2)
	assert.Equal(t, userID, msgs[0].ID)
	assert.Equal(t, placeholderID, msgs[1].ID)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
}

func TestConversationStreamLifecycle(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("question")
	id := conv.AddAssistantPlaceholder()

	conv.AppendFragment(id, "Hel")
	conv.AppendFragment(id, "lo")

	// Mid-stream snapshots expose streamed-so-far content.
	msg := conv.MessageByID(id)
	require.NotNil(t, msg)
	assert.True(t, msg.IsStreaming)
	assert.Equal(t, "Hello", msg.Content)

	conv.Finalize(id)
	msg = conv.MessageByID(id)
	assert.False(t, msg.IsStreaming)
	assert.Equal(t, "Hello", msg.Content)
}

func TestConversationFail(t *testing.T) {
	conv := NewConversation()
	id := conv.AddAssistantPlaceholder()
	conv.AppendFragment(id, "partial")
	conv.Fail(id, "notice")

	msg := conv.MessageByID(id)
	assert.Equal(t, "notice", msg.Content)
	assert.False(t, msg.IsStreaming)
}

func TestConversationUpdatesTouchOneMessage(t *testing.T) {
	conv := NewConversation()
	first := conv.AddAssistantPlaceholder()
	second := conv.AddAssistantPlaceholder()

	conv.AppendFragment(first, "one")
	conv.AppendFragment(second, "two")
	conv.Finalize(first)

	assert.Equal(t, "one", conv.MessageByID(first).Content)
	got := conv.MessageByID(second)
	assert.True(t, got.IsStreaming)
	assert.Equal(t, "two", got.Content)
}

func TestConversationUnknownIDIsNoOp(t *testing.T) {
	conv := NewConversation()
	conv.AppendFragment("missing", "x")
	conv.Finalize("missing")
	conv.Fail("missing", "notice")
	assert.Nil(t, conv.MessageByID("missing"))
	assert.Equal(t, 0, conv.MessageCount())
}

func TestSnapshotIsolation(t *testing.T) {
	conv := NewConversation()
	id := conv.AddAssistantPlaceholder()
	conv.AppendFragment(id, "before")

	snap := conv.Snapshot()
	conv.AppendFragment(id, " after")

	// The earlier snapshot does not see later mutations.
	assert.Equal(t, "before", snap[0].Content)
	assert.Equal(t, "before after", conv.MessageByID(id).Content)
}

func TestConversationReplace(t *testing.T) {
	conv := NewConversationWithID("42")
	conv.AddUserMessage("stale")

	conv.Replace([]*Message{
		RestoredMessage(RoleUser, "restored question", time.Now()),
		RestoredMessage(RoleAssistant, "restored answer", time.Now()),
	})

	msgs := conv.Snapshot()
	require.Len(t, msgs, 2)
	assert.Equal(t, "restored question", msgs[0].Content)
	assert.Equal(t, "42", conv.ID(), "replace keeps the binding")
}

func TestConversationTitle(t *testing.T) {
	conv := NewConversation()
	assert.Equal(t, "New Conversation", conv.Title())

	conv.SetTitle("first question")
	assert.Equal(t, "first question", conv.Title())

	conv.SetTitle("second question")
	assert.Equal(t, "first question", conv.Title(), "title set once")
}

func TestConversationConcurrentAccess(t *testing.T) {
	conv := NewConversation()
	id := conv.AddAssistantPlaceholder()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			conv.AppendFragment(id, fmt.Sprintf("%d ", i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = conv.Snapshot()
		}
	}()
	wg.Wait()

	conv.Finalize(id)
	assert.NotEmpty(t, conv.MessageByID(id).Content)
}
