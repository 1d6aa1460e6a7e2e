// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("hello")
	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, "hello", msg.Content)
	assert.False(t, msg.IsStreaming)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestMessageIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		msg := NewUserMessage("x")
		assert.False(t, seen[msg.ID], "duplicate id %s", msg.ID)
		seen[msg.ID] = true
	}
}

func TestAssistantPlaceholderStreaming(t *testing.T) {
	msg := NewAssistantPlaceholder()
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.True(t, msg.IsStreaming)
	assert.True(t, msg.IsEmpty())

	msg.AppendFragment("Hel")
	msg.AppendFragment("lo")
	assert.Equal(t, "Hello", msg.DisplayContent())
	assert.Empty(t, msg.Content, "content frozen only at finalize")

	msg.FinalizeStream()
	assert.False(t, msg.IsStreaming)
	assert.Equal(t, "Hello", msg.Content)
	assert.Equal(t, "Hello", msg.DisplayContent())

	// Appends after finalize are ignored.
	msg.AppendFragment("more")
	assert.Equal(t, "Hello", msg.DisplayContent())
}

func TestFinalizeIsIdempotent(t *testing.T) {
	msg := NewAssistantPlaceholder()
	msg.AppendFragment("done")
	msg.FinalizeStream()
	msg.FinalizeStream()
	assert.Equal(t, "done", msg.Content)
}

func TestFailStreamDiscardsPartialContent(t *testing.T) {
	msg := NewAssistantPlaceholder()
	msg.AppendFragment("partial answ")
	msg.FailStream("something went wrong")

	assert.False(t, msg.IsStreaming)
	assert.Equal(t, "something went wrong", msg.Content)
	assert.Equal(t, "something went wrong", msg.DisplayContent())
}

func TestAttachPapers(t *testing.T) {
	refs := []PaperReference{{Title: "arXiv:1706.03762"}}

	t.Run("only finalized assistant messages", func(t *testing.T) {
		streaming := NewAssistantPlaceholder()
		streaming.AttachPapers(refs)
		assert.Nil(t, streaming.Papers)

		user := NewUserMessage("x")
		user.AttachPapers(refs)
		assert.Nil(t, user.Papers)
	})

	t.Run("attaches once", func(t *testing.T) {
		msg := NewAssistantPlaceholder()
		msg.AppendFragment("text")
		msg.FinalizeStream()

		msg.AttachPapers(refs)
		require.Len(t, msg.Papers, 1)

		msg.AttachPapers([]PaperReference{{Title: "other"}})
		assert.Equal(t, "arXiv:1706.03762", msg.Papers[0].Title)
	})

	t.Run("empty list is a no-op", func(t *testing.T) {
		msg := NewAssistantPlaceholder()
		msg.FinalizeStream()
		msg.AttachPapers(nil)
		assert.Nil(t, msg.Papers)
	})
}

func TestRestoredMessage(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := RestoredMessage(RoleAssistant, "hi", at)
	assert.Equal(t, at, msg.Timestamp)
	assert.Equal(t, "hi", msg.Content)
	assert.False(t, msg.IsStreaming)

	// Zero timestamps get filled in.
	msg = RestoredMessage(RoleUser, "x", time.Time{})
	assert.False(t, msg.Timestamp.IsZero())
}

func TestPreview(t *testing.T) {
	msg := NewUserMessage("line one\nline two")
	assert.Equal(t, "line one line two", msg.Preview(50))
	assert.Equal(t, "line ...", msg.Preview(8))

	short := NewUserMessage("hi")
	assert.Equal(t, "hi", short.Preview(8))
}

func TestRoleDisplayName(t *testing.T) {
	assert.Equal(t, "You", RoleUser.DisplayName())
	assert.Equal(t, "Assistant", RoleAssistant.DisplayName())
	assert.Equal(t, "system", Role("system").DisplayName())
}
