// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ada@example.com", req["email"])
		assert.Equal(t, "hunter2", req["password"])

		json.NewEncoder(w).Encode(LoginResult{
			AccessToken: "tok-abc",
			User:        User{ID: 7, Email: "ada@example.com"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	result, err := client.Login(context.Background(), "ada@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", result.AccessToken)
	assert.Equal(t, int64(7), result.User.ID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"detail": "incorrect email or password"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.Login(context.Background(), "ada@example.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "incorrect email or password", apiErr.Message)
}

func TestCreateSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/research/sessions", r.URL.Path)
		assert.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.EqualValues(t, 7, req["user_id"])
		assert.Equal(t, "Hello", req["title"])

		json.NewEncoder(w).Encode(Session{ID: 42, UserID: 7, Title: "Hello"})
	}))
	defer server.Close()

	client := NewClient(server.URL, StaticToken("tok-abc"))
	session, err := client.CreateSession(context.Background(), 7, "Hello")
	require.NoError(t, err)
	assert.Equal(t, int64(42), session.ID)
}

func TestListSessions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/research/sessions", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("user_id"))
		// The backend wraps the list in an envelope.
		json.NewEncoder(w).Encode(map[string]any{
			"sessions": []Session{
				{ID: 2, UserID: 7, Title: "Transformers"},
				{ID: 1, UserID: 7, Title: "Diffusion"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	sessions, err := client.ListSessions(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "Transformers", sessions[0].Title)
}

func TestSessionMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/research/sessions/42/messages", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"messages": []SessionMessage{
				{Role: "user", Content: "Hello"},
				{Role: "assistant", Content: "Hi there."},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	messages, err := client.SessionMessages(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "Hi there.", messages[1].Content)
}

func TestDeleteSession(t *testing.T) {
	var called atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/research/sessions/42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	require.NoError(t, client.DeleteSession(context.Background(), 42))
	assert.True(t, called.Load())
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"sessions": []Session{{ID: 1}}})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil).WithMaxRetries(3)
	sessions, err := client.ListSessions(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPostDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil).WithMaxRetries(3)
	_, err := client.CreateSession(context.Background(), 7, "Hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerError)
	assert.Equal(t, int32(1), calls.Load())
}

func TestUploadDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/upload", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "paper.pdf", header.Filename)

		content, _ := io.ReadAll(file)
		assert.Equal(t, "%PDF-1.4 fake", string(content))

		json.NewEncoder(w).Encode(UploadResult{PDFID: "pdf-xyz"})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	result, err := client.UploadDocument(context.Background(), "/tmp/papers/paper.pdf", strings.NewReader("%PDF-1.4 fake"))
	require.NoError(t, err)
	assert.Equal(t, "pdf-xyz", result.PDFID)
}

func TestDocumentHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/pdf-xyz/history", r.URL.Path)
		json.NewEncoder(w).Encode([]DocumentMessage{
			{Role: "user", Content: "What is the main claim?"},
			{Role: "assistant", Content: "The main claim is..."},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	history, err := client.DocumentHistory(context.Background(), "pdf-xyz")
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestDeleteDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/chat/pdf-xyz", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	require.NoError(t, client.DeleteDocument(context.Background(), "pdf-xyz"))
}

func TestAPIError_SentinelMapping(t *testing.T) {
	tests := []struct {
		status   int
		sentinel error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusInternalServerError, ErrServerError},
		{http.StatusBadGateway, ErrServerError},
	}

	for _, tt := range tests {
		err := parseAPIError(tt.status, []byte(`{"detail": "nope"}`))
		assert.ErrorIs(t, err, tt.sentinel, "status %d", tt.status)
	}

	// Unmapped statuses match nothing.
	err := parseAPIError(http.StatusBadRequest, nil)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrServerError)
}
