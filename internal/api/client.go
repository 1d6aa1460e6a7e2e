// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the Scholar research-assistant backend.
//
// It covers the session, chat, document, and user endpoints, plus a
// pull-based decoder for the streamed chat responses. All credentials are
// injected through a CredentialSource; the package holds no global state.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Configuration constants for the backend client.
const (
	// DefaultBaseURL is the backend the client talks to unless configured
	// otherwise.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout is the default timeout for non-streaming requests.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for
	// idempotent requests.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize caps non-streaming response bodies.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	userAgent = "scholar/0.1.0"
)

var (
	// Shared HTTP client with connection pooling for all request/response
	// calls.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		Timeout: DefaultTimeout,
	}

	// sharedStreamingClient is used for streamed chat responses. No client
	// timeout; lifetime is controlled via the request context.
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
)

// =============================================================================
// CREDENTIALS
// =============================================================================

// CredentialSource supplies the bearer token for outgoing requests. An empty
// token degrades the request to an unauthenticated call rather than failing.
type CredentialSource interface {
	Token() string
}

// StaticToken is a fixed-token CredentialSource, useful in tests and
// one-shot CLI calls.
type StaticToken string

// Token implements CredentialSource.
func (t StaticToken) Token() string { return string(t) }

// =============================================================================
// WIRE TYPES
// =============================================================================

// User is the backend's account record.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// LoginResult is the response to a successful login or signup.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	User        User   `json:"user"`
}

// Session is a general-chat research session.
type Session struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionMessage is one persisted message of a session's history.
type SessionMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// UploadResult is the response to a document upload.
type UploadResult struct {
	PDFID    string `json:"pdf_id"`
	Filename string `json:"filename,omitempty"`
}

// DocumentMessage is one entry of a document's question/answer history.
type DocumentMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client communicates with the Scholar backend.
type Client struct {
	baseURL    string
	creds      CredentialSource
	limiter    *rate.Limiter
	maxRetries int
	timeout    time.Duration
}

// NewClient creates a client for the given base URL. creds may be nil, in
// which case every request goes out unauthenticated.
func NewClient(baseURL string, creds CredentialSource) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		creds:      creds,
		limiter:    rate.NewLimiter(rate.Limit(10), 20),
		maxRetries: DefaultMaxRetries,
		timeout:    DefaultTimeout,
	}
}

// WithTimeout sets the per-request timeout for non-streaming calls.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	return c
}

// WithMaxRetries sets the maximum number of retry attempts.
func (c *Client) WithMaxRetries(maxRetries int) *Client {
	c.maxRetries = maxRetries
	return c
}

// WithRateLimit overrides the client-side request throttle.
func (c *Client) WithRateLimit(rps float64, burst int) *Client {
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// setHeaders sets the common headers. The Authorization header is only set
// when a token is available.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.creds != nil {
		if token := c.creds.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

// calculateBackoff returns the delay to wait before the next retry.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	// Exponential backoff: 500ms, 1000ms, 2000ms, etc.
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// readResponse reads a response body with a size cap.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// doJSON performs a request with a JSON body (or none) and decodes the JSON
// response into out (when out is non-nil). GET requests are retried with
// exponential backoff on 5xx and transport errors; mutating requests are
// never retried.
func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var payload []byte
	if reqBody != nil {
		var err error
		payload, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	attempts := 1
	if method == http.MethodGet && c.maxRetries > 1 {
		attempts = c.maxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.calculateBackoff(attempt - 1)):
			}
		}

		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.doOnce(reqCtx, method, path, payload, out)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		// Only transport failures and 5xx responses are worth retrying.
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status < 500 {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	if attempts > 1 {
		return fmt.Errorf("max retries exceeded: %w", lastErr)
	}
	return lastErr
}

// doOnce performs a single request attempt.
func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, body)
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// =============================================================================
// USER ENDPOINTS
// =============================================================================

// Login authenticates against the backend and returns the token and user.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var result LoginResult
	req := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/users/login", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Signup registers a new account and returns the token and user.
func (c *Client) Signup(ctx context.Context, name, email, password string) (*LoginResult, error) {
	var result LoginResult
	req := map[string]string{"name": name, "email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/users/signup", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// =============================================================================
// SESSION ENDPOINTS
// =============================================================================

// CreateSession creates a research session for the user and returns it. The
// title is typically the first user message of the conversation.
func (c *Client) CreateSession(ctx context.Context, userID int64, title string) (*Session, error) {
	var session Session
	req := map[string]any{"user_id": userID, "title": title}
	if err := c.doJSON(ctx, http.MethodPost, "/research/sessions", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListSessions returns the user's research sessions, newest first.
func (c *Client) ListSessions(ctx context.Context, userID int64) ([]Session, error) {
	var envelope struct {
		Sessions []Session `json:"sessions"`
	}
	path := fmt.Sprintf("/research/sessions?user_id=%d", userID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Sessions, nil
}

// DeleteSession removes a session and its messages.
func (c *Client) DeleteSession(ctx context.Context, sessionID int64) error {
	path := fmt.Sprintf("/research/sessions/%d", sessionID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// SessionMessages returns the persisted history of a session in
// conversation order.
func (c *Client) SessionMessages(ctx context.Context, sessionID int64) ([]SessionMessage, error) {
	var envelope struct {
		Messages []SessionMessage `json:"messages"`
	}
	path := fmt.Sprintf("/research/sessions/%d/messages", sessionID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Messages, nil
}

// =============================================================================
// DOCUMENT ENDPOINTS
// =============================================================================

// UploadDocument registers a PDF with the backend and returns its document
// id. Subsequent document-chat calls require that id.
func (c *Client) UploadDocument(ctx context.Context, filename string, content io.Reader) (*UploadResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	// Uploads can be large; use the streaming client and rely on the
	// caller's context for cancellation.
	resp, err := sharedStreamingClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseAPIError(resp.StatusCode, body)
	}

	var result UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

// DocumentHistory returns the question/answer history for a document.
func (c *Client) DocumentHistory(ctx context.Context, pdfID string) ([]DocumentMessage, error) {
	var messages []DocumentMessage
	path := "/chat/" + pdfID + "/history"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// DeleteDocument removes a document and its history.
func (c *Client) DeleteDocument(ctx context.Context, pdfID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/chat/"+pdfID, nil, nil)
}
