// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error variables for common backend failures.
var (
	// ErrUnauthorized indicates the request lacked valid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrServerError indicates a 5xx response from the backend.
	ErrServerError = errors.New("server error")
)

// APIError represents an error response from the Scholar backend.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error (HTTP %d)", e.Status)
}

// Is maps status codes onto the sentinel errors so callers can use errors.Is
// without caring whether the backend sent a parseable detail message.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrRateLimited:
		return e.Status == http.StatusTooManyRequests
	case ErrServerError:
		return e.Status >= 500
	}
	return false
}

// detailResponse is the backend's error envelope ({"detail": "..."}).
type detailResponse struct {
	Detail string `json:"detail"`
}

// parseAPIError converts a non-2xx response body into an *APIError.
func parseAPIError(status int, body []byte) error {
	var detail detailResponse
	if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != "" {
		return &APIError{Status: status, Message: detail.Detail}
	}
	return &APIError{Status: status, Message: string(body)}
}
