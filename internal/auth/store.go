// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth persists login credentials for the Scholar backend.
//
// Credentials live in a JSON file under the user's scholar directory. The
// store is loaded once at startup, updated on login and logout, and read
// by the API client at request time via the CredentialSource interface.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jeranaias/scholar-tui/internal/api"
	"github.com/jeranaias/scholar-tui/internal/util"
)

// ErrNotLoggedIn indicates no stored credentials exist.
var ErrNotLoggedIn = errors.New("not logged in")

// credentialsFile is the filename inside the scholar directory.
const credentialsFile = "credentials.json"

// Credentials is the persisted login state.
type Credentials struct {
	AccessToken string    `json:"access_token"`
	User        api.User  `json:"user"`
	SavedAt     time.Time `json:"saved_at"`
}

// Store holds credentials in memory, backed by a JSON file.
//
// Store implements api.CredentialSource, so it plugs directly into the
// API client.
type Store struct {
	mu    sync.RWMutex
	path  string
	creds *Credentials
}

// DefaultPath returns the standard credentials file location
// (~/.scholar/credentials.json).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".scholar", credentialsFile), nil
}

// NewStore creates a store backed by the given file and loads any existing
// credentials. A missing file is not an error; the store starts logged out.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads the credentials file if present.
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		// A corrupt file is treated as logged out rather than fatal.
		return nil
	}
	if creds.AccessToken == "" {
		return nil
	}
	s.creds = &creds
	return nil
}

// Save records a successful login and persists it.
func (s *Store) Save(token string, user api.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = &Credentials{
		AccessToken: token,
		User:        user,
		SavedAt:     time.Now(),
	}

	data, err := json.MarshalIndent(s.creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	if err := util.AtomicWriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// Clear logs out: drops in-memory credentials and removes the file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// Token implements api.CredentialSource. Returns "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return ""
	}
	return s.creds.AccessToken
}

// CurrentUser returns the logged-in user, or ErrNotLoggedIn.
func (s *Store) CurrentUser() (api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return api.User{}, ErrNotLoggedIn
	}
	return s.creds.User, nil
}

// IsAuthenticated reports whether credentials are present.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}
