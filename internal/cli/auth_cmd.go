// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - login/logout command handlers.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/jeranaias/scholar-tui/internal/api"
	"github.com/jeranaias/scholar-tui/internal/auth"
)

// HandleLogin prompts for credentials, authenticates, and stores the
// resulting token. Returns a process exit code.
func HandleLogin(client *api.Client, store *auth.Store) int {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read email: %v\n", err)
		return 1
	}
	email = strings.TrimSpace(email)

	fmt.Print("password: ")
	password, err := readPassword(reader)
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read password: %v\n", err)
		return 1
	}

	result, err := client.Login(context.Background(), email, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		return 1
	}

	if err := store.Save(result.AccessToken, result.User); err != nil {
		fmt.Fprintf(os.Stderr, "failed to store credentials: %v\n", err)
		return 1
	}

	fmt.Printf("logged in as %s\n", result.User.Email)
	return 0
}

// readPassword reads without echo when stdin is a terminal, and falls back
// to a plain line read when it is not (pipes, tests).
func readPassword(reader *bufio.Reader) (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// HandleLogout clears stored credentials.
func HandleLogout(store *auth.Store) int {
	if !store.IsAuthenticated() {
		fmt.Println("not logged in")
		return 0
	}
	if err := store.Clear(); err != nil {
		fmt.Fprintf(os.Stderr, "logout failed: %v\n", err)
		return 1
	}
	fmt.Println("logged out")
	return 0
}
