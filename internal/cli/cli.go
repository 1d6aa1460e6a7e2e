// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for scholar.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdSessions
	CmdAsk
	CmdUpload
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Command-specific
	Query      string
	File       string
	Subcommand string

	// Raw args remaining after the command name.
	Raw []string
}

const usageText = `scholar - terminal client for the Scholar research assistant

Chat with a research assistant that cites arXiv papers, ask questions
about your own PDFs, and keep the referenced papers in a local library.

Usage:
  scholar                      Start the TUI (default)
  scholar login                Sign in and store credentials
  scholar logout               Forget stored credentials
  scholar sessions [list]      List your research sessions
  scholar sessions delete <id> Delete a session
  scholar ask "question"       Ask one question, stream the answer to stdout
  scholar upload <file.pdf>    Upload a PDF for document chat, print its id
  scholar version              Show version information
  scholar help                 Show this help

Configuration lives in ~/.scholar/config.toml; the backend URL can also
be set with SCHOLAR_SERVER_URL.`

// Parse inspects os.Args and returns the command to run.
func Parse() (Command, Args) {
	args := os.Args[1:]
	var parsed Args

	if len(args) == 0 {
		return CmdTUI, parsed
	}

	cmd := strings.ToLower(args[0])
	remaining := args[1:]
	parsed.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsed

	case "login":
		return CmdLogin, parsed

	case "logout":
		return CmdLogout, parsed

	case "session", "sessions":
		if len(remaining) > 0 {
			parsed.Subcommand = remaining[0]
			parsed.Raw = remaining[1:]
		}
		return CmdSessions, parsed

	case "ask":
		parsed.Query = strings.Join(remaining, " ")
		return CmdAsk, parsed

	case "upload":
		if len(remaining) > 0 {
			parsed.File = remaining[0]
		}
		return CmdUpload, parsed

	case "version", "-v", "--version":
		return CmdVersion, parsed

	case "help", "-h", "--help":
		return CmdHelp, parsed

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		return CmdHelp, parsed
	}
}

// HandleVersion prints version information.
func HandleVersion() {
	fmt.Printf("scholar %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Println(usageText)
}
