// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func parseArgs(t *testing.T, args ...string) (Command, Args) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"scholar"}, args...)
	t.Cleanup(func() { os.Args = old })
	return Parse()
}

func TestParse_Default(t *testing.T) {
	cmd, _ := parseArgs(t)
	assert.Equal(t, CmdTUI, cmd)
}

func TestParse_Commands(t *testing.T) {
	tests := []struct {
		args []string
		want Command
	}{
		{[]string{"login"}, CmdLogin},
		{[]string{"logout"}, CmdLogout},
		{[]string{"sessions"}, CmdSessions},
		{[]string{"version"}, CmdVersion},
		{[]string{"--version"}, CmdVersion},
		{[]string{"help"}, CmdHelp},
		{[]string{"bogus"}, CmdHelp},
	}
	for _, tt := range tests {
		cmd, _ := parseArgs(t, tt.args...)
		assert.Equal(t, tt.want, cmd, "%v", tt.args)
	}
}

func TestParse_AskJoinsQuery(t *testing.T) {
	cmd, args := parseArgs(t, "ask", "what", "is", "attention?")
	assert.Equal(t, CmdAsk, cmd)
	assert.Equal(t, "what is attention?", args.Query)
}

func TestParse_SessionsSubcommand(t *testing.T) {
	cmd, args := parseArgs(t, "sessions", "delete", "42")
	assert.Equal(t, CmdSessions, cmd)
	assert.Equal(t, "delete", args.Subcommand)
	assert.Equal(t, []string{"42"}, args.Raw)
}

func TestParse_Upload(t *testing.T) {
	cmd, args := parseArgs(t, "upload", "paper.pdf")
	assert.Equal(t, CmdUpload, cmd)
	assert.Equal(t, "paper.pdf", args.File)
}
