// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions_cmd.go - session list/delete command handlers.
package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/jeranaias/scholar-tui/internal/api"
	"github.com/jeranaias/scholar-tui/internal/auth"
	"github.com/jeranaias/scholar-tui/internal/util"
)

// HandleSessions dispatches the sessions subcommands.
func HandleSessions(client *api.Client, store *auth.Store, args Args) int {
	user, err := store.CurrentUser()
	if err != nil {
		fmt.Fprintln(os.Stderr, "not logged in; run `scholar login` first")
		return 1
	}

	switch args.Subcommand {
	case "", "list":
		return listSessions(client, user.ID)

	case "delete", "rm":
		if len(args.Raw) == 0 {
			fmt.Fprintln(os.Stderr, "usage: scholar sessions delete <id>")
			return 1
		}
		id, err := strconv.ParseInt(args.Raw[0], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid session id %q\n", args.Raw[0])
			return 1
		}
		if err := client.DeleteSession(context.Background(), id); err != nil {
			fmt.Fprintf(os.Stderr, "failed to delete session: %v\n", err)
			return 1
		}
		fmt.Printf("deleted session %d\n", id)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "unknown sessions subcommand: %s\n", args.Subcommand)
		return 1
	}
}

func listSessions(client *api.Client, userID int64) int {
	sessions, err := client.ListSessions(context.Background(), userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list sessions: %v\n", err)
		return 1
	}
	if len(sessions) == 0 {
		fmt.Println("no sessions yet")
		return 0
	}

	fmt.Printf("%-8s %-22s %s\n", "ID", "CREATED", "TITLE")
	for _, s := range sessions {
		created := ""
		if !s.CreatedAt.IsZero() {
			created = s.CreatedAt.Format("2006-01-02 15:04")
		}
		fmt.Printf("%-8d %-22s %s\n", s.ID, created, util.TruncateWidth(s.Title, 60))
	}
	return 0
}
