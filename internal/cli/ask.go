// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - one-shot question handler: creates a session, streams the
// answer to stdout, and lists any referenced papers.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/scholar-tui/internal/api"
	"github.com/jeranaias/scholar-tui/internal/auth"
	"github.com/jeranaias/scholar-tui/internal/chat"
	"github.com/jeranaias/scholar-tui/internal/kb"
	"github.com/jeranaias/scholar-tui/internal/model"
)

// HandleAsk runs one full exchange and prints the streamed reply. It goes
// through the same orchestrator as the TUI, so session creation, failure
// handling, and paper extraction behave identically.
func HandleAsk(client *api.Client, store *auth.Store, library *kb.Library, args Args) int {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: scholar ask \"question\"")
		return 1
	}

	user, err := store.CurrentUser()
	if err != nil {
		fmt.Fprintln(os.Stderr, "not logged in; run `scholar login` first")
		return 1
	}

	conv := model.NewConversation()
	var lastPrinted int
	orch := chat.NewOrchestrator(conv,
		chat.NewGeneralBinding(client, user.ID),
		chat.WithOnChange(func() {
			// Print only the delta of the in-flight assistant message.
			msgs := conv.Snapshot()
			if len(msgs) == 0 {
				return
			}
			last := msgs[len(msgs)-1]
			if last.Role != model.RoleAssistant {
				return
			}
			if len(last.Content) > lastPrinted {
				fmt.Print(last.Content[lastPrinted:])
				lastPrinted = len(last.Content)
			}
		}),
	)

	if err := orch.Send(context.Background(), query); err != nil {
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
		return 1
	}
	fmt.Println()

	msgs := conv.Snapshot()
	reply := msgs[len(msgs)-1]
	if len(reply.Papers) > 0 {
		fmt.Println("\nPapers:")
		for _, p := range reply.Papers {
			fmt.Printf("  %s  %s\n", p.Title, p.PDFURL)
		}
		if library != nil {
			if saved, err := library.SavePapers(context.Background(), reply.Papers); err == nil && saved > 0 {
				fmt.Printf("(%d saved to library)\n", saved)
			}
		}
	}
	return 0
}
