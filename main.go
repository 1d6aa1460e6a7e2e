// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// scholar is a terminal client for the Scholar research-assistant backend:
// streamed general chat with arXiv paper extraction, PDF question
// answering, and a local library of referenced papers.
package main

import (
	"fmt"
	"os"

	"github.com/jeranaias/scholar-tui/internal/api"
	"github.com/jeranaias/scholar-tui/internal/auth"
	"github.com/jeranaias/scholar-tui/internal/cli"
	"github.com/jeranaias/scholar-tui/internal/config"
	"github.com/jeranaias/scholar-tui/internal/kb"
	"github.com/jeranaias/scholar-tui/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd, args := cli.Parse()

	cfg := config.Global()

	credsPath, err := auth.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "scholar: %v\n", err)
		return 1
	}
	store, err := auth.NewStore(credsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scholar: %v\n", err)
		return 1
	}

	client := api.NewClient(cfg.Server.URL, store).
		WithTimeout(cfg.Timeout()).
		WithMaxRetries(cfg.Server.MaxRetries).
		WithRateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)

	// The local paper library is best-effort; the client works without it.
	var library *kb.Library
	if path, err := kb.DefaultPath(); err == nil {
		if lib, err := kb.Open(path); err == nil {
			library = lib
			defer library.Close()
		} else {
			fmt.Fprintf(os.Stderr, "scholar: library unavailable: %v\n", err)
		}
	}

	switch cmd {
	case cli.CmdLogin:
		return cli.HandleLogin(client, store)

	case cli.CmdLogout:
		return cli.HandleLogout(store)

	case cli.CmdSessions:
		return cli.HandleSessions(client, store, args)

	case cli.CmdAsk:
		return cli.HandleAsk(client, store, library, args)

	case cli.CmdUpload:
		return cli.HandleUpload(client, args)

	case cli.CmdVersion:
		cli.HandleVersion()
		return 0

	case cli.CmdHelp:
		cli.HandleHelp()
		return 0

	default:
		if err := ui.Run(cfg, client, store, library); err != nil {
			fmt.Fprintf(os.Stderr, "scholar: %v\n", err)
			return 1
		}
		return 0
	}
}
