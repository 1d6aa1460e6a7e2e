// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// The running program, for delivering messages from goroutines outside the
// Bubble Tea update loop (streaming callbacks in particular).
var (
	programMu  sync.RWMutex
	programRef *tea.Program
)

// SetProgram records the running program. Call once after tea.NewProgram.
func SetProgram(p *tea.Program) {
	programMu.Lock()
	defer programMu.Unlock()
	programRef = p
}

// send delivers a message to the running program, dropping it if none is
// registered (tests).
func send(msg tea.Msg) {
	programMu.RLock()
	p := programRef
	programMu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}
