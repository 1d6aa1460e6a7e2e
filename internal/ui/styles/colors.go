// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the scholar TUI.
package styles

import "github.com/charmbracelet/lipgloss"

// Core palette. Adaptive colors pick the variant matching the terminal
// background.
var (
	Purple = lipgloss.AdaptiveColor{Light: "#6B21A8", Dark: "#C084FC"}
	Cyan   = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#67E8F9"}
	Teal   = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#5EEAD4"}
	Amber  = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FCD34D"}
	Rose   = lipgloss.AdaptiveColor{Light: "#BE123C", Dark: "#FDA4AF"}

	TextPrimary   = lipgloss.AdaptiveColor{Light: "#1E293B", Dark: "#E2E8F0"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#475569", Dark: "#94A3B8"}
	TextMuted     = lipgloss.AdaptiveColor{Light: "#94A3B8", Dark: "#64748B"}
	TextInverse   = lipgloss.AdaptiveColor{Light: "#F8FAFC", Dark: "#0F172A"}

	Surface    = lipgloss.AdaptiveColor{Light: "#F1F5F9", Dark: "#1E293B"}
	SurfaceDim = lipgloss.AdaptiveColor{Light: "#E2E8F0", Dark: "#0F172A"}
	Overlay    = lipgloss.AdaptiveColor{Light: "#CBD5E1", Dark: "#334155"}
)
