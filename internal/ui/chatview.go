// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/scholar-tui/internal/chat"
	"github.com/jeranaias/scholar-tui/internal/model"
	"github.com/jeranaias/scholar-tui/internal/ui/styles"
)

// chatModel renders one conversation: a scrollable transcript, an input
// line, and streaming feedback. It backs both the general chat and the
// document chat; only the orchestrator binding differs.
type chatModel struct {
	theme *styles.Theme
	orch  *chat.Orchestrator

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model

	renderer *glamour.TermRenderer
	markdown bool

	width  int
	height int

	title   string
	sending bool
	err     error
}

func newChatModel(theme *styles.Theme, orch *chat.Orchestrator, markdown bool, title string) chatModel {
	input := textinput.New()
	input.Placeholder = "Ask a question..."
	input.Prompt = theme.InputPrompt.Render("> ")
	input.CharLimit = 4000
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = theme.Spinner

	return chatModel{
		theme:    theme,
		orch:     orch,
		viewport: viewport.New(0, 0),
		input:    input,
		spin:     spin,
		markdown: markdown,
		title:    title,
	}
}

// setSize lays the view out for a new terminal size.
func (m *chatModel) setSize(width, height int) {
	m.width = width
	m.height = height

	// header + input area + status line
	contentHeight := height - 5
	if contentHeight < 1 {
		contentHeight = 1
	}
	m.viewport.Width = width
	m.viewport.Height = contentHeight
	m.input.Width = width - 6

	if m.markdown {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(maxInt(20, width-4)),
		)
		if err == nil {
			m.renderer = renderer
		}
	}
	m.refresh()
}

// sendCmd runs one exchange in its own goroutine. Store changes arrive as
// conversationChangedMsg via the orchestrator callback; the returned
// message only closes out the in-flight state.
func (m *chatModel) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		err := m.orch.Send(context.Background(), text)
		return exchangeDoneMsg{err: err}
	}
}

// loadHistoryCmd fetches persisted messages for a resumed conversation.
func (m *chatModel) loadHistoryCmd() tea.Cmd {
	return func() tea.Msg {
		return historyLoadedMsg{err: m.orch.LoadHistory(context.Background())}
	}
}

func (m chatModel) Update(msg tea.Msg) (chatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.sending {
				return m, nil
			}
			m.input.Reset()
			m.sending = true
			m.err = nil
			return m, tea.Batch(m.sendCmd(text), m.spin.Tick)
		}

	case conversationChangedMsg:
		m.refresh()
		return m, nil

	case exchangeDoneMsg:
		m.sending = false
		m.err = msg.err
		m.refresh()
		return m, nil

	case historyLoadedMsg:
		m.err = msg.err
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if m.sending {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var inputCmd, vpCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(inputCmd, vpCmd)
}

// refresh rebuilds the transcript from a store snapshot and keeps the
// viewport pinned to the bottom.
func (m *chatModel) refresh() {
	msgs := m.orch.Conversation().Snapshot()

	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	if len(msgs) == 0 {
		b.WriteString(m.theme.Muted.Render("Ask your first question to begin."))
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *chatModel) renderMessage(msg *model.Message) string {
	var b strings.Builder

	switch msg.Role {
	case model.RoleUser:
		b.WriteString(m.theme.UserLabel.Render(msg.Role.DisplayName()))
		b.WriteString("\n")
		b.WriteString(m.theme.UserBubble.Width(maxInt(10, m.width-4)).Render(msg.Content))

	case model.RoleAssistant:
		b.WriteString(m.theme.AssistantLabel.Render(msg.Role.DisplayName()))
		b.WriteString("\n")
		if msg.IsStreaming {
			b.WriteString(m.theme.AssistantText.Render(msg.Content))
			b.WriteString(m.theme.StreamCursor.Render("▌"))
		} else {
			b.WriteString(m.renderAssistantContent(msg.Content))
		}
		if len(msg.Papers) > 0 {
			b.WriteString("\n")
			b.WriteString(m.renderPapers(msg.Papers))
		}
	}
	return b.String()
}

// renderAssistantContent renders finished replies as markdown when enabled.
// Streaming content never goes through glamour; partial markdown renders
// badly.
func (m *chatModel) renderAssistantContent(content string) string {
	if content == "" {
		return m.theme.Muted.Render("(no response)")
	}
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			return strings.TrimRight(rendered, "\n")
		}
	}
	return m.theme.AssistantText.Render(content)
}

func (m *chatModel) renderPapers(papers []model.PaperReference) string {
	var lines []string
	lines = append(lines, m.theme.PaperTitle.Render(fmt.Sprintf("Papers (%d)", len(papers))))
	for _, p := range papers {
		lines = append(lines,
			"  "+m.theme.PaperTitle.Render(p.Title),
			"    "+m.theme.PaperLink.Render(p.PDFURL),
		)
	}
	return m.theme.PaperBox.Render(strings.Join(lines, "\n"))
}

func (m chatModel) View() string {
	header := m.theme.Header.Width(m.width).Render(m.theme.HeaderTitle.Render(m.title))

	status := m.statusLine()

	input := m.theme.InputContainer.Width(m.width).Render(m.input.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		input,
		status,
	)
}

func (m chatModel) statusLine() string {
	if m.err != nil {
		return m.theme.StatusBar.Width(m.width).Render(
			m.theme.ErrorText.Render("error: " + m.err.Error()))
	}
	if m.sending {
		return m.theme.StatusBar.Width(m.width).Render(
			m.spin.View() + " thinking...")
	}
	hints := strings.Join([]string{
		m.theme.ShortcutKey.Render("enter") + m.theme.ShortcutDesc.Render(" send"),
		m.theme.ShortcutKey.Render("esc") + m.theme.ShortcutDesc.Render(" back"),
		m.theme.ShortcutKey.Render("ctrl+c") + m.theme.ShortcutDesc.Render(" quit"),
	}, "  ")
	return m.theme.StatusBar.Width(m.width).Render(hints)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
