// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/scholar-tui/internal/api"
	"github.com/jeranaias/scholar-tui/internal/ui/styles"
)

// loginModel is the credential prompt shown before anything else when no
// stored login exists.
type loginModel struct {
	theme  *styles.Theme
	client *api.Client

	email    textinput.Model
	password textinput.Model
	focused  int // 0 = email, 1 = password

	width  int
	height int
	busy   bool
	err    error
}

func newLoginModel(theme *styles.Theme, client *api.Client) loginModel {
	email := textinput.New()
	email.Placeholder = "email"
	email.Prompt = "  "
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "  "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return loginModel{
		theme:    theme,
		client:   client,
		email:    email,
		password: password,
	}
}

func (m *loginModel) setSize(width, height int) {
	m.width = width
	m.height = height
}

// loginCmd runs the login call off the update loop.
func (m *loginModel) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.client.Login(context.Background(), email, password)
		return loginDoneMsg{result: result, err: err}
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			m.focused = 1 - m.focused
			if m.focused == 0 {
				m.email.Focus()
				m.password.Blur()
			} else {
				m.password.Focus()
				m.email.Blur()
			}
			return m, nil

		case "enter":
			if m.busy {
				return m, nil
			}
			email := strings.TrimSpace(m.email.Value())
			password := m.password.Value()
			if email == "" || password == "" {
				return m, nil
			}
			m.busy = true
			m.err = nil
			return m, m.loginCmd(email, password)
		}

	case loginDoneMsg:
		m.busy = false
		m.err = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	if m.focused == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString(m.theme.HeaderTitle.Render("scholar"))
	b.WriteString("\n")
	b.WriteString(m.theme.Muted.Render("sign in to your research assistant"))
	b.WriteString("\n\n")
	b.WriteString(m.email.View())
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	switch {
	case m.busy:
		b.WriteString(m.theme.Muted.Render("signing in..."))
	case m.err != nil:
		b.WriteString(m.theme.ErrorText.Render("login failed: " + m.err.Error()))
	default:
		b.WriteString(m.theme.ShortcutKey.Render("enter") + m.theme.ShortcutDesc.Render(" sign in  ") +
			m.theme.ShortcutKey.Render("tab") + m.theme.ShortcutDesc.Render(" switch field"))
	}

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Padding(1, 3).
		Render(b.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
