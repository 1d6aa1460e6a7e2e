// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/scholar-tui/internal/api"
	"github.com/jeranaias/scholar-tui/internal/ui/styles"
	"github.com/jeranaias/scholar-tui/internal/util"
)

// sessionItem adapts an api.Session to the bubbles list.
type sessionItem struct {
	session api.Session
}

func (i sessionItem) Title() string {
	return util.TruncateWidth(i.session.Title, 60)
}

func (i sessionItem) Description() string {
	return fmt.Sprintf("#%d · %s", i.session.ID, i.session.CreatedAt.Format("Jan 2 15:04"))
}

func (i sessionItem) FilterValue() string {
	return i.session.Title
}

// sessionsModel is the dashboard: the user's sessions plus entry points to
// a new chat, the document chat, and the library.
type sessionsModel struct {
	theme  *styles.Theme
	client *api.Client
	userID int64

	list    list.Model
	width   int
	height  int
	loading bool
	err     error
}

func newSessionsModel(theme *styles.Theme, client *api.Client, userID int64) sessionsModel {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = theme.ListItemSelected
	delegate.Styles.SelectedDesc = theme.ListMeta

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Research Sessions"
	l.Styles.Title = theme.ListTitle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return sessionsModel{
		theme:  theme,
		client: client,
		userID: userID,
		list:   l,
	}
}

func (m *sessionsModel) setSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}

// loadCmd fetches the session list.
func (m *sessionsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		sessions, err := m.client.ListSessions(context.Background(), m.userID)
		return sessionsLoadedMsg{sessions: sessions, err: err}
	}
}

// deleteCmd removes a session.
func (m *sessionsModel) deleteCmd(sessionID int64) tea.Cmd {
	return func() tea.Msg {
		err := m.client.DeleteSession(context.Background(), sessionID)
		return sessionDeletedMsg{sessionID: sessionID, err: err}
	}
}

// selected returns the session under the cursor, if any.
func (m sessionsModel) selected() (api.Session, bool) {
	item, ok := m.list.SelectedItem().(sessionItem)
	if !ok {
		return api.Session{}, false
	}
	return item.session, true
}

func (m sessionsModel) Update(msg tea.Msg) (sessionsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			items := make([]list.Item, len(msg.sessions))
			for i, s := range msg.sessions {
				items[i] = sessionItem{session: s}
			}
			m.list.SetItems(items)
		}
		return m, nil

	case sessionDeletedMsg:
		m.err = msg.err
		if msg.err == nil {
			return m, m.loadCmd()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "x" && !m.list.SettingFilter() {
			if session, ok := m.selected(); ok {
				return m, m.deleteCmd(session.ID)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m sessionsModel) View() string {
	status := m.statusLine()
	return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), status)
}

func (m sessionsModel) statusLine() string {
	if m.err != nil {
		return m.theme.StatusBar.Width(m.width).Render(
			m.theme.ErrorText.Render("error: " + m.err.Error()))
	}
	hints := []string{
		m.theme.ShortcutKey.Render("enter") + m.theme.ShortcutDesc.Render(" open"),
		m.theme.ShortcutKey.Render("n") + m.theme.ShortcutDesc.Render(" new chat"),
		m.theme.ShortcutKey.Render("p") + m.theme.ShortcutDesc.Render(" pdf chat"),
		m.theme.ShortcutKey.Render("l") + m.theme.ShortcutDesc.Render(" library"),
		m.theme.ShortcutKey.Render("x") + m.theme.ShortcutDesc.Render(" delete"),
		m.theme.ShortcutKey.Render("ctrl+c") + m.theme.ShortcutDesc.Render(" quit"),
	}
	joined := ""
	for i, h := range hints {
		if i > 0 {
			joined += "  "
		}
		joined += h
	}
	return m.theme.StatusBar.Width(m.width).Render(joined)
}
