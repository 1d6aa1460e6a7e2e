// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/scholar-tui/internal/kb"
	"github.com/jeranaias/scholar-tui/internal/ui/styles"
)

// paperItem adapts a library entry to the bubbles list.
type paperItem struct {
	entry kb.Entry
}

func (i paperItem) Title() string       { return i.entry.Paper.Title }
func (i paperItem) Description() string { return i.entry.Paper.PDFURL }
func (i paperItem) FilterValue() string {
	return i.entry.Paper.Title + " " + i.entry.Paper.URL
}

// libraryModel is the knowledge base gallery: every paper reference saved
// from finished replies, browsable and searchable offline.
type libraryModel struct {
	theme   *styles.Theme
	library *kb.Library

	list   list.Model
	width  int
	height int
	err    error
}

func newLibraryModel(theme *styles.Theme, library *kb.Library) libraryModel {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = theme.ListItemSelected
	delegate.Styles.SelectedDesc = theme.ListMeta

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Knowledge Base"
	l.Styles.Title = theme.ListTitle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return libraryModel{
		theme:   theme,
		library: library,
		list:    l,
	}
}

func (m *libraryModel) setSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}

// loadCmd reads the saved papers. A nil library (no local database) loads
// as empty.
func (m *libraryModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		if m.library == nil {
			return libraryLoadedMsg{}
		}
		entries, err := m.library.List(context.Background(), 0)
		return libraryLoadedMsg{entries: entries, err: err}
	}
}

// deleteCmd removes the paper under the cursor from the library.
func (m *libraryModel) deleteCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if m.library == nil {
			return libraryLoadedMsg{}
		}
		if err := m.library.Delete(context.Background(), url); err != nil {
			return libraryLoadedMsg{err: err}
		}
		entries, err := m.library.List(context.Background(), 0)
		return libraryLoadedMsg{entries: entries, err: err}
	}
}

func (m libraryModel) Update(msg tea.Msg) (libraryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case libraryLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			items := make([]list.Item, len(msg.entries))
			for i, e := range msg.entries {
				items[i] = paperItem{entry: e}
			}
			m.list.SetItems(items)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "x" && !m.list.SettingFilter() {
			if item, ok := m.list.SelectedItem().(paperItem); ok {
				return m, m.deleteCmd(item.entry.Paper.URL)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m libraryModel) View() string {
	status := m.statusLine()
	return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), status)
}

func (m libraryModel) statusLine() string {
	if m.err != nil {
		return m.theme.StatusBar.Width(m.width).Render(
			m.theme.ErrorText.Render("error: " + m.err.Error()))
	}
	hints := m.theme.ShortcutKey.Render("/") + m.theme.ShortcutDesc.Render(" filter  ") +
		m.theme.ShortcutKey.Render("x") + m.theme.ShortcutDesc.Render(" remove  ") +
		m.theme.ShortcutKey.Render("esc") + m.theme.ShortcutDesc.Render(" back")
	return m.theme.StatusBar.Width(m.width).Render(hints)
}
