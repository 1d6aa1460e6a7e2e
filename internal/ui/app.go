// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the Bubble Tea interface: login gate, session dashboard,
// general chat, document chat, and the knowledge base gallery.
package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/scholar-tui/internal/api"
	"github.com/jeranaias/scholar-tui/internal/auth"
	"github.com/jeranaias/scholar-tui/internal/chat"
	"github.com/jeranaias/scholar-tui/internal/config"
	"github.com/jeranaias/scholar-tui/internal/kb"
	"github.com/jeranaias/scholar-tui/internal/model"
	"github.com/jeranaias/scholar-tui/internal/ui/styles"
)

// appState selects the active view.
type appState int

const (
	stateLogin appState = iota
	stateDashboard
	stateChat
	statePDFGate
	statePDFChat
	stateLibrary
)

// App is the root Bubble Tea model.
type App struct {
	theme   *styles.Theme
	cfg     *config.Config
	client  *api.Client
	creds   *auth.Store
	library *kb.Library

	state  appState
	width  int
	height int

	login    loginModel
	sessions sessionsModel
	chat     chatModel
	libView  libraryModel

	// Document chat state: the upload gate and its binding.
	pdfInput   textinput.Model
	pdfBinding *chat.DocumentBinding
	pdfBusy    bool
	pdfErr     error

	userID int64
}

// NewApp builds the root model. The library may be nil when the local
// database failed to open; the gallery then shows empty.
func NewApp(cfg *config.Config, client *api.Client, creds *auth.Store, library *kb.Library) *App {
	theme := styles.NewTheme(cfg.UI.Theme)

	pdfInput := textinput.New()
	pdfInput.Placeholder = "/path/to/paper.pdf"
	pdfInput.Prompt = "  "

	app := &App{
		theme:    theme,
		cfg:      cfg,
		client:   client,
		creds:    creds,
		library:  library,
		login:    newLoginModel(theme, client),
		libView:  newLibraryModel(theme, library),
		pdfInput: pdfInput,
	}

	if user, err := creds.CurrentUser(); err == nil {
		app.userID = user.ID
		app.state = stateDashboard
	} else {
		app.state = stateLogin
	}
	app.sessions = newSessionsModel(theme, client, app.userID)
	return app
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	if a.state == stateDashboard {
		return a.sessions.loadCmd()
	}
	return textinput.Blink
}

// newOrchestrator wires a conversation to a binding with the app's
// streaming callbacks.
func (a *App) newOrchestrator(conv *model.Conversation, binding chat.Binding) *chat.Orchestrator {
	return chat.NewOrchestrator(conv, binding,
		chat.WithOnChange(func() { send(conversationChangedMsg{}) }),
		chat.WithOnBound(func(id string) { send(conversationBoundMsg{id: id}) }),
	)
}

// openGeneralChat enters the chat view over a conversation, new or resumed.
func (a *App) openGeneralChat(conv *model.Conversation, title string) tea.Cmd {
	orch := a.newOrchestrator(conv, chat.NewGeneralBinding(a.client, a.userID))
	a.chat = newChatModel(a.theme, orch, a.cfg.UI.Markdown, title)
	a.chat.setSize(a.width, a.height)
	a.state = stateChat

	if !conv.IsNew() {
		return tea.Batch(textinput.Blink, a.chat.loadHistoryCmd())
	}
	return textinput.Blink
}

// openPDFChat enters the chat view bound to an uploaded document.
func (a *App) openPDFChat(pdfID, filename string) tea.Cmd {
	conv := model.NewConversationWithID(pdfID)
	orch := a.newOrchestrator(conv, a.pdfBinding)
	a.chat = newChatModel(a.theme, orch, a.cfg.UI.Markdown, "PDF: "+filename)
	a.chat.setSize(a.width, a.height)
	a.state = statePDFChat
	return tea.Batch(textinput.Blink, a.chat.loadHistoryCmd())
}

// uploadCmd registers the document with the backend.
func (a *App) uploadCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return uploadDoneMsg{err: fmt.Errorf("failed to open file: %w", err)}
		}
		defer f.Close()

		result, err := a.client.UploadDocument(context.Background(), path, f)
		if err != nil {
			return uploadDoneMsg{err: err}
		}
		return uploadDoneMsg{pdfID: result.PDFID, filename: filepath.Base(path)}
	}
}

// savePapersCmd stores the latest reply's references in the local library.
func (a *App) savePapersCmd() tea.Cmd {
	if a.library == nil {
		return nil
	}
	msgs := a.chat.orch.Conversation().Snapshot()
	var refs []model.PaperReference
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleAssistant {
			refs = msgs[i].Papers
			break
		}
	}
	if len(refs) == 0 {
		return nil
	}
	return func() tea.Msg {
		saved, err := a.library.SavePapers(context.Background(), refs)
		return papersSavedMsg{saved: saved, err: err}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.login.setSize(msg.Width, msg.Height)
		a.sessions.setSize(msg.Width, msg.Height)
		a.libView.setSize(msg.Width, msg.Height)
		if a.state == stateChat || a.state == statePDFChat {
			a.chat.setSize(msg.Width, msg.Height)
		}
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "esc":
			switch a.state {
			case stateChat, statePDFChat, stateLibrary, statePDFGate:
				a.state = stateDashboard
				return a, a.sessions.loadCmd()
			}
		}

	case loginDoneMsg:
		if msg.err == nil && msg.result != nil {
			if err := a.creds.Save(msg.result.AccessToken, msg.result.User); err != nil {
				a.login.err = err
				return a, nil
			}
			a.userID = msg.result.User.ID
			a.sessions = newSessionsModel(a.theme, a.client, a.userID)
			a.sessions.setSize(a.width, a.height)
			a.state = stateDashboard
			return a, a.sessions.loadCmd()
		}

	case conversationBoundMsg:
		// The dashboard will pick the new session up on its next load;
		// nothing to do here beyond letting the chat view know.
		_ = msg.id
		return a, nil

	case exchangeDoneMsg:
		var cmd tea.Cmd
		a.chat, cmd = a.chat.Update(msg)
		if msg.err == nil {
			return a, tea.Batch(cmd, a.savePapersCmd())
		}
		return a, cmd

	case papersSavedMsg:
		return a, nil
	}

	return a.updateState(msg)
}

// updateState routes remaining messages to the active view.
func (a *App) updateState(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch a.state {
	case stateLogin:
		a.login, cmd = a.login.Update(msg)

	case stateDashboard:
		if key, ok := msg.(tea.KeyMsg); ok && !a.sessions.list.SettingFilter() {
			switch key.String() {
			case "n":
				return a, a.openGeneralChat(model.NewConversation(), "New Conversation")
			case "p":
				a.state = statePDFGate
				a.pdfErr = nil
				a.pdfInput.Reset()
				a.pdfInput.Focus()
				return a, textinput.Blink
			case "l":
				a.state = stateLibrary
				return a, a.libView.loadCmd()
			case "enter":
				if session, ok := a.sessions.selected(); ok {
					conv := model.NewConversationWithID(strconv.FormatInt(session.ID, 10))
					conv.SetTitle(session.Title)
					return a, a.openGeneralChat(conv, session.Title)
				}
			}
		}
		a.sessions, cmd = a.sessions.Update(msg)

	case stateChat, statePDFChat:
		a.chat, cmd = a.chat.Update(msg)

	case statePDFGate:
		return a.updatePDFGate(msg)

	case stateLibrary:
		a.libView, cmd = a.libView.Update(msg)
	}

	return a, cmd
}

// updatePDFGate handles the upload-first gate of the document chat.
func (a *App) updatePDFGate(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" && !a.pdfBusy {
			path := strings.TrimSpace(a.pdfInput.Value())
			if path == "" {
				return a, nil
			}
			a.pdfBusy = true
			a.pdfErr = nil
			return a, a.uploadCmd(path)
		}

	case uploadDoneMsg:
		a.pdfBusy = false
		if msg.err != nil {
			a.pdfErr = msg.err
			return a, nil
		}
		a.pdfBinding = chat.NewDocumentBinding(a.client, msg.pdfID)
		return a, a.openPDFChat(msg.pdfID, msg.filename)
	}

	var cmd tea.Cmd
	a.pdfInput, cmd = a.pdfInput.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	switch a.state {
	case stateLogin:
		return a.login.View()
	case stateDashboard:
		return a.sessions.View()
	case stateChat, statePDFChat:
		return a.chat.View()
	case statePDFGate:
		return a.viewPDFGate()
	case stateLibrary:
		return a.libView.View()
	}
	return ""
}

func (a *App) viewPDFGate() string {
	var b strings.Builder
	b.WriteString(a.theme.HeaderTitle.Render("Chat with a PDF"))
	b.WriteString("\n")
	b.WriteString(a.theme.Muted.Render("upload a document to start asking questions about it"))
	b.WriteString("\n\n")
	b.WriteString(a.pdfInput.View())
	b.WriteString("\n\n")

	switch {
	case a.pdfBusy:
		b.WriteString(a.theme.Muted.Render("uploading..."))
	case a.pdfErr != nil:
		b.WriteString(a.theme.ErrorText.Render("upload failed: " + a.pdfErr.Error()))
	default:
		b.WriteString(a.theme.ShortcutKey.Render("enter") + a.theme.ShortcutDesc.Render(" upload  ") +
			a.theme.ShortcutKey.Render("esc") + a.theme.ShortcutDesc.Render(" back"))
	}

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Cyan).
		Padding(1, 3).
		Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, box)
}

// Run starts the TUI and blocks until exit.
func Run(cfg *config.Config, client *api.Client, creds *auth.Store, library *kb.Library) error {
	app := NewApp(cfg, client, creds, library)
	p := tea.NewProgram(app, tea.WithAltScreen())
	SetProgram(p)
	_, err := p.Run()
	return err
}
