package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/views/doccontent"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/views/docdetails"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/docpilot/internal/core/domain"
)

var _ tea.Model = (*App)(nil)

// App owns every view and routes messages between them. Keys go to the
// active view only; results of background commands go to the view that
// issued them, whichever view is showing when they arrive.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView       *menu.View
	chatView       *chat.View
	documentsView  *documents.View
	docContentView *doccontent.View
	docDetailsView *docdetails.View
	settingsView   *settings.View

	currentView      messages.ViewType
	selectedDocument *domain.Document // last opened from the library
	err              error

	width, height int
	ready         bool // set by the first window size
}

// NewApp builds the views around ports, starting on the menu.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, ErrInvalidPorts
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	return &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		menuView:       menu.NewView(s),
		chatView:       chat.NewView(s, nil, ports.Copilot, ports.Sessions),
		documentsView:  documents.NewView(s, ports.Copilot),
		docContentView: doccontent.NewView(s, ports.Copilot),
		docDetailsView: docdetails.NewView(s),
		settingsView:   settings.NewView(s, ports.Settings),
		currentView:    messages.ViewMenu,
	}, nil
}

// WithContext sets the context handed to service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.documentsView.WithContext(ctx)
	a.docContentView.WithContext(ctx)
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, tea.SetWindowTitle("DocPilot"), a.countDocuments())
}

// countDocuments lists the library so the menu can show its size.
func (a *App) countDocuments() tea.Cmd {
	copilot, ctx := a.ports.Copilot, a.ctx
	return func() tea.Msg {
		docs, err := copilot.ListDocuments(ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}
		return a, a.forward(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.Quit:
		return a, tea.Quit

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.forward(msg)

	// Chat results land even after the user has navigated away.
	case spinner.TickMsg:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.SessionStarted, messages.AnswerReceived,
		messages.ConversationCleared, messages.ScopeChanged:
		a.chatView, cmd = a.chatView.Update(msg)
		a.err = a.chatView.Err()
	case messages.ChatScopeRequested:
		a.currentView = messages.ViewChat
		a.chatView.Reset()
		cmd = a.chatView.SetScope(msg.DocumentIDs)

	case messages.DocumentsLoaded:
		if msg.Err == nil {
			a.menuView.SetDocumentCount(len(msg.Documents))
		}
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.DocumentDeleted:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.DocumentSelected:
		a.selectedDocument = &msg.Document
		a.currentView = messages.ViewDocContent
		cmd = a.docContentView.SetDocument(&msg.Document)
	case messages.DocumentContentLoaded:
		a.docContentView, cmd = a.docContentView.Update(msg)
	case messages.AnalysisLoaded:
		a.err = msg.Err
		a.currentView = messages.ViewDocDetails
		a.docDetailsView, cmd = a.docDetailsView.Update(msg)

	case messages.SettingsLoaded, messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)

	default:
		// Cursor blinks and other component ticks.
		cmd = a.forward(msg)
	}
	return a, cmd
}

// forward hands msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewDocContent:
		a.docContentView, cmd = a.docContentView.Update(msg)
	case messages.ViewDocDetails:
		a.docDetailsView, cmd = a.docDetailsView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// switchTo makes view active and returns whatever it needs to load.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.currentView = view
	switch view {
	case messages.ViewMenu:
		return a.countDocuments()
	case messages.ViewChat:
		a.chatView.Reset()
		return a.chatView.Init()
	case messages.ViewDocuments:
		return a.documentsView.Load()
	case messages.ViewSettings:
		a.settingsView.Reset()
		return a.settingsView.Init()
	case messages.ViewHelp, messages.ViewDocContent, messages.ViewDocDetails:
	}
	return nil
}

func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewDocuments:
		return a.documentsView.View()
	case messages.ViewDocContent:
		return a.docContentView.View()
	case messages.ViewDocDetails:
		return a.docDetailsView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.styles.Title.Render("Help") + "\n" + helpText + a.styles.Help.Render("[esc] back to menu")
	case messages.ViewMenu:
	}
	return a.menuView.View()
}

const helpText = `
Navigation:
  esc         Back
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  c d s ? q   Jump to an option

Chat:
  (type)      Ask a question about your documents
  enter       Send
  ctrl+s      Executive summary      (/summary)
  ctrl+o      Compare documents      (/compare)
  ctrl+l      Clear the conversation (/clear)
  /insights   Library insights
  /all        Chat about every document again
  tab         Scroll the transcript, i to type again

Documents:
  enter       Actions: content, analysis, chat, delete
  r           Reload
  g/G         Top or bottom

`

// Run blocks until the user quits or the context is cancelled.
func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx)).Run()
	return err
}

func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// SelectedDocument is the document last opened from the library.
func (a *App) SelectedDocument() *domain.Document {
	return a.selectedDocument
}

func (a *App) Chat() *chat.View {
	return a.chatView
}

// Err is the last error reported by any view.
func (a *App) Err() error {
	return a.err
}

func (a *App) Ready() bool {
	return a.ready
}

type resizable interface {
	SetDimensions(width, height int)
}

// SetDimensions resizes every view, not only the active one.
func (a *App) SetDimensions(width, height int) {
	a.width, a.height = width, height
	a.ready = true
	for _, v := range []resizable{
		a.menuView, a.chatView, a.documentsView,
		a.docContentView, a.docDetailsView, a.settingsView,
	} {
		v.SetDimensions(width, height)
	}
}
