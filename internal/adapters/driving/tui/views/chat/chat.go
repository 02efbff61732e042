// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driving"
)

// Slash commands typed into the input.
const (
	cmdSummary  = "/summary"
	cmdCompare  = "/compare"
	cmdInsights = "/insights"
	cmdClear    = "/clear"
	cmdAll      = "/all"
)

// View represents the chat view with transcript, input and status bar.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.ChatInput
	transcript *list.Transcript
	statusbar  *status.Bar

	copilot  driving.CopilotService
	sessions driving.SessionService
	ctx      context.Context
	now      func() time.Time

	session    *domain.SessionInfo
	width      int
	height     int
	ready      bool
	err        error
	pending    bool
	focusInput bool // true = typing, false = scrolling the transcript
}

// NewView creates a new chat view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	copilot driving.CopilotService,
	sessions driving.SessionService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetState(status.StateChat)

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewChatInput(s),
		transcript: list.NewTranscript(s),
		statusbar:  bar,
		copilot:    copilot,
		sessions:   sessions,
		ctx:        context.Background(),
		now:        time.Now,
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init opens a session on first use and starts the cursor blinking.
func (v *View) Init() tea.Cmd {
	if v.session != nil {
		return v.input.Init()
	}
	return tea.Batch(v.input.Init(), v.startSession())
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SessionStarted:
		v.handleSessionStarted(msg)
		return v, nil

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ConversationCleared:
		v.pending = false
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.transcript.Clear()
		v.statusbar.SetState(status.StateChat)
		v.statusbar.SetMessage("Conversation cleared")
		v.refreshCounts()
		return v, nil

	case messages.ScopeChanged:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.session = msg.Session
		v.statusbar.SetMessage(v.scopeMessage())
		v.refreshCounts()
		return v, nil

	case messages.ErrorOccurred:
		v.pending = false
		v.setError(msg.Err)
		return v, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.statusbar, cmd = v.statusbar.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(msg.String(), v.keymap.Summary):
		return v, v.submit(cmdSummary)
	case keymap.Matches(msg.String(), v.keymap.Compare):
		return v, v.submit(cmdCompare)
	case keymap.Matches(msg.String(), v.keymap.Clear):
		return v, v.submit(cmdClear)
	case msg.Type == tea.KeyTab:
		v.toggleFocus()
		return v, nil
	}

	if !v.focusInput {
		if keymap.Matches(msg.String(), v.keymap.Compose) {
			v.toggleFocus()
			return v, nil
		}
		v.transcript, _ = v.transcript.Update(msg)
		return v, nil
	}

	if msg.Type == tea.KeyEnter {
		text := strings.TrimSpace(v.input.Value())
		if text == "" {
			return v, nil
		}
		v.input.Reset()
		return v, v.submit(text)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) toggleFocus() {
	v.focusInput = !v.focusInput
	if v.focusInput {
		v.input.Focus()
	} else {
		v.input.Blur()
	}
}

// submit runs a question or a slash command.
func (v *View) submit(text string) tea.Cmd {
	if v.pending {
		v.setError(ErrBusy)
		return nil
	}
	if v.copilot == nil {
		return errCmd(ErrNoCopilotService)
	}
	if strings.EqualFold(text, cmdAll) {
		return v.SetScope(nil)
	}

	v.err = nil
	v.pending = true
	return tea.Batch(v.statusbar.Spin(), v.dispatch(text))
}

func (v *View) dispatch(text string) tea.Cmd {
	switch strings.ToLower(text) {
	case cmdSummary:
		return v.askCanned(messages.AnswerSummary, "Summarise the documents.")
	case cmdCompare:
		return v.askCanned(messages.AnswerComparison, "Compare the documents.")
	case cmdInsights:
		return v.insights()
	case cmdClear:
		return v.clear()
	}

	v.transcript.Append(domain.Turn{Role: domain.RoleUser, Content: text, Timestamp: v.now()})
	return v.ask(text)
}

// startSession returns a command that opens a new conversation.
func (v *View) startSession() tea.Cmd {
	return func() tea.Msg {
		if v.sessions == nil {
			return messages.SessionStarted{Err: ErrNoSessionService}
		}
		info, err := v.sessions.Create(v.ctx)
		return messages.SessionStarted{Session: info, Err: err}
	}
}

func (v *View) sessionID() string {
	if v.session == nil {
		return ""
	}
	return v.session.ID
}

// ask returns a command that sends a question to the copilot.
func (v *View) ask(question string) tea.Cmd {
	id := v.sessionID()
	return func() tea.Msg {
		answer, err := v.copilot.Ask(v.ctx, id, question)
		return messages.AnswerReceived{Kind: messages.AnswerQuestion, Question: question, Answer: answer, Err: err}
	}
}

// askCanned returns a command that requests a summary or a comparison.
func (v *View) askCanned(kind messages.AnswerKind, label string) tea.Cmd {
	id := v.sessionID()
	v.transcript.Append(domain.Turn{Role: domain.RoleUser, Content: label, Timestamp: v.now()})
	return func() tea.Msg {
		if kind == messages.AnswerSummary {
			answer, err := v.copilot.GetSummary(v.ctx, id)
			return messages.AnswerReceived{Kind: kind, Question: label, Answer: answer, Err: err}
		}
		report, err := v.copilot.GetComparison(v.ctx, id)
		if err != nil {
			return messages.AnswerReceived{Kind: kind, Question: label, Err: err}
		}
		answer := *report.Answer
		answer.Response += "\n\n" + FormatComparison(report.Statistics)
		return messages.AnswerReceived{Kind: kind, Question: label, Answer: &answer}
	}
}

// insights returns a command that fetches the corpus report.
func (v *View) insights() tea.Cmd {
	label := "Show insights."
	v.transcript.Append(domain.Turn{Role: domain.RoleUser, Content: label, Timestamp: v.now()})
	return func() tea.Msg {
		ins, err := v.copilot.GetInsights(v.ctx)
		if err != nil {
			return messages.AnswerReceived{Kind: messages.AnswerInsights, Question: label, Err: err}
		}
		return messages.AnswerReceived{
			Kind:     messages.AnswerInsights,
			Question: label,
			Answer:   &domain.Answer{Response: FormatInsights(ins)},
		}
	}
}

// clear returns a command that wipes the conversation history.
func (v *View) clear() tea.Cmd {
	id := v.sessionID()
	return func() tea.Msg {
		if v.sessions == nil {
			return messages.ConversationCleared{Err: ErrNoSessionService}
		}
		if id == "" {
			return messages.ConversationCleared{}
		}
		return messages.ConversationCleared{Err: v.sessions.ClearConversation(v.ctx, id)}
	}
}

// SetScope returns a command that restricts the conversation to
// documentIDs. An empty list makes every document visible again.
func (v *View) SetScope(documentIDs []string) tea.Cmd {
	id := v.sessionID()
	return func() tea.Msg {
		if v.sessions == nil {
			return messages.ScopeChanged{Err: ErrNoSessionService}
		}
		if id == "" {
			info, err := v.sessions.Create(v.ctx)
			if err != nil {
				return messages.ScopeChanged{Err: err}
			}
			id = info.ID
		}
		if err := v.sessions.Scope(v.ctx, id, documentIDs); err != nil {
			return messages.ScopeChanged{DocumentIDs: documentIDs, Err: err}
		}
		info, err := v.sessions.Get(v.ctx, id)
		return messages.ScopeChanged{DocumentIDs: documentIDs, Session: info, Err: err}
	}
}

func (v *View) handleSessionStarted(msg messages.SessionStarted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.session = msg.Session
	v.refreshCounts()
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.pending = false
	if msg.Err != nil {
		v.setError(fmt.Errorf("%s: %w", domain.ErrorKind(msg.Err), msg.Err))
		return
	}

	v.err = nil
	v.statusbar.SetState(status.StateChat)
	if v.session == nil && msg.Answer.SessionID != "" {
		v.session = &domain.SessionInfo{ID: msg.Answer.SessionID}
	}
	v.transcript.Append(domain.Turn{
		Role:      domain.RoleAssistant,
		Content:   msg.Answer.Response,
		Timestamp: v.now(),
		Sources:   msg.Answer.Sources,
	})
	if msg.Answer.ProcessingTime > 0 {
		confidence := v.styles.Confidence(msg.Answer.Confidence).
			Render(fmt.Sprintf("confidence %.0f%%", msg.Answer.Confidence*100))
		v.statusbar.SetMessage(fmt.Sprintf("Answered in %.1fs (%s)", msg.Answer.ProcessingTime, confidence))
	}
	v.refreshCounts()
}

func (v *View) refreshCounts() {
	docs := 0
	if v.session != nil {
		docs = v.session.DocumentsLoaded
	}
	v.statusbar.SetCounts(v.transcript.Count(), docs)
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return messages.ErrorOccurred{Err: err}
	}
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("DocPilot Chat")+"  "+v.renderScope(), "")
	sections = append(sections, v.transcript.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections,
		v.input.View(),
		v.styles.Help.Render("/summary  /compare  /insights  /clear  /all  [tab] scroll"),
		v.statusbar.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) scopeMessage() string {
	if v.session == nil || !v.session.Scoped {
		return "Chatting about all documents"
	}
	return "Chatting about " + strings.Join(v.session.DocumentNames, ", ")
}

func (v *View) renderScope() string {
	if v.session == nil {
		return ""
	}
	if v.session.Scoped {
		return v.styles.Muted.Render("scoped to " + strings.Join(v.session.DocumentNames, ", "))
	}
	return v.styles.Muted.Render(fmt.Sprintf("all %d documents", v.session.DocumentsLoaded))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.transcript.SetDimensions(width, height-10) // header, input, help, status
	v.statusbar.SetWidth(width)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Session returns the current session, or nil before one is opened.
func (v *View) Session() *domain.SessionInfo {
	return v.session
}

// Turns returns the conversation shown.
func (v *View) Turns() []domain.Turn {
	return v.transcript.Turns()
}

// Pending reports whether a request is in flight.
func (v *View) Pending() bool {
	return v.pending
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Input returns the current input text.
func (v *View) Input() string {
	return v.input.Value()
}

// SetInput sets the input text.
func (v *View) SetInput(text string) {
	v.input.SetValue(text)
}

// Reset focuses the input and clears any error. The conversation is kept.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.err = nil
	v.statusbar.SetState(status.StateChat)
	v.statusbar.SetMessage("")
}
