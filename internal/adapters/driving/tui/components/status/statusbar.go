// Package status renders the one-line bar under the chat view.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/styles"
)

// State selects what the left side of the bar shows.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
	StateChat     State = "chat"
)

// Bar shows the copilot's state on the left and key hints on the right.
// While thinking it animates a spinner, driven by the Cmd from Spin.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	help    help.Model
	spinner spinner.Model

	state     State
	message   string
	turns     int
	documents int
	width     int
}

// NewBar creates a bar in the ready state. Nil arguments use the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	h := help.New()
	h.ShortSeparator = " | "
	h.Styles.ShortKey = s.Muted
	h.Styles.ShortDesc = s.Muted
	h.Styles.ShortSeparator = s.Muted

	return &Bar{
		styles:  s,
		keymap:  km,
		help:    h,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Muted)),
		state:   StateReady,
		width:   80,
	}
}

// Init does nothing; the spinner starts with Spin.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Spin switches to the thinking state and returns the first spinner tick.
func (s *Bar) Spin() tea.Cmd {
	s.state = StateThinking
	s.message = ""
	return s.spinner.Tick
}

// Update advances the spinner. Ticks arriving after thinking ends are
// dropped, which stops the animation.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	tick, ok := msg.(spinner.TickMsg)
	if !ok || s.state != StateThinking {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(tick)
	return s, cmd
}

// View renders the bar at its width.
func (s *Bar) View() string {
	left := s.status()
	right := s.help.ShortHelpView(s.hints())
	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *Bar) status() string {
	switch s.state {
	case StateThinking:
		return s.spinner.View() + s.styles.Muted.Render(" Thinking...")
	case StateError:
		if s.message == "" {
			return s.styles.Error.Render("Error")
		}
		return s.styles.Error.Render("Error: " + s.message)
	}

	switch {
	case s.message != "":
		return s.styles.Normal.Render(s.message)
	case s.turns > 0 || s.documents > 0:
		return s.styles.Normal.Render(fmt.Sprintf("%d messages | %d documents", s.turns, s.documents))
	}
	return s.styles.Muted.Render("Ready")
}

func (s *Bar) hints() []key.Binding {
	if s.state == StateChat {
		return s.keymap.ChatHelp()
	}
	return s.keymap.ShortHelp()
}

// SetState sets the state. Use Spin to enter StateThinking.
func (s *Bar) SetState(state State) {
	s.state = state
}

func (s *Bar) State() State {
	return s.state
}

// SetMessage replaces the counts with message until it is cleared.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

func (s *Bar) Message() string {
	return s.message
}

// SetCounts records the conversation length and the documents in scope.
func (s *Bar) SetCounts(turns, documents int) {
	s.turns = turns
	s.documents = documents
}

func (s *Bar) Turns() int {
	return s.turns
}

func (s *Bar) Documents() int {
	return s.documents
}

func (s *Bar) SetWidth(width int) {
	s.width = width
}

func (s *Bar) Width() int {
	return s.width
}

// Clear returns to the ready state with no message or counts.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.turns = 0
	s.documents = 0
}
