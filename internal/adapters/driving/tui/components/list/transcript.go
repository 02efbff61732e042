// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// Transcript displays the conversation and scrolls through it. It follows
// the newest turn until the user scrolls up.
type Transcript struct {
	turns  []domain.Turn
	lines  []string
	offset int
	follow bool
	styles *styles.Styles
	width  int
	height int
}

// NewTranscript creates a new transcript component.
func NewTranscript(s *styles.Styles) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &Transcript{
		follow: true,
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the transcript.
func (t *Transcript) Init() tea.Cmd {
	return nil
}

// Update handles scrolling keys.
func (t *Transcript) Update(msg tea.Msg) (*Transcript, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			t.ScrollUp(1)
		case "down", "j":
			t.ScrollDown(1)
		case "pgup", "ctrl+u":
			t.ScrollUp(t.height)
		case "pgdown", "ctrl+d":
			t.ScrollDown(t.height)
		}
	}
	return t, nil
}

// View renders the visible part of the transcript.
func (t *Transcript) View() string {
	if len(t.turns) == 0 {
		return t.styles.Muted.Render("No messages yet. Ask a question about your documents.")
	}

	end := min(t.offset+t.height, len(t.lines))
	return strings.Join(t.lines[t.offset:end], "\n")
}

// Append adds turns to the end of the transcript.
func (t *Transcript) Append(turns ...domain.Turn) {
	t.turns = append(t.turns, turns...)
	t.render()
}

// SetTurns replaces the transcript.
func (t *Transcript) SetTurns(turns []domain.Turn) {
	t.turns = append([]domain.Turn(nil), turns...)
	t.follow = true
	t.render()
}

// Turns returns the turns shown.
func (t *Transcript) Turns() []domain.Turn {
	return t.turns
}

// render lays out every turn into wrapped lines.
func (t *Transcript) render() {
	wrap := lipgloss.NewStyle().Width(max(t.width-4, 20))

	t.lines = t.lines[:0]
	for i, turn := range t.turns {
		if i > 0 {
			t.lines = append(t.lines, "")
		}
		label := t.styles.UserTurn.Render("You")
		if turn.Role == domain.RoleAssistant {
			label = t.styles.AssistantTurn.Render("DocPilot")
		}
		t.lines = append(t.lines, label)
		body := t.styles.Normal.Render(wrap.Render(turn.Content))
		t.lines = append(t.lines, strings.Split(body, "\n")...)
		if len(turn.Sources) > 0 {
			t.lines = append(t.lines, t.styles.Source.Render(
				fmt.Sprintf("Sources: %s", strings.Join(turn.Sources, ", "))))
		}
	}

	if t.follow {
		t.offset = t.maxOffset()
	} else {
		t.offset = min(t.offset, t.maxOffset())
	}
}

func (t *Transcript) maxOffset() int {
	return max(len(t.lines)-t.height, 0)
}

// ScrollUp moves the view n lines towards older turns.
func (t *Transcript) ScrollUp(n int) {
	t.offset = max(t.offset-n, 0)
	t.follow = t.offset == t.maxOffset()
}

// ScrollDown moves the view n lines towards newer turns.
func (t *Transcript) ScrollDown(n int) {
	t.offset = min(t.offset+n, t.maxOffset())
	t.follow = t.offset == t.maxOffset()
}

// Offset returns the index of the first visible line.
func (t *Transcript) Offset() int {
	return t.offset
}

// LineCount returns the number of rendered lines.
func (t *Transcript) LineCount() int {
	return len(t.lines)
}

// Following reports whether the view sticks to the newest turn.
func (t *Transcript) Following() bool {
	return t.follow
}

// SetDimensions sets the component dimensions.
func (t *Transcript) SetDimensions(width, height int) {
	t.width = width
	t.height = max(height, 1)
	t.render()
}

// Width returns the current width.
func (t *Transcript) Width() int {
	return t.width
}

// Height returns the current height.
func (t *Transcript) Height() int {
	return t.height
}

// Count returns the number of turns.
func (t *Transcript) Count() int {
	return len(t.turns)
}

// IsEmpty returns whether the transcript is empty.
func (t *Transcript) IsEmpty() bool {
	return len(t.turns) == 0
}

// Clear removes every turn.
func (t *Transcript) Clear() {
	t.turns = nil
	t.lines = nil
	t.offset = 0
	t.follow = true
}
