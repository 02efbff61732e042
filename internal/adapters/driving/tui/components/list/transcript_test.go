package list

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

func exchange(q, a string, sources ...string) []domain.Turn {
	return []domain.Turn{
		{Role: domain.RoleUser, Content: q},
		{Role: domain.RoleAssistant, Content: a, Sources: sources},
	}
}

func TestNewTranscript(t *testing.T) {
	tr := NewTranscript(nil)

	require.NotNil(t, tr)
	assert.NotNil(t, tr.styles)
	assert.True(t, tr.IsEmpty())
	assert.True(t, tr.Following())
	assert.Nil(t, tr.Init())
}

func TestTranscript_View_Empty(t *testing.T) {
	assert.Contains(t, NewTranscript(nil).View(), "No messages yet")
}

func TestTranscript_View_RendersTurns(t *testing.T) {
	tr := NewTranscript(nil)
	tr.SetDimensions(80, 20)

	tr.Append(exchange("What is the capital?", "Paris.", "france.txt")...)

	view := tr.View()
	assert.Contains(t, view, "You")
	assert.Contains(t, view, "What is the capital?")
	assert.Contains(t, view, "DocPilot")
	assert.Contains(t, view, "Paris.")
	assert.Contains(t, view, "Sources: france.txt")
	assert.Equal(t, 2, tr.Count())
}

func TestTranscript_FollowsNewestTurn(t *testing.T) {
	tr := NewTranscript(nil)
	tr.SetDimensions(80, 3)

	for i := 0; i < 5; i++ {
		tr.Append(exchange(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))...)
	}

	assert.True(t, tr.Following())
	assert.Equal(t, tr.LineCount()-3, tr.Offset())
	assert.Contains(t, tr.View(), "a4")
}

func TestTranscript_ScrollingStopsFollowing(t *testing.T) {
	tr := NewTranscript(nil)
	tr.SetDimensions(80, 3)
	for i := 0; i < 5; i++ {
		tr.Append(exchange(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))...)
	}
	bottom := tr.Offset()

	tr.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, bottom-1, tr.Offset())
	assert.False(t, tr.Following())

	// New turns do not yank the view while scrolled up.
	tr.Append(exchange("q5", "a5")...)
	assert.Equal(t, bottom-1, tr.Offset())

	tr.ScrollDown(1000)
	assert.True(t, tr.Following())
	assert.Equal(t, tr.LineCount()-3, tr.Offset())

	tr.ScrollUp(1000)
	assert.Zero(t, tr.Offset())
}

func TestTranscript_SetTurnsAndClear(t *testing.T) {
	tr := NewTranscript(nil)
	turns := exchange("q", "a")

	tr.SetTurns(turns)
	turns[0].Content = "mutated"
	assert.Equal(t, "q", tr.Turns()[0].Content)

	tr.Clear()
	assert.True(t, tr.IsEmpty())
	assert.Zero(t, tr.LineCount())
	assert.Zero(t, tr.Offset())
}

func TestTranscript_SetDimensions(t *testing.T) {
	tr := NewTranscript(nil)

	tr.SetDimensions(120, 0)

	assert.Equal(t, 120, tr.Width())
	assert.Equal(t, 1, tr.Height())
}
