// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. Hotkey jumps straight to it.
type Item struct {
	Label       string
	Hotkey      string
	Description string
	View        messages.ViewType
	Quit        bool
}

// View is the start screen.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	items  []Item

	selected      int
	width, height int
	ready         bool

	// documents is shown under the subtitle once known; -1 hides it.
	documents int
}

// NewView creates the menu. A nil s uses the default styles.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		keys:   keymap.DefaultKeyMap(),
		items: []Item{
			{Label: "Chat", Hotkey: "c", Description: "Ask questions about the loaded documents", View: messages.ViewChat},
			{Label: "Documents", Hotkey: "d", Description: "Browse, analyse and remove documents", View: messages.ViewDocuments},
			{Label: "Settings", Hotkey: "s", Description: "Choose the embedding and answer providers", View: messages.ViewSettings},
			{Label: "Help", Hotkey: "?", Description: "Keyboard shortcuts", View: messages.ViewHelp},
			{Label: "Quit", Hotkey: "q", Quit: true},
		},
		width:     80,
		height:    24,
		documents: -1,
	}
}

// Init implements tea.Model.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and opens the chosen view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		k := msg.String()
		switch {
		case keymap.Matches(k, v.keys.Up):
			v.selected = max(v.selected-1, 0)
		case keymap.Matches(k, v.keys.Down):
			v.selected = min(v.selected+1, len(v.items)-1)
		case keymap.Matches(k, v.keys.Select):
			return v, v.choose(v.items[v.selected])
		default:
			for i, item := range v.items {
				if item.Hotkey == k {
					v.selected = i
					return v, v.choose(item)
				}
			}
		}
	}
	return v, nil
}

func (v *View) choose(item Item) tea.Cmd {
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: item.View}
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("DocPilot") + "\n\n")
	b.WriteString(v.styles.Muted.Render("Ask questions about your documents") + "\n")
	if v.documents >= 0 {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%d documents in the library", v.documents)) + "\n")
	}
	b.WriteString("\n")

	for i, item := range v.items {
		label := fmt.Sprintf("[%s] %s", item.Hotkey, item.Label)
		if i == v.selected {
			b.WriteString("> " + v.styles.Selected.Render(label) + "\n")
			continue
		}
		b.WriteString("  " + v.styles.Normal.Render(label) + "\n")
	}

	if desc := v.items[v.selected].Description; desc != "" {
		b.WriteString("\n" + v.styles.Subtitle.Render(desc) + "\n")
	}
	b.WriteString("\n" + v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [q] Quit"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// SetDocumentCount sets the library size shown under the title.
func (v *View) SetDocumentCount(n int) {
	v.documents = n
}

// Items returns the menu entries.
func (v *View) Items() []Item {
	return v.items
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}
