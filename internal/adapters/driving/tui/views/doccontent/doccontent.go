// Package doccontent shows a document's extracted text in a scrolling pane.
package doccontent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driving"
)

// chrome is the rows taken by the title, topics, rule, footer and padding.
const chrome = 8

var errNoCopilot = errors.New("copilot service not available")

// View renders one document. Listings may omit the extracted text, so the
// document is fetched again by ID when it is set.
type View struct {
	styles  *styles.Styles
	copilot driving.CopilotService
	ctx     context.Context

	document *domain.Document
	content  string
	lines    []string
	pane     viewport.Model
	width    int
	loading  bool
	err      error
}

// NewView creates an empty content view.
func NewView(s *styles.Styles, copilot driving.CopilotService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		copilot: copilot,
		ctx:     context.Background(),
		pane:    viewport.New(0, 1),
	}
}

func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

func (v *View) Init() tea.Cmd {
	return nil
}

// SetDocument clears the pane and starts fetching doc's text.
func (v *View) SetDocument(doc *domain.Document) tea.Cmd {
	v.document = doc
	v.err = nil
	v.loading = true
	v.setContent("")

	copilot, ctx := v.copilot, v.ctx
	return func() tea.Msg {
		if doc == nil || copilot == nil {
			return messages.DocumentContentLoaded{Err: errNoCopilot}
		}
		full, err := copilot.GetDocument(ctx, doc.ID)
		if err != nil {
			return messages.DocumentContentLoaded{DocumentID: doc.ID, Err: err}
		}
		return messages.DocumentContentLoaded{DocumentID: doc.ID, Content: full.Content}
	}
}

// Update handles loading results and scrolling keys. Content for a
// document other than the current one is dropped.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.DocumentContentLoaded:
		if v.document != nil && msg.DocumentID != "" && msg.DocumentID != v.document.ID {
			return v, nil
		}
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.setContent(msg.Content)
		}

	case messages.ErrorOccurred:
		v.loading = false
		v.err = msg.Err

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewDocuments} }
		case "home", "g":
			v.pane.GotoTop()
		case "end", "G":
			v.pane.GotoBottom()
		default:
			var cmd tea.Cmd
			v.pane, cmd = v.pane.Update(msg)
			return v, cmd
		}
	}
	return v, nil
}

func (v *View) setContent(content string) {
	v.content = content
	v.lines = wrap(content, max(v.width-4, 20))
	v.pane.SetContent(strings.Join(v.lines, "\n"))
}

// wrap hard-breaks each line at width runes.
func wrap(content string, width int) []string {
	if content == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(content, "\n") {
		runes := []rune(line)
		for len(runes) > width {
			out = append(out, string(runes[:width]))
			runes = runes[width:]
		}
		out = append(out, string(runes))
	}
	return out
}

// View renders the title, the pane and a position indicator.
func (v *View) View() string {
	var b strings.Builder

	title := "Document Content"
	if v.document != nil {
		title = v.document.Filename
	}
	b.WriteString(v.styles.Title.Render(title) + "\n")
	if v.document != nil && len(v.document.Topics) > 0 {
		b.WriteString(v.styles.Muted.Render("Topics: "+strings.Join(v.document.Topics, ", ")) + "\n")
	}
	b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 0)) + "\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading content..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.lines) == 0:
		b.WriteString(v.styles.Muted.Render("(No content)"))
	default:
		b.WriteString(v.pane.View())
		if len(v.lines) > v.pane.Height {
			first := v.pane.YOffset + 1
			last := min(v.pane.YOffset+v.pane.Height, len(v.lines))
			b.WriteString("\n\n" + v.styles.Muted.Render(fmt.Sprintf("  [%.0f%%] Line %d-%d of %d",
				v.pane.ScrollPercent()*100, first, last, len(v.lines))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back"))
	return b.String()
}

// SetDimensions resizes the pane and re-wraps the text.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.pane.Width = width
	v.pane.Height = max(height-chrome, 1)
	v.setContent(v.content)
}

func (v *View) Document() *domain.Document {
	return v.document
}

func (v *View) Content() string {
	return v.content
}

// Lines returns the wrapped text.
func (v *View) Lines() []string {
	return v.lines
}

// ScrollOffset is the index of the first visible line.
func (v *View) ScrollOffset() int {
	return v.pane.YOffset
}

func (v *View) Loading() bool {
	return v.loading
}

func (v *View) Err() error {
	return v.err
}
