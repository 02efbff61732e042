// Package docdetails provides the document analysis view for the TUI.
package docdetails

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// maxEntities caps how many matches of each entity kind are listed.
const maxEntities = 5

// View is the document analysis view.
type View struct {
	styles *styles.Styles

	analysis     *domain.DocumentAnalysis
	scrollOffset int
	width        int
	height       int
	ready        bool
	err          error
}

// NewView creates a new document analysis view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
	}
}

// SetAnalysis sets the analysis to display.
func (v *View) SetAnalysis(analysis *domain.DocumentAnalysis) {
	v.analysis = analysis
	v.scrollOffset = 0
	v.err = nil
}

// SetError sets an error to display.
func (v *View) SetError(err error) {
	v.err = err
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the document analysis view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnalysisLoaded:
		if msg.Err != nil {
			v.SetError(msg.Err)
			return v, nil
		}
		v.SetAnalysis(msg.Analysis)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewDocuments}
		}
	}

	return v, nil
}

// visibleLines returns the number of lines that can be displayed.
func (v *View) visibleLines() int {
	// Reserve lines for title, separator, help, and padding
	return max(v.height-6, 1)
}

// maxScrollOffset returns the maximum scroll offset.
func (v *View) maxScrollOffset() int {
	return max(len(v.buildContent())-v.visibleLines(), 0)
}

// buildContent builds the content lines for display.
func (v *View) buildContent() []string {
	a := v.analysis
	if a == nil {
		return nil
	}

	lines := []string{
		v.formatField("Document", a.Filename),
		v.formatField("Words", humanize.Comma(int64(a.Stats.Words))),
		v.formatField("Characters", humanize.Comma(int64(a.Stats.Characters))),
		v.formatField("Sentences", fmt.Sprintf("%d", a.Stats.Sentences)),
		v.formatField("Paragraphs", fmt.Sprintf("%d", a.Stats.Paragraphs)),
		v.formatField("Reading", fmt.Sprintf("%.1f min", a.ReadingMinutes)),
		"",
		"Readability:",
		fmt.Sprintf("  flesch reading ease: %.1f", a.Readability.FleschReadingEase),
		fmt.Sprintf("  avg sentence length: %.1f words", a.Readability.AvgSentenceLength),
		fmt.Sprintf("  avg word length: %.1f chars", a.Readability.AvgWordLength),
	}

	if len(a.Topics) > 0 {
		lines = append(lines, "", "Topics:", "  "+strings.Join(a.Topics, ", "))
	}

	if len(a.TopWords) > 0 {
		lines = append(lines, "", "Top words:")
		for _, w := range a.TopWords {
			lines = append(lines, fmt.Sprintf("  %s: %d", w.Word, w.Count))
		}
	}

	entities := []struct {
		label  string
		values []string
	}{
		{"dates", a.Entities.Dates},
		{"numbers", a.Entities.Numbers},
		{"emails", a.Entities.Emails},
		{"urls", a.Entities.URLs},
		{"names", a.Entities.CapitalizedWords},
	}
	header := false
	for _, e := range entities {
		if len(e.values) == 0 {
			continue
		}
		if !header {
			lines = append(lines, "", "Entities:")
			header = true
		}
		values := e.values
		if len(values) > maxEntities {
			values = values[:maxEntities]
		}
		lines = append(lines, fmt.Sprintf("  %s: %s", e.label, strings.Join(values, ", ")))
	}

	return lines
}

// formatField formats a field for display.
func (v *View) formatField(label, value string) string {
	return fmt.Sprintf("%-12s %s", label+":", value)
}

// View renders the document analysis view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Document Analysis"))
	b.WriteString("\n")

	b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 0)))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.analysis == nil {
		b.WriteString(v.styles.Muted.Render("No analysis available"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	lines := v.buildContent()
	visibleLines := v.visibleLines()
	for i := v.scrollOffset; i < len(lines) && i < v.scrollOffset+visibleLines; i++ {
		b.WriteString(v.renderLine(lines[i]))
		b.WriteString("\n")
	}

	if len(lines) > visibleLines {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [Line %d-%d of %d]",
			v.scrollOffset+1,
			min(v.scrollOffset+visibleLines, len(lines)),
			len(lines))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderLine styles section headers, nested values and fields differently.
func (v *View) renderLine(line string) string {
	switch {
	case strings.HasSuffix(line, ":") && !strings.HasPrefix(line, " "):
		return v.styles.Subtitle.Render(line)
	case strings.HasPrefix(line, "  "):
		if label, value, ok := strings.Cut(line, ":"); ok {
			return v.styles.Muted.Render(label+":") + v.styles.Normal.Render(value)
		}
		return v.styles.Muted.Render(line)
	default:
		if label, value, ok := strings.Cut(line, ":"); ok {
			return v.styles.Subtitle.Render(label+":") + v.styles.Normal.Render(value)
		}
		return v.styles.Normal.Render(line)
	}
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] scroll  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Analysis returns the current analysis.
func (v *View) Analysis() *domain.DocumentAnalysis {
	return v.analysis
}

// ScrollOffset returns the index of the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
