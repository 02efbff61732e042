// Package documents lists the library and offers per-document actions.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driving"
)

// ActionOption is an entry of the per-document menu.
type ActionOption int

const (
	ActionShowContent ActionOption = iota
	ActionAnalyze
	ActionChat
	ActionDelete
	ActionCancel
)

var actionLabels = [...]string{
	ActionShowContent: "Show Content",
	ActionAnalyze:     "Analyze",
	ActionChat:        "Chat about this document",
	ActionDelete:      "Delete",
	ActionCancel:      "Cancel",
}

var errNoCopilot = errors.New("copilot service not available")

// View shows the library as a table. Enter opens an action menu for the
// highlighted row; deleting asks for confirmation first.
type View struct {
	styles  *styles.Styles
	copilot driving.CopilotService
	ctx     context.Context

	documents []domain.Document
	table     table.Model
	width     int
	ready     bool
	loading   bool
	err       error

	showingMenu   bool
	menuSelected  ActionOption
	confirmDelete bool
}

// NewView creates an empty library view.
func NewView(s *styles.Styles, copilot driving.CopilotService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ts := table.DefaultStyles()
	ts.Header = ts.Header.Inherit(s.Subtitle)
	ts.Selected = s.Selected

	v := &View{
		styles:    s,
		copilot:   copilot,
		ctx:       context.Background(),
		documents: []domain.Document{},
		table:     table.New(table.WithFocused(true), table.WithStyles(ts)),
	}
	v.layout(80, 24)
	return v
}

func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init lists the documents.
func (v *View) Init() tea.Cmd {
	return v.Load()
}

// Load closes any menu and returns a command that lists the documents.
func (v *View) Load() tea.Cmd {
	v.loading = true
	v.err = nil
	v.showingMenu = false
	v.confirmDelete = false

	copilot, ctx := v.copilot, v.ctx
	return func() tea.Msg {
		if copilot == nil {
			return messages.DocumentsLoaded{Err: errNoCopilot}
		}
		docs, err := copilot.ListDocuments(ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		if v.showingMenu {
			return v.updateMenu(msg)
		}
		return v.updateList(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.setDocuments(msg.Documents)
		}

	case messages.DocumentDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.Load()

	case messages.ErrorOccurred:
		v.err = msg.Err
	}
	return v, nil
}

func (v *View) setDocuments(docs []domain.Document) {
	cursor := v.table.Cursor()
	v.documents = docs

	rows := make([]table.Row, len(docs))
	for i, d := range docs {
		rows[i] = table.Row{
			d.Filename,
			string(d.ContentType),
			humanize.Bytes(uint64(max(d.SizeBytes, 0))),
			strconv.Itoa(len(d.ChunkIDs)) + " chunks",
			humanize.Time(d.CreatedAt),
		}
	}
	v.table.SetRows(rows)
	if len(rows) > 0 {
		v.table.SetCursor(min(max(cursor, 0), len(rows)-1))
	}
}

func (v *View) updateList(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if v.SelectedDocument() != nil {
			v.showingMenu = true
			v.menuSelected = ActionShowContent
		}
		return v, nil
	case "esc":
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	case "r":
		return v, v.Load()
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func (v *View) updateMenu(msg tea.KeyMsg) (*View, tea.Cmd) {
	doc := v.SelectedDocument()
	if doc == nil {
		v.showingMenu = false
		return v, nil
	}

	if v.confirmDelete {
		v.confirmDelete = false
		if k := msg.String(); k == "y" || k == "Y" {
			v.showingMenu = false
			return v, v.deleteDocument(doc.ID)
		}
		return v, nil
	}

	switch msg.String() {
	case "up", "k":
		v.menuSelected = max(v.menuSelected-1, ActionShowContent)
	case "down", "j":
		v.menuSelected = min(v.menuSelected+1, ActionCancel)
	case "esc":
		v.showingMenu = false
	case "enter":
		return v, v.choose(*doc)
	}
	return v, nil
}

func (v *View) choose(doc domain.Document) tea.Cmd {
	if v.menuSelected == ActionDelete {
		v.confirmDelete = true
		return nil
	}

	v.showingMenu = false
	switch v.menuSelected {
	case ActionShowContent:
		return func() tea.Msg { return messages.DocumentSelected{Document: doc} }
	case ActionAnalyze:
		return v.analyze(doc.ID)
	case ActionChat:
		return func() tea.Msg { return messages.ChatScopeRequested{DocumentIDs: []string{doc.ID}} }
	}
	return nil
}

func (v *View) analyze(docID string) tea.Cmd {
	copilot, ctx := v.copilot, v.ctx
	return func() tea.Msg {
		if copilot == nil {
			return messages.ErrorOccurred{Err: errNoCopilot}
		}
		analysis, err := copilot.Analyze(ctx, docID)
		return messages.AnalysisLoaded{DocumentID: docID, Analysis: analysis, Err: err}
	}
}

func (v *View) deleteDocument(docID string) tea.Cmd {
	copilot, ctx := v.copilot, v.ctx
	return func() tea.Msg {
		if copilot == nil {
			return messages.DocumentDeleted{DocumentID: docID, Err: errNoCopilot}
		}
		return messages.DocumentDeleted{DocumentID: docID, Err: copilot.DeleteDocument(ctx, docID)}
	}
}

func (v *View) View() string {
	var b strings.Builder

	var total int64
	for i := range v.documents {
		total += v.documents[i].SizeBytes
	}
	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Documents (%d, %s)",
		len(v.documents), humanize.Bytes(uint64(max(total, 0))))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.documents) == 0:
		b.WriteString(v.styles.Muted.Render("No documents uploaded yet. Use `docpilot upload <file>` to add some."))
	case v.showingMenu:
		b.WriteString(v.renderMenu())
		return b.String()
	default:
		b.WriteString(v.table.View())
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] actions  [r] reload  [esc] back"))
	return b.String()
}

func (v *View) renderMenu() string {
	var b strings.Builder

	if doc := v.SelectedDocument(); doc != nil {
		b.WriteString(v.styles.Subtitle.Render("Actions for: "+doc.Filename) + "\n")
		b.WriteString(v.styles.Muted.Render("Uploaded "+humanize.Time(doc.CreatedAt)) + "\n\n")
	}

	for action, label := range actionLabels {
		if ActionOption(action) == v.menuSelected {
			b.WriteString(v.styles.Selected.Render("> " + label))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.confirmDelete {
		b.WriteString(v.styles.Warning.Render("Delete this document and its chunks? [y/N]"))
	} else {
		b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] select  [esc] cancel"))
	}
	return b.String()
}

func (v *View) SetDimensions(width, height int) {
	v.ready = true
	v.layout(width, height)
}

// layout fits the table to the window. The name column takes what the
// fixed columns leave over.
func (v *View) layout(width, height int) {
	v.width = width
	v.table.SetColumns([]table.Column{
		{Title: "Name", Width: max(width-50, 12)},
		{Title: "Type", Width: 6},
		{Title: "Size", Width: 9},
		{Title: "Chunks", Width: 11},
		{Title: "Uploaded", Width: 16},
	})
	v.table.SetWidth(width)
	v.table.SetHeight(max(height-6, 3))
}

func (v *View) Documents() []domain.Document {
	return v.documents
}

// SelectedIndex is the highlighted row.
func (v *View) SelectedIndex() int {
	return v.table.Cursor()
}

// SelectedDocument is the highlighted document, or nil when the list is empty.
func (v *View) SelectedDocument() *domain.Document {
	i := v.table.Cursor()
	if i < 0 || i >= len(v.documents) {
		return nil
	}
	return &v.documents[i]
}

func (v *View) IsShowingMenu() bool {
	return v.showingMenu
}

func (v *View) IsConfirmingDelete() bool {
	return v.confirmDelete
}

func (v *View) Loading() bool {
	return v.loading
}

func (v *View) Err() error {
	return v.err
}
