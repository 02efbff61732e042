// Package settings edits providers and retrieval knobs from the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driving"
)

// Section is the page of the settings view being shown.
type Section int

const (
	SectionOverview Section = iota
	SectionEmbedding
	SectionLLM
	SectionRAG
)

// ragField is one retrieval knob, adjusted in steps with h and l.
type ragField struct {
	label string
	step  float64
	get   func(r *domain.RAGSettings) float64
	set   func(r *domain.RAGSettings, v float64)
}

func intField(label string, step int, field func(r *domain.RAGSettings) *int) ragField {
	return ragField{
		label: label,
		step:  float64(step),
		get:   func(r *domain.RAGSettings) float64 { return float64(*field(r)) },
		set:   func(r *domain.RAGSettings, v float64) { *field(r) = int(v) },
	}
}

var ragFields = []ragField{
	intField("Max documents", 1, func(r *domain.RAGSettings) *int { return &r.MaxDocuments }),
	intField("Chunk size", 100, func(r *domain.RAGSettings) *int { return &r.ChunkSize }),
	intField("Chunk overlap", 50, func(r *domain.RAGSettings) *int { return &r.ChunkOverlap }),
	intField("Top K", 1, func(r *domain.RAGSettings) *int { return &r.TopK }),
	{
		label: "Min similarity",
		step:  0.05,
		get:   func(r *domain.RAGSettings) float64 { return r.MinSimilarity },
		set:   func(r *domain.RAGSettings, v float64) { r.MinSimilarity = v },
	},
	intField("Prompt budget", 1000, func(r *domain.RAGSettings) *int { return &r.PromptBudget }),
	intField("History length", 1, func(r *domain.RAGSettings) *int { return &r.HistoryLength }),
}

var errNoSettings = errors.New("settings service not available")

// providerPicker is the page for choosing one kind of provider.
type providerPicker struct {
	title     string
	providers []domain.AIProvider
	models    map[domain.AIProvider]string
	current   func(*domain.AppSettings) domain.AIProvider
	apiKey    *textinput.Model
	save      func(svc driving.SettingsService, p domain.AIProvider, model, apiKey string) error
}

// View has an overview page listing the current configuration and one
// page per editable area. Nothing is saved until enter is pressed on a
// page; esc discards pending edits.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.AppSettings
	err      error
	notice   string

	section      Section
	selected     int
	focusedField int // 1 while the API key input has focus

	embeddingAPIKeyInput textinput.Model
	llmAPIKeyInput       textinput.Model

	rag domain.RAGSettings // pending retrieval edits

	width  int
	height int
	ready  bool
}

func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:               s,
		settingsService:      settingsService,
		section:              SectionOverview,
		embeddingAPIKeyInput: newAPIKeyInput(),
		llmAPIKeyInput:       newAPIKeyInput(),
	}
}

func newAPIKeyInput() textinput.Model {
	in := textinput.New()
	in.Placeholder = "Enter API key"
	in.EchoMode = textinput.EchoPassword
	in.CharLimit = 256
	return in
}

func (v *View) picker() *providerPicker {
	switch v.section {
	case SectionEmbedding:
		return &providerPicker{
			title:     "Select Embedding Provider",
			providers: domain.AllEmbeddingProviders(),
			models:    domain.DefaultEmbeddingModels(),
			current:   func(s *domain.AppSettings) domain.AIProvider { return s.Embedding.Provider },
			apiKey:    &v.embeddingAPIKeyInput,
			save:      driving.SettingsService.SetEmbeddingProvider,
		}
	case SectionLLM:
		return &providerPicker{
			title:     "Select LLM Provider",
			providers: domain.AllLLMProviders(),
			models:    domain.DefaultLLMModels(),
			current:   func(s *domain.AppSettings) domain.AIProvider { return s.LLM.Provider },
			apiKey:    &v.llmAPIKeyInput,
			save:      driving.SettingsService.SetLLMProvider,
		}
	}
	return nil
}

// Init loads the settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: errNoSettings}
		}
		settings, err := svc.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.SettingsLoaded:
		v.err = msg.Err
		if msg.Err == nil {
			v.settings = msg.Settings
			v.rag = msg.Settings.RAG
		}

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.Reset()
		v.notice = "Settings saved. Restart DocPilot to apply provider changes."
		return v, v.loadSettings()

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == "esc" {
		if v.section == SectionOverview {
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
		}
		v.Reset()
		if v.settings != nil {
			v.rag = v.settings.RAG
		}
		return v, nil
	}

	switch v.section {
	case SectionOverview:
		v.overviewKey(msg.String())
		return v, nil
	case SectionRAG:
		return v, v.ragKey(msg.String())
	}
	return v, v.pickerKey(v.picker(), msg)
}

// move shifts the selection for up and down keys within n rows and
// reports whether key was one of them.
func (v *View) move(key string, n int) bool {
	switch key {
	case "up", "k":
		v.selected = max(v.selected-1, 0)
	case "down", "j":
		v.selected = min(v.selected+1, n-1)
	default:
		return false
	}
	return true
}

func (v *View) overviewKey(key string) {
	if v.move(key, 3) || key != "enter" {
		return
	}
	v.notice = ""
	v.section = [...]Section{SectionEmbedding, SectionLLM, SectionRAG}[v.selected]
	v.selected = 0
	if p := v.picker(); p != nil && v.settings != nil {
		v.selected = max(indexOf(p.providers, p.current(v.settings)), 0)
	}
}

func (v *View) pickerKey(p *providerPicker, msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if v.selected < 0 || v.selected >= len(p.providers) {
		v.selected = 0
	}
	provider := p.providers[v.selected]

	if v.focusedField == 1 {
		switch key {
		case "tab", "shift+tab":
			v.focusedField = 0
			p.apiKey.Blur()
			return nil
		case "enter":
			return v.saveProvider(p, provider, p.apiKey.Value())
		}
		var cmd tea.Cmd
		*p.apiKey, cmd = p.apiKey.Update(msg)
		return cmd
	}

	if v.move(key, len(p.providers)) {
		return nil
	}
	switch key {
	case "tab", "enter":
		if provider.RequiresAPIKey() {
			v.focusedField = 1
			return p.apiKey.Focus()
		}
		if key == "enter" {
			return v.saveProvider(p, provider, "")
		}
	}
	return nil
}

func (v *View) ragKey(key string) tea.Cmd {
	if v.move(key, len(ragFields)) {
		return nil
	}
	f := ragFields[v.selected]
	switch key {
	case "right", "l", "+":
		f.set(&v.rag, f.get(&v.rag)+f.step)
	case "left", "h", "-":
		f.set(&v.rag, f.get(&v.rag)-f.step)
	case "enter":
		return v.setRAG(v.rag)
	}
	return nil
}

// save runs fn against the settings service off the UI goroutine.
func (v *View) save(fn func(driving.SettingsService) error) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Err: errNoSettings}
		}
		return messages.SettingsSaved{Err: fn(svc)}
	}
}

func (v *View) saveProvider(p *providerPicker, provider domain.AIProvider, apiKey string) tea.Cmd {
	model := p.models[provider]
	return v.save(func(svc driving.SettingsService) error {
		return p.save(svc, provider, model, apiKey)
	})
}

func (v *View) setRAG(rag domain.RAGSettings) tea.Cmd {
	return v.save(func(svc driving.SettingsService) error { return svc.SetRAG(rag) })
}

func indexOf(providers []domain.AIProvider, p domain.AIProvider) int {
	for i := range providers {
		if providers[i] == p {
			return i
		}
	}
	return -1
}

func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Settings") + "\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: "+v.err.Error()) + "\n\n")
	case v.notice != "":
		b.WriteString(v.styles.Success.Render(v.notice) + "\n\n")
	}

	if v.settings == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		return b.String()
	}

	switch v.section {
	case SectionOverview:
		v.renderOverview(&b)
	case SectionRAG:
		v.renderRAG(&b)
	default:
		v.renderPicker(&b, v.picker())
	}

	b.WriteString("\n" + v.styles.Help.Render(v.helpLine()))
	return b.String()
}

// row renders one selectable line with a cursor marker.
func (v *View) row(b *strings.Builder, highlighted bool, text string) {
	if highlighted {
		b.WriteString(v.styles.Selected.Render("> "+text) + "\n")
		return
	}
	b.WriteString(v.styles.Normal.Render("  "+text) + "\n")
}

func (v *View) renderOverview(b *strings.Builder) {
	s := v.settings
	lines := []string{
		fmt.Sprintf("Embedding Provider: %s (%s) %s",
			s.Embedding.Provider.Description(), s.Embedding.Model, v.configured(s.Embedding.IsConfigured())),
		fmt.Sprintf("LLM Provider: %s (%s) %s",
			s.LLM.Provider.Description(), s.LLM.Model, v.configured(s.LLM.IsConfigured())),
		fmt.Sprintf("Retrieval: top %d, chunks of %d/%d, up to %d documents",
			s.RAG.TopK, s.RAG.ChunkSize, s.RAG.ChunkOverlap, s.RAG.MaxDocuments),
	}
	for i, line := range lines {
		v.row(b, i == v.selected, line)
	}

	b.WriteString("\n" + v.styles.Muted.Render(fmt.Sprintf("Storage: %s  Session TTL: %s",
		s.Storage.Backend, s.Session.TTL)) + "\n")

	if v.settingsService == nil {
		return
	}
	if err := v.settingsService.Validate(); err != nil {
		b.WriteString(v.styles.Warning.Render("Warning: " + err.Error()))
	} else {
		b.WriteString(v.styles.Success.Render("Configuration is valid"))
	}
}

func (v *View) configured(ok bool) string {
	if ok {
		return v.styles.Success.Render("[configured]")
	}
	return v.styles.Warning.Render("[needs API key]")
}

func (v *View) renderPicker(b *strings.Builder, p *providerPicker) {
	b.WriteString(v.styles.Subtitle.Render(p.title) + "\n\n")

	current := p.current(v.settings)
	for i, provider := range p.providers {
		label := provider.Description()
		if provider == current {
			label += v.styles.Success.Render(" (current)")
		}
		v.row(b, i == v.selected && v.focusedField == 0, label)
		if model, ok := p.models[provider]; ok {
			b.WriteString(v.styles.Muted.Render("    Model: "+model) + "\n")
		}
	}

	if v.selected >= 0 && v.selected < len(p.providers) && p.providers[v.selected].RequiresAPIKey() {
		b.WriteString("\n" + v.styles.Normal.Render("API Key:") + "\n" + p.apiKey.View() + "\n")
	}
}

func (v *View) renderRAG(b *strings.Builder) {
	b.WriteString(v.styles.Subtitle.Render("Retrieval Settings") + "\n\n")

	for i, f := range ragFields {
		value := fmt.Sprintf("%d", int(f.get(&v.rag)))
		if f.step < 1 {
			value = fmt.Sprintf("%.2f", f.get(&v.rag))
		}
		v.row(b, i == v.selected, fmt.Sprintf("%-16s %s", f.label, value))
	}

	if err := v.rag.Validate(); err != nil {
		b.WriteString("\n" + v.styles.Warning.Render(err.Error()) + "\n")
	}
}

func (v *View) helpLine() string {
	switch {
	case v.section == SectionOverview:
		return "[j/k] navigate  [enter] edit  [esc] back"
	case v.section == SectionRAG:
		return "[j/k] navigate  [h/l] adjust  [enter] save  [esc] discard"
	case v.focusedField == 1:
		return "[tab] back to list  [enter] save  [esc] back"
	}
	return "[j/k] navigate  [tab] API key  [enter] select  [esc] back"
}

func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Settings returns the last loaded settings, nil until loaded.
func (v *View) Settings() *domain.AppSettings {
	return v.settings
}

func (v *View) Section() Section {
	return v.section
}

// Selected is the cursor row within the current section.
func (v *View) Selected() int {
	return v.selected
}

// PendingRAG returns the unsaved retrieval edits.
func (v *View) PendingRAG() domain.RAGSettings {
	return v.rag
}

func (v *View) Err() error {
	return v.err
}

// Reset returns to the overview and clears both API key inputs.
func (v *View) Reset() {
	v.section = SectionOverview
	v.selected = 0
	v.focusedField = 0
	v.err = nil
	v.notice = ""
	for _, in := range []*textinput.Model{&v.embeddingAPIKeyInput, &v.llmAPIKeyInput} {
		in.SetValue("")
		in.Blur()
	}
}
