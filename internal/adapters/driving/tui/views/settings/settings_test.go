package settings

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// MockSettingsService is a mock implementation of driving.SettingsService.
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AppSettings), args.Error(1)
}

func (m *MockSettingsService) Save(settings *domain.AppSettings) error {
	args := m.Called(settings)
	return args.Error(0)
}

func (m *MockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	args := m.Called(provider, model, apiKey)
	return args.Error(0)
}

func (m *MockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	args := m.Called(provider, model, apiKey)
	return args.Error(0)
}

func (m *MockSettingsService) SetRAG(rag domain.RAGSettings) error {
	args := m.Called(rag)
	return args.Error(0)
}

func (m *MockSettingsService) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSettingsService) GetDefaults() domain.AppSettings {
	args := m.Called()
	return args.Get(0).(domain.AppSettings)
}

func (m *MockSettingsService) ValidateEmbeddingConfig() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSettingsService) ValidateLLMConfig() error {
	args := m.Called()
	return args.Error(0)
}

// Helper function to create test settings.
func testSettings() *domain.AppSettings {
	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "nomic-embed-text",
		BaseURL:  "http://localhost:11434",
	}
	settings.LLM = domain.LLMSettings{
		Provider: domain.AIProviderOpenAI,
		Model:    "gpt-4o-mini",
	}
	return &settings
}

// loadedView returns a view with testSettings applied.
func loadedView(svc *MockSettingsService) *View {
	view := NewView(styles.DefaultStyles(), svc)
	view.SetDimensions(100, 40)
	view, _ = view.Update(messages.SettingsLoaded{Settings: testSettings()})
	return view
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewView(t *testing.T) {
	mockService := new(MockSettingsService)

	view := NewView(nil, mockService)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.Equal(t, mockService, view.settingsService)
	assert.Equal(t, SectionOverview, view.Section())
	assert.Equal(t, 0, view.Selected())
	assert.Nil(t, view.Settings())
}

func TestView_Init_LoadsSettings(t *testing.T) {
	mockService := new(MockSettingsService)
	mockService.On("Get").Return(testSettings(), nil)

	view := NewView(nil, mockService)
	msg := view.Init()()

	loaded, ok := msg.(messages.SettingsLoaded)
	require.True(t, ok)
	require.NoError(t, loaded.Err)

	view, _ = view.Update(loaded)
	assert.Equal(t, domain.AIProviderOllama, view.Settings().Embedding.Provider)
	assert.Equal(t, domain.DefaultTopK, view.PendingRAG().TopK)
	mockService.AssertExpectations(t)
}

func TestView_Init_NoService(t *testing.T) {
	view := NewView(nil, nil)

	view, _ = view.Update(view.Init()())
	assert.Error(t, view.Err())
	assert.Contains(t, view.View(), "settings service not available")
}

func TestView_LoadError(t *testing.T) {
	mockService := new(MockSettingsService)
	mockService.On("Get").Return(nil, fmt.Errorf("corrupt config"))

	view := NewView(nil, mockService)
	view, _ = view.Update(view.Init()())

	assert.EqualError(t, view.Err(), "corrupt config")
	assert.Contains(t, view.View(), "Loading settings...")
}

func TestView_RenderOverview(t *testing.T) {
	mockService := new(MockSettingsService)
	mockService.On("Validate").Return(fmt.Errorf("config error: llm api key missing"))
	view := loadedView(mockService)

	out := view.View()
	assert.Contains(t, out, "Embedding Provider")
	assert.Contains(t, out, "nomic-embed-text")
	assert.Contains(t, out, "[needs API key]")
	assert.Contains(t, out, "top 5, chunks of 1000/200, up to 5 documents")
	assert.Contains(t, out, "Storage: sqlite")
	assert.Contains(t, out, "Warning: config error: llm api key missing")
}

func TestView_OverviewNavigation(t *testing.T) {
	mockService := new(MockSettingsService)
	view := loadedView(mockService)

	view, _ = view.Update(keyMsg("down"))
	view, _ = view.Update(keyMsg("down"))
	view, _ = view.Update(keyMsg("down"))
	assert.Equal(t, 2, view.Selected())

	view, _ = view.Update(keyMsg("k"))
	assert.Equal(t, 1, view.Selected())
}

func TestView_EscFromOverview(t *testing.T) {
	view := loadedView(new(MockSettingsService))

	_, cmd := view.Update(keyMsg("esc"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_EmbeddingSelectsCurrentProvider(t *testing.T) {
	view := loadedView(new(MockSettingsService))

	view, _ = view.Update(keyMsg("enter"))
	assert.Equal(t, SectionEmbedding, view.Section())
	// Ollama is second in the embedding provider list.
	assert.Equal(t, 1, view.Selected())
	assert.Contains(t, view.View(), "Select Embedding Provider")

	view, _ = view.Update(keyMsg("esc"))
	assert.Equal(t, SectionOverview, view.Section())
}

func TestView_SetLocalEmbeddingProvider(t *testing.T) {
	mockService := new(MockSettingsService)
	mockService.On("SetEmbeddingProvider", domain.AIProviderLocal, "hashed-bow", "").Return(nil)
	mockService.On("Get").Return(testSettings(), nil)
	mockService.On("Validate").Return(nil)
	view := loadedView(mockService)

	view, _ = view.Update(keyMsg("enter"))
	view, _ = view.Update(keyMsg("up"))
	view, cmd := view.Update(keyMsg("enter"))
	require.NotNil(t, cmd)

	view, reload := view.Update(cmd())
	require.NotNil(t, reload)
	assert.Equal(t, SectionOverview, view.Section())
	assert.Contains(t, view.View(), "Settings saved")
	mockService.AssertCalled(t, "SetEmbeddingProvider", domain.AIProviderLocal, "hashed-bow", "")
}

func TestView_SetLLMProviderWithAPIKey(t *testing.T) {
	mockService := new(MockSettingsService)
	mockService.On("SetLLMProvider", domain.AIProviderAnthropic, "claude-3-5-sonnet-latest", "sk-ant").Return(nil)
	view := loadedView(mockService)

	view, _ = view.Update(keyMsg("down"))
	view, _ = view.Update(keyMsg("enter"))
	require.Equal(t, SectionLLM, view.Section())

	// Anthropic is last and needs a key.
	view, _ = view.Update(keyMsg("down"))
	view, _ = view.Update(keyMsg("down"))
	view, _ = view.Update(keyMsg("enter"))
	assert.Equal(t, 1, view.focusedField)
	assert.Contains(t, view.View(), "API Key:")

	for _, r := range "sk-ant" {
		view, _ = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd := view.Update(keyMsg("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.SettingsSaved{}, cmd())
	mockService.AssertExpectations(t)
}

func TestView_TabLeavesAPIKey(t *testing.T) {
	view := loadedView(new(MockSettingsService))
	view, _ = view.Update(keyMsg("down"))
	view, _ = view.Update(keyMsg("enter"))

	// OpenAI is current and needs a key.
	view, _ = view.Update(keyMsg("tab"))
	assert.Equal(t, 1, view.focusedField)

	view, _ = view.Update(keyMsg("tab"))
	assert.Equal(t, 0, view.focusedField)
}

func TestView_SaveError(t *testing.T) {
	mockService := new(MockSettingsService)
	mockService.On("SetEmbeddingProvider", mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("config error: api key required"))
	view := loadedView(mockService)

	view, _ = view.Update(keyMsg("enter"))
	view, _ = view.Update(keyMsg("up"))
	view, cmd := view.Update(keyMsg("enter"))
	view, _ = view.Update(cmd())

	assert.EqualError(t, view.Err(), "config error: api key required")
	assert.Equal(t, SectionEmbedding, view.Section())
}

func TestView_EditRAG(t *testing.T) {
	mockService := new(MockSettingsService)
	view := loadedView(mockService)

	view, _ = view.Update(keyMsg("down"))
	view, _ = view.Update(keyMsg("down"))
	view, _ = view.Update(keyMsg("enter"))
	require.Equal(t, SectionRAG, view.Section())
	assert.Contains(t, view.View(), "Retrieval Settings")

	// Top K is the fourth field.
	for i := 0; i < 3; i++ {
		view, _ = view.Update(keyMsg("down"))
	}
	view, _ = view.Update(keyMsg("l"))
	view, _ = view.Update(keyMsg("+"))
	assert.Equal(t, domain.DefaultTopK+2, view.PendingRAG().TopK)

	// Min similarity moves in hundredths.
	view, _ = view.Update(keyMsg("down"))
	view, _ = view.Update(keyMsg("l"))
	assert.InDelta(t, 0.05, view.PendingRAG().MinSimilarity, 1e-9)

	want := view.PendingRAG()
	mockService.On("SetRAG", want).Return(nil)
	_, cmd := view.Update(keyMsg("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.SettingsSaved{}, cmd())
	mockService.AssertCalled(t, "SetRAG", want)
}

func TestView_EditRAG_ShowsValidation(t *testing.T) {
	view := loadedView(new(MockSettingsService))
	view.section = SectionRAG
	view.selected = 3

	for i := 0; i < domain.DefaultTopK; i++ {
		view, _ = view.Update(keyMsg("h"))
	}
	assert.Contains(t, view.View(), "top_k must be positive")
}

func TestView_EscDiscardsRAGEdits(t *testing.T) {
	view := loadedView(new(MockSettingsService))
	view.section = SectionRAG
	view, _ = view.Update(keyMsg("l"))
	require.Equal(t, domain.DefaultMaxDocuments+1, view.PendingRAG().MaxDocuments)

	view, _ = view.Update(keyMsg("esc"))
	assert.Equal(t, domain.DefaultMaxDocuments, view.PendingRAG().MaxDocuments)
	assert.Equal(t, SectionOverview, view.Section())
}

func TestView_NoServiceSave(t *testing.T) {
	view := NewView(nil, nil)

	msg := view.setRAG(domain.DefaultRAGSettings())()
	saved, ok := msg.(messages.SettingsSaved)
	require.True(t, ok)
	assert.Error(t, saved.Err)
}

func TestView_Reset(t *testing.T) {
	view := loadedView(new(MockSettingsService))
	view.section = SectionLLM
	view.selected = 2
	view.focusedField = 1
	view.llmAPIKeyInput.SetValue("secret")

	view.Reset()

	assert.Equal(t, SectionOverview, view.Section())
	assert.Equal(t, 0, view.Selected())
	assert.Equal(t, 0, view.focusedField)
	assert.Empty(t, view.llmAPIKeyInput.Value())
}

func TestView_WindowSize(t *testing.T) {
	view := NewView(nil, nil)

	view, _ = view.Update(tea.WindowSizeMsg{Width: 90, Height: 30})
	assert.True(t, view.ready)
	assert.Equal(t, 90, view.width)
}
