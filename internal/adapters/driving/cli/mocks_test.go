package cli

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// MockCopilotService implements driving.CopilotService with function fields.
type MockCopilotService struct {
	UploadFunc        func(ctx context.Context, files []domain.UploadFile) ([]domain.Document, error)
	ListDocumentsFunc func(ctx context.Context) ([]domain.Document, error)
	GetDocumentFunc   func(ctx context.Context, id string) (*domain.Document, error)
	DeleteFunc        func(ctx context.Context, id string) error
	AskFunc           func(ctx context.Context, sessionID, message string) (*domain.Answer, error)
	SummaryFunc       func(ctx context.Context, sessionID string) (*domain.Answer, error)
	ComparisonFunc    func(ctx context.Context, sessionID string) (*domain.ComparisonReport, error)
	InsightsFunc      func(ctx context.Context) (*domain.Insights, error)
	AnalyzeFunc       func(ctx context.Context, documentID string) (*domain.DocumentAnalysis, error)
}

func (m *MockCopilotService) Upload(ctx context.Context, files []domain.UploadFile) ([]domain.Document, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, files)
	}
	docs := make([]domain.Document, len(files))
	for i, f := range files {
		docs[i] = domain.Document{
			ID:          "doc-" + f.Filename,
			Filename:    f.Filename,
			SizeBytes:   int64(len(f.Data)),
			ContentType: domain.ContentTypeText,
			ChunkIDs:    []string{"c0"},
			CreatedAt:   testTime,
		}
	}
	return docs, nil
}

func (m *MockCopilotService) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	if m.ListDocumentsFunc != nil {
		return m.ListDocumentsFunc(ctx)
	}
	return []domain.Document{}, nil
}

func (m *MockCopilotService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	if m.GetDocumentFunc != nil {
		return m.GetDocumentFunc(ctx, id)
	}
	return &domain.Document{ID: id, Filename: id + ".txt", ContentType: domain.ContentTypeText, CreatedAt: testTime}, nil
}

func (m *MockCopilotService) DeleteDocument(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockCopilotService) Ask(ctx context.Context, sessionID, message string) (*domain.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, sessionID, message)
	}
	return &domain.Answer{SessionID: "sess-1", Response: "answer to " + message}, nil
}

func (m *MockCopilotService) GetSummary(ctx context.Context, sessionID string) (*domain.Answer, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx, sessionID)
	}
	return &domain.Answer{SessionID: "sess-1", Response: "summary"}, nil
}

func (m *MockCopilotService) GetComparison(ctx context.Context, sessionID string) (*domain.ComparisonReport, error) {
	if m.ComparisonFunc != nil {
		return m.ComparisonFunc(ctx, sessionID)
	}
	return &domain.ComparisonReport{Answer: &domain.Answer{SessionID: "sess-1", Response: "comparison"}}, nil
}

func (m *MockCopilotService) GetInsights(ctx context.Context) (*domain.Insights, error) {
	if m.InsightsFunc != nil {
		return m.InsightsFunc(ctx)
	}
	return &domain.Insights{}, nil
}

func (m *MockCopilotService) Analyze(ctx context.Context, documentID string) (*domain.DocumentAnalysis, error) {
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, documentID)
	}
	return &domain.DocumentAnalysis{DocumentID: documentID, Filename: documentID + ".txt"}, nil
}

// MockSessionService implements driving.SessionService with function fields.
type MockSessionService struct {
	CreateFunc  func(ctx context.Context) (*domain.SessionInfo, error)
	GetFunc     func(ctx context.Context, id string) (*domain.SessionInfo, error)
	HistoryFunc func(ctx context.Context, id string) ([]domain.Turn, error)
	ScopeFunc   func(ctx context.Context, id string, documentIDs []string) error
	ClearFunc   func(ctx context.Context, id string) error
	DeleteFunc  func(ctx context.Context, id string) error
}

func (m *MockSessionService) Create(ctx context.Context) (*domain.SessionInfo, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx)
	}
	return &domain.SessionInfo{ID: "sess-1", CreatedAt: testTime, UpdatedAt: testTime}, nil
}

func (m *MockSessionService) Get(ctx context.Context, id string) (*domain.SessionInfo, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return &domain.SessionInfo{ID: id, CreatedAt: testTime, UpdatedAt: testTime}, nil
}

func (m *MockSessionService) History(ctx context.Context, id string) ([]domain.Turn, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockSessionService) Scope(ctx context.Context, id string, documentIDs []string) error {
	if m.ScopeFunc != nil {
		return m.ScopeFunc(ctx, id, documentIDs)
	}
	return nil
}

func (m *MockSessionService) ClearConversation(ctx context.Context, id string) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx, id)
	}
	return nil
}

func (m *MockSessionService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockSettingsService implements driving.SettingsService with function fields.
type MockSettingsService struct {
	Settings domain.AppSettings

	ValidateErr error
	SetRAGFunc  func(rag domain.RAGSettings) error

	EmbeddingSet  domain.AIProvider
	EmbeddingKey  string
	LLMSet        domain.AIProvider
	LLMModel      string
	LLMKey        string
	ValidateCalls int
}

func newMockSettingsService() *MockSettingsService {
	return &MockSettingsService{Settings: domain.DefaultAppSettings()}
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.Settings
	return &s, nil
}

func (m *MockSettingsService) Save(settings *domain.AppSettings) error {
	m.Settings = *settings
	return nil
}

func (m *MockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.EmbeddingSet = provider
	m.EmbeddingKey = apiKey
	m.Settings.Embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *MockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.LLMSet = provider
	m.LLMModel = model
	m.LLMKey = apiKey
	m.Settings.LLM = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *MockSettingsService) SetRAG(rag domain.RAGSettings) error {
	if m.SetRAGFunc != nil {
		return m.SetRAGFunc(rag)
	}
	if err := rag.Validate(); err != nil {
		return err
	}
	m.Settings.RAG = rag
	return nil
}

func (m *MockSettingsService) Validate() error {
	m.ValidateCalls++
	return m.ValidateErr
}

func (m *MockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *MockSettingsService) ValidateEmbeddingConfig() error {
	return nil
}

func (m *MockSettingsService) ValidateLLMConfig() error {
	return nil
}

// testServices are the mocks installed by setupTestServices.
type testServices struct {
	copilot  *MockCopilotService
	sessions *MockSessionService
	settings *MockSettingsService
}

// setupTestServices installs fresh mocks and returns them with a cleanup
// function restoring the previous services.
func setupTestServices() (*testServices, func()) {
	oldCopilot, oldSessions, oldSettings, oldSupported := copilotService, sessionService, settingsService, supportedFile

	ts := &testServices{
		copilot:  &MockCopilotService{},
		sessions: &MockSessionService{},
		settings: newMockSettingsService(),
	}
	SetServices(Services{
		Copilot:  ts.copilot,
		Sessions: ts.sessions,
		Settings: ts.settings,
		Supports: func(name string) bool {
			return strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".pdf")
		},
	})

	return ts, func() {
		copilotService, sessionService, settingsService, supportedFile = oldCopilot, oldSessions, oldSettings, oldSupported
	}
}

// executeCommand runs the root command with args and returns its output.
// Flags are reset afterwards so values do not leak between tests.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue) //nolint:errcheck // defaults always parse
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
