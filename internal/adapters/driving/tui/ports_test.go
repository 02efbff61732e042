package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driving"
)

// MockCopilotService implements driving.CopilotService for testing.
type MockCopilotService struct {
	ListDocumentsFunc func(ctx context.Context) ([]domain.Document, error)
	AskFunc           func(ctx context.Context, sessionID, message string) (*domain.Answer, error)
	AnalyzeFunc       func(ctx context.Context, id string) (*domain.DocumentAnalysis, error)
}

func (m *MockCopilotService) Upload(context.Context, []domain.UploadFile) ([]domain.Document, error) {
	return nil, nil
}

func (m *MockCopilotService) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	if m.ListDocumentsFunc != nil {
		return m.ListDocumentsFunc(ctx)
	}
	return nil, nil
}

func (m *MockCopilotService) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	return &domain.Document{ID: id, Content: "content of " + id}, nil
}

func (m *MockCopilotService) DeleteDocument(context.Context, string) error {
	return nil
}

func (m *MockCopilotService) Ask(ctx context.Context, sessionID, message string) (*domain.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, sessionID, message)
	}
	return &domain.Answer{SessionID: sessionID, Response: "ok"}, nil
}

func (m *MockCopilotService) GetSummary(_ context.Context, sessionID string) (*domain.Answer, error) {
	return &domain.Answer{SessionID: sessionID, Response: "summary"}, nil
}

func (m *MockCopilotService) GetComparison(context.Context, string) (*domain.ComparisonReport, error) {
	return nil, domain.ErrInvalidInput
}

func (m *MockCopilotService) GetInsights(context.Context) (*domain.Insights, error) {
	return &domain.Insights{}, nil
}

func (m *MockCopilotService) Analyze(ctx context.Context, id string) (*domain.DocumentAnalysis, error) {
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, id)
	}
	return &domain.DocumentAnalysis{DocumentID: id}, nil
}

// MockSessionService implements driving.SessionService for testing.
type MockSessionService struct {
	scoped []string
}

func (m *MockSessionService) Create(context.Context) (*domain.SessionInfo, error) {
	return &domain.SessionInfo{ID: "sess-1"}, nil
}

func (m *MockSessionService) Get(_ context.Context, id string) (*domain.SessionInfo, error) {
	return &domain.SessionInfo{ID: id, Scoped: len(m.scoped) > 0, DocumentIDs: m.scoped}, nil
}

func (m *MockSessionService) History(context.Context, string) ([]domain.Turn, error) {
	return nil, nil
}

func (m *MockSessionService) Scope(_ context.Context, _ string, documentIDs []string) error {
	m.scoped = documentIDs
	return nil
}

func (m *MockSessionService) ClearConversation(context.Context, string) error {
	return nil
}

func (m *MockSessionService) Delete(context.Context, string) error {
	return nil
}

func TestNewPorts(t *testing.T) {
	copilot := &MockCopilotService{}
	sessions := &MockSessionService{}

	ports := NewPorts(copilot, sessions)

	require.NotNil(t, ports)
	assert.Equal(t, copilot, ports.Copilot)
	assert.Equal(t, sessions, ports.Sessions)
	assert.Nil(t, ports.Settings)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{
			name:  "all required ports",
			ports: NewPorts(&MockCopilotService{}, &MockSessionService{}),
		},
		{
			name:    "missing copilot",
			ports:   &Ports{Sessions: &MockSessionService{}},
			wantErr: ErrMissingCopilotService,
		},
		{
			name:    "missing sessions",
			ports:   &Ports{Copilot: &MockCopilotService{}},
			wantErr: ErrMissingSessionService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMocks_ImplementInterfaces(t *testing.T) {
	var _ driving.CopilotService = (*MockCopilotService)(nil)
	var _ driving.SessionService = (*MockSessionService)(nil)
}
