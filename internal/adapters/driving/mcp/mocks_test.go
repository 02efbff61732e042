package mcp

import (
	"context"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// mockCopilotService is a mock implementation of driving.CopilotService.
type mockCopilotService struct {
	documents  []domain.Document
	document   *domain.Document
	answer     *domain.Answer
	comparison *domain.ComparisonReport
	insights   *domain.Insights
	analysis   *domain.DocumentAnalysis
	err        error

	uploaded  []domain.UploadFile
	sessionID string
	question  string
	deleted   string
}

func (m *mockCopilotService) Upload(_ context.Context, files []domain.UploadFile) ([]domain.Document, error) {
	m.uploaded = append(m.uploaded, files...)
	if m.err != nil {
		return nil, m.err
	}
	docs := make([]domain.Document, len(files))
	for i, f := range files {
		docs[i] = domain.Document{ID: "doc-" + f.Filename, Filename: f.Filename, SizeBytes: int64(len(f.Data))}
	}
	return docs, nil
}

func (m *mockCopilotService) ListDocuments(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockCopilotService) GetDocument(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockCopilotService) DeleteDocument(_ context.Context, id string) error {
	m.deleted = id
	return m.err
}

func (m *mockCopilotService) Ask(_ context.Context, sessionID, message string) (*domain.Answer, error) {
	m.sessionID = sessionID
	m.question = message
	return m.answer, m.err
}

func (m *mockCopilotService) GetSummary(_ context.Context, sessionID string) (*domain.Answer, error) {
	m.sessionID = sessionID
	return m.answer, m.err
}

func (m *mockCopilotService) GetComparison(_ context.Context, sessionID string) (*domain.ComparisonReport, error) {
	m.sessionID = sessionID
	return m.comparison, m.err
}

func (m *mockCopilotService) GetInsights(_ context.Context) (*domain.Insights, error) {
	return m.insights, m.err
}

func (m *mockCopilotService) Analyze(_ context.Context, _ string) (*domain.DocumentAnalysis, error) {
	return m.analysis, m.err
}

// mockSessionService is a mock implementation of driving.SessionService.
type mockSessionService struct {
	info  *domain.SessionInfo
	turns []domain.Turn
	err   error
}

func (m *mockSessionService) Create(_ context.Context) (*domain.SessionInfo, error) {
	return m.info, m.err
}

func (m *mockSessionService) Get(_ context.Context, _ string) (*domain.SessionInfo, error) {
	return m.info, m.err
}

func (m *mockSessionService) History(_ context.Context, _ string) ([]domain.Turn, error) {
	return m.turns, m.err
}

func (m *mockSessionService) Scope(_ context.Context, _ string, _ []string) error {
	return m.err
}

func (m *mockSessionService) ClearConversation(_ context.Context, _ string) error {
	return m.err
}

func (m *mockSessionService) Delete(_ context.Context, _ string) error {
	return m.err
}
