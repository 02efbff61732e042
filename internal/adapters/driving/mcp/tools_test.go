package mcp

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

func newTestServer(t *testing.T, copilot *mockCopilotService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Copilot: copilot})
	require.NoError(t, err)
	return server
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns grounded answer", func(t *testing.T) {
		copilot := &mockCopilotService{answer: &domain.Answer{
			SessionID:  "sess-1",
			Response:   "Paris.",
			Sources:    []string{"france.txt"},
			Confidence: 0.9,
		}}
		server := newTestServer(t, copilot)

		_, out, err := server.handleAsk(ctx, nil, AskInput{Question: "Capital?", SessionID: "sess-1"})

		require.NoError(t, err)
		assert.Equal(t, "sess-1", copilot.sessionID)
		assert.Equal(t, "Capital?", copilot.question)
		assert.Equal(t, "Paris.", out.Response)
		assert.Equal(t, []string{"france.txt"}, out.Sources)
		assert.InDelta(t, 0.9, out.Confidence, 1e-9)
	})

	t.Run("sources are never null", func(t *testing.T) {
		server := newTestServer(t, &mockCopilotService{answer: &domain.Answer{Response: "none"}})

		_, out, err := server.handleAsk(ctx, nil, AskInput{Question: "q"})

		require.NoError(t, err)
		assert.NotNil(t, out.Sources)
		assert.Empty(t, out.Sources)
	})

	t.Run("error carries its kind", func(t *testing.T) {
		server := newTestServer(t, &mockCopilotService{
			err: fmt.Errorf("%w: model timed out", domain.ErrGeneration),
		})

		_, _, err := server.handleAsk(ctx, nil, AskInput{Question: "q"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrGeneration)
		assert.Contains(t, err.Error(), domain.KindGeneration)
	})
}

func TestServer_handleUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads from path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0600))
		copilot := &mockCopilotService{}
		server := newTestServer(t, copilot)

		_, out, err := server.handleUpload(ctx, nil, UploadInput{Path: path})

		require.NoError(t, err)
		require.Len(t, copilot.uploaded, 1)
		assert.Equal(t, "notes.txt", copilot.uploaded[0].Filename)
		assert.Equal(t, []byte("hello"), copilot.uploaded[0].Data)
		assert.Equal(t, 1, out.Count)
		assert.Equal(t, "doc-notes.txt", out.Documents[0].ID)
	})

	t.Run("uploads base64 content", func(t *testing.T) {
		copilot := &mockCopilotService{}
		server := newTestServer(t, copilot)

		_, _, err := server.handleUpload(ctx, nil, UploadInput{
			Filename: "report.pdf",
			Content:  base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")),
			Base64:   true,
		})

		require.NoError(t, err)
		require.Len(t, copilot.uploaded, 1)
		assert.Equal(t, []byte("%PDF-1.4"), copilot.uploaded[0].Data)
	})

	t.Run("propagates service error", func(t *testing.T) {
		server := newTestServer(t, &mockCopilotService{
			err: fmt.Errorf("%w: .docx", domain.ErrUnsupportedType),
		})

		_, _, err := server.handleUpload(ctx, nil, UploadInput{Filename: "a.docx", Content: "x"})

		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
		assert.Contains(t, err.Error(), domain.KindInvalidInput)
	})
}

func TestUploadFile_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input UploadInput
	}{
		{"nothing", UploadInput{}},
		{"both path and content", UploadInput{Path: "/a.txt", Content: "x", Filename: "a.txt"}},
		{"content without filename", UploadInput{Content: "x"}},
		{"bad base64", UploadInput{Content: "!!!", Filename: "a.pdf", Base64: true}},
		{"missing path", UploadInput{Path: "/definitely/not/here.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uploadFile(tt.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestServer_handleListDocuments(t *testing.T) {
	summary := "A short summary."
	server := newTestServer(t, &mockCopilotService{documents: []domain.Document{
		{ID: "a", Filename: "a.txt", ContentType: domain.ContentTypeText, ChunkIDs: []string{"a_0", "a_1"}},
		{ID: "b", Filename: "b.md", ContentType: domain.ContentTypeMarkdown, Summary: &summary, Topics: []string{"cats"}},
	}})

	_, out, err := server.handleListDocuments(context.Background(), nil, struct{}{})

	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, 2, out.Documents[0].Chunks)
	assert.Equal(t, "txt", out.Documents[0].ContentType)
	assert.Empty(t, out.Documents[0].Summary)
	assert.Equal(t, summary, out.Documents[1].Summary)
	assert.Equal(t, []string{"cats"}, out.Documents[1].Topics)
}

func TestServer_handleDeleteDocument(t *testing.T) {
	ctx := context.Background()

	copilot := &mockCopilotService{}
	server := newTestServer(t, copilot)
	_, out, err := server.handleDeleteDocument(ctx, nil, DocumentInput{DocumentID: "doc-1"})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", copilot.deleted)
	assert.Equal(t, "doc-1", out.Deleted)

	copilot.err = domain.ErrNotFound
	_, _, err = server.handleDeleteDocument(ctx, nil, DocumentInput{DocumentID: "doc-2"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServer_CannedQuestions(t *testing.T) {
	ctx := context.Background()
	answer := &domain.Answer{SessionID: "s", Response: "summary text", Sources: []string{"a.txt"}}
	copilot := &mockCopilotService{
		answer: answer,
		comparison: &domain.ComparisonReport{
			Answer:     answer,
			Statistics: &domain.CorpusComparison{DocumentCount: 2},
		},
		insights: &domain.Insights{Overview: domain.DocumentOverview{TotalDocuments: 3}},
		analysis: &domain.DocumentAnalysis{DocumentID: "a", Filename: "a.txt"},
	}
	server := newTestServer(t, copilot)

	_, summary, err := server.handleSummary(ctx, nil, SessionInput{SessionID: "s"})
	require.NoError(t, err)
	assert.Equal(t, "summary text", summary.Response)
	assert.Equal(t, "s", copilot.sessionID)

	_, report, err := server.handleCompare(ctx, nil, SessionInput{SessionID: "s2"})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Statistics.DocumentCount)
	assert.Equal(t, "s2", copilot.sessionID)

	_, insights, err := server.handleInsights(ctx, nil, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, 3, insights.Overview.TotalDocuments)

	_, analysis, err := server.handleAnalyze(ctx, nil, DocumentInput{DocumentID: "a"})
	require.NoError(t, err)
	assert.Equal(t, "a.txt", analysis.Filename)
}

func TestServer_CannedQuestions_Errors(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t, &mockCopilotService{
		err: fmt.Errorf("%w: need at least two documents", domain.ErrInvalidInput),
	})

	_, _, err := server.handleSummary(ctx, nil, SessionInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, _, err = server.handleCompare(ctx, nil, SessionInput{})
	assert.ErrorContains(t, err, "compare: invalid_input")
	_, _, err = server.handleInsights(ctx, nil, struct{}{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, _, err = server.handleAnalyze(ctx, nil, DocumentInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
