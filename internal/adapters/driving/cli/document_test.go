package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

func TestDocumentCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range documentCmd.Commands() {
		names = append(names, c.Name())
	}

	assert.ElementsMatch(t, []string{"list", "get", "delete", "analyze"}, names)
	assert.Contains(t, documentCmd.Aliases, "docs")
}

func TestUploadCmd_RequiresFile(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("upload")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestUploadCmd_UploadsFiles(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(a, []byte("alpha"), 0600))
	require.NoError(t, os.WriteFile(b, []byte("# beta"), 0600))

	var got []domain.UploadFile
	ts.copilot.UploadFunc = func(_ context.Context, files []domain.UploadFile) ([]domain.Document, error) {
		got = files
		return (&MockCopilotService{}).Upload(context.Background(), files)
	}

	out, err := executeCommand("upload", a, b)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a.txt", got[0].Filename)
	assert.Equal(t, []byte("alpha"), got[0].Data)
	assert.Equal(t, "notes.md", got[1].Filename)
	assert.Contains(t, out, "Uploaded a.txt (5 B, 1 chunks) as doc-a.txt")
	assert.Contains(t, out, "Uploaded notes.md")
}

func TestUploadCmd_RejectsUnsupportedType(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	called := false
	ts.copilot.UploadFunc = func(context.Context, []domain.UploadFile) ([]domain.Document, error) {
		called = true
		return nil, nil
	}

	path := filepath.Join(t.TempDir(), "sheet.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))

	_, err := executeCommand("upload", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported file type ".xlsx"`)
	assert.False(t, called)
}

func TestUploadCmd_MissingFile(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("upload", filepath.Join(t.TempDir(), "missing.txt"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading")
}

func TestUploadCmd_PartialFailureReportsUploaded(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("alpha"), 0600))
	require.NoError(t, os.WriteFile(b, []byte("beta"), 0600))

	ts.copilot.UploadFunc = func(_ context.Context, files []domain.UploadFile) ([]domain.Document, error) {
		return []domain.Document{{ID: "doc-a", Filename: "a.txt"}},
			fmt.Errorf("uploading b.txt: %w", domain.ErrCapacityExceeded)
	}

	out, err := executeCommand("upload", a, b)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "capacity_exceeded")
	assert.Contains(t, out, "Uploaded a.txt")
}

func TestDocumentListCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("documents", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents uploaded")
}

func TestDocumentListCmd_ShowsDocuments(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.copilot.ListDocumentsFunc = func(context.Context) ([]domain.Document, error) {
		return []domain.Document{
			{ID: "d1", Filename: "report.pdf", ContentType: domain.ContentTypePDF, SizeBytes: 2048, ChunkIDs: []string{"a", "b"}, CreatedAt: testTime},
			{ID: "d2", Filename: "notes.md", ContentType: domain.ContentTypeMarkdown, SizeBytes: 1000, CreatedAt: testTime},
		}, nil
	}

	out, err := executeCommand("docs", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "Documents (2, 3.0 kB)")
	assert.Contains(t, out, "report.pdf")
	assert.Contains(t, out, "ID: d1")
	assert.Contains(t, out, "Type: pdf  Size: 2.0 kB  Chunks: 2")
	assert.Contains(t, out, "notes.md")
}

func TestDocumentListCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.copilot.ListDocumentsFunc = func(context.Context) ([]domain.Document, error) {
		return []domain.Document{{ID: "d1", Filename: "a.txt", ContentType: domain.ContentTypeText, Content: "secret text"}}, nil
	}

	out, err := executeCommand("documents", "list", "--format", "json")

	require.NoError(t, err)
	var views []documentView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "d1", views[0].ID)
	assert.Empty(t, views[0].Content)
}

func TestDocumentListCmd_ServiceError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.copilot.ListDocumentsFunc = func(context.Context) ([]domain.Document, error) {
		return nil, fmt.Errorf("boom")
	}

	_, err := executeCommand("documents", "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list documents: internal: boom")
}

func TestDocumentGetCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	summary := "A short report."
	ts.copilot.GetDocumentFunc = func(_ context.Context, id string) (*domain.Document, error) {
		return &domain.Document{
			ID: id, Filename: "report.txt", ContentType: domain.ContentTypeText,
			Content: "Full text here.", Topics: []string{"revenue", "growth"}, Summary: &summary,
			CreatedAt: testTime,
		}, nil
	}

	out, err := executeCommand("documents", "get", "d1")
	require.NoError(t, err)
	assert.Contains(t, out, "Document: report.txt")
	assert.Contains(t, out, "Topics: revenue, growth")
	assert.Contains(t, out, "Summary: A short report.")
	assert.NotContains(t, out, "Full text here.")

	out, err = executeCommand("documents", "get", "d1", "--content")
	require.NoError(t, err)
	assert.Contains(t, out, "Full text here.")
}

func TestDocumentGetCmd_RequiresOneArg(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("documents", "get")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestDocumentGetCmd_NotFound(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.copilot.GetDocumentFunc = func(_ context.Context, id string) (*domain.Document, error) {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}

	_, err := executeCommand("documents", "get", "nope")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not_found")
}

func TestDocumentDeleteCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	var deleted string
	ts.copilot.DeleteFunc = func(_ context.Context, id string) error {
		deleted = id
		return nil
	}

	out, err := executeCommand("documents", "delete", "d1")

	require.NoError(t, err)
	assert.Equal(t, "d1", deleted)
	assert.Contains(t, out, "Deleted document d1")
}

func TestDocumentAnalyzeCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.copilot.AnalyzeFunc = func(_ context.Context, id string) (*domain.DocumentAnalysis, error) {
		return &domain.DocumentAnalysis{
			DocumentID:     id,
			Filename:       "report.txt",
			Stats:          domain.BasicStats{Characters: 12345, Words: 2100, Sentences: 90, Paragraphs: 12},
			Readability:    domain.Readability{FleschReadingEase: 55.5, AvgSentenceLength: 23.3, AvgWordLength: 4.9},
			TopWords:       []domain.WordCount{{Word: "revenue", Count: 14}},
			Topics:         []string{"revenue"},
			Entities:       domain.Entities{Emails: []string{"a@b.c"}, CapitalizedWords: []string{"A", "B", "C", "D", "E", "F", "G"}},
			ReadingMinutes: 10.5,
		}, nil
	}

	out, err := executeCommand("documents", "analyze", "d1")

	require.NoError(t, err)
	assert.Contains(t, out, "Analysis: report.txt")
	assert.Contains(t, out, "Characters: 12,345")
	assert.Contains(t, out, "Words: 2,100")
	assert.Contains(t, out, "Readability: 55.5")
	assert.Contains(t, out, "Top words: revenue (14)")
	assert.Contains(t, out, "Emails: a@b.c")
	assert.Contains(t, out, "Names: A, B, C, D, E (+2 more)")
	assert.Contains(t, out, "Reading time: 10.5 min")
}

func TestDocumentAnalyzeCmd_YAML(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("documents", "analyze", "d1", "--format", "yaml")

	require.NoError(t, err)
	assert.Contains(t, out, "document_id: d1")
	assert.Contains(t, out, "basic_stats:")
}
