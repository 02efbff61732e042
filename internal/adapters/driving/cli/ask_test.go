package cli

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

func TestAskCmd_RequiresQuestion(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("ask")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestAskCmd_JoinsArgsAndPrintsAnswer(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	var gotSession, gotMessage string
	ts.copilot.AskFunc = func(_ context.Context, sessionID, message string) (*domain.Answer, error) {
		gotSession, gotMessage = sessionID, message
		return &domain.Answer{
			SessionID:      "sess-42",
			Response:       "Paris is the capital.",
			Sources:        []string{"geo.txt", "atlas.pdf"},
			Confidence:     0.87,
			ProcessingTime: 1.25,
		}, nil
	}

	out, err := executeCommand("ask", "What", "is", "the", "capital?")

	require.NoError(t, err)
	assert.Empty(t, gotSession)
	assert.Equal(t, "What is the capital?", gotMessage)
	assert.Contains(t, out, "Paris is the capital.")
	assert.Contains(t, out, "Sources: geo.txt, atlas.pdf")
	assert.Contains(t, out, "Confidence: 0.87")
	assert.Contains(t, out, "Session: sess-42")
}

func TestAskCmd_SessionFlag(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	var gotSession string
	ts.copilot.AskFunc = func(_ context.Context, sessionID, _ string) (*domain.Answer, error) {
		gotSession = sessionID
		return &domain.Answer{SessionID: sessionID}, nil
	}

	_, err := executeCommand("ask", "--session", "sess-7", "hello")

	require.NoError(t, err)
	assert.Equal(t, "sess-7", gotSession)
}

func TestAskCmd_ErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind string
	}{
		{"generation", fmt.Errorf("%w: timeout", domain.ErrGeneration), "generation_error"},
		{"embedding", fmt.Errorf("%w: down", domain.ErrEmbeddingProvider), "embedding_provider_error"},
		{"session missing", fmt.Errorf("%w: session", domain.ErrNotFound), "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, cleanup := setupTestServices()
			defer cleanup()
			ts.copilot.AskFunc = func(context.Context, string, string) (*domain.Answer, error) {
				return nil, tt.err
			}

			_, err := executeCommand("ask", "q")

			require.Error(t, err)
			assert.Contains(t, err.Error(), "ask failed: "+tt.kind)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestSummaryCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	var gotSession string
	ts.copilot.SummaryFunc = func(_ context.Context, sessionID string) (*domain.Answer, error) {
		gotSession = sessionID
		return &domain.Answer{SessionID: "s", Response: "Executive summary."}, nil
	}

	out, err := executeCommand("summary", "-s", "s")

	require.NoError(t, err)
	assert.Equal(t, "s", gotSession)
	assert.Contains(t, out, "Executive summary.")
}

func TestCompareCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.copilot.ComparisonFunc = func(context.Context, string) (*domain.ComparisonReport, error) {
		return &domain.ComparisonReport{
			Answer: &domain.Answer{Response: "Both discuss revenue."},
			Statistics: &domain.CorpusComparison{
				DocumentCount: 2,
				Similarities:  []domain.Similarity{{Doc1: "a.txt", Doc2: "b.txt", Score: 0.25}},
				Overall:       domain.OverallStats{TotalWords: 1200, AvgReadability: 61.2},
				CommonThemes:  []string{"revenue"},
			},
		}, nil
	}

	out, err := executeCommand("compare")

	require.NoError(t, err)
	assert.Contains(t, out, "Both discuss revenue.")
	assert.Contains(t, out, "Statistics for 2 documents")
	assert.Contains(t, out, "a.txt vs b.txt: 25% shared vocabulary")
	assert.Contains(t, out, "Common themes: revenue")
}

func TestCompareCmd_NeedsTwoDocuments(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.copilot.ComparisonFunc = func(context.Context, string) (*domain.ComparisonReport, error) {
		return nil, fmt.Errorf("%w: comparison needs at least two documents", domain.ErrInvalidInput)
	}

	_, err := executeCommand("compare")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "comparison failed: invalid_input")
}

func TestInsightsCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.copilot.InsightsFunc = func(context.Context) (*domain.Insights, error) {
		return &domain.Insights{
			Overview:              domain.DocumentOverview{TotalDocuments: 3, TotalSizeMB: 1.5, FileTypes: []string{"pdf", "txt"}},
			ContentInsights:       []string{"Documents are long"},
			Recommendations:       []string{"Ask for a summary"},
			ReadabilityAssessment: "Moderate",
			ProcessingSuggestions: []string{"Use /compare"},
		}, nil
	}

	out, err := executeCommand("insights")

	require.NoError(t, err)
	assert.Contains(t, out, "3 documents, 1.50 MB (pdf, txt)")
	assert.Contains(t, out, "Content:")
	assert.Contains(t, out, "  - Documents are long")
	assert.Contains(t, out, "Readability: Moderate")
	assert.Contains(t, out, "  - Ask for a summary")
	assert.Contains(t, out, "  - Use /compare")
}
