package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range settingsCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"show", "wizard", "embedding", "llm", "rag"}, names)
}

func TestSettingsShowCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.Settings.LLM = domain.LLMSettings{
		Provider: domain.AIProviderOpenAI, Model: "gpt-4o-mini", APIKey: "sk-1234567890abcdef", Temperature: 0.1, MaxTokens: 4000,
	}

	out, err := executeCommand("settings")

	require.NoError(t, err)
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "Model: hashed-bow")
	assert.Contains(t, out, "[LLM]")
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.NotContains(t, out, "sk-1234567890abcdef")
	assert.Contains(t, out, "Chunk size: 1000 tokens (overlap 200)")
	assert.Contains(t, out, "Top K: 5")
	assert.Contains(t, out, "Backend: sqlite")
	assert.Contains(t, out, "Configuration is valid.")
	assert.Equal(t, 1, ts.settings.ValidateCalls)
}

func TestSettingsShowCmd_InvalidWarns(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.ValidateErr = errors.New("config: llm api key missing")

	out, err := executeCommand("settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: config: llm api key missing")
	assert.Contains(t, out, "docpilot settings wizard")
}

func TestSettingsShowCmd_JSONMasksKeys(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.Settings.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProviderOpenAI, Model: "text-embedding-3-small", APIKey: "sk-1234567890abcdef",
	}

	out, err := executeCommand("settings", "show", "--format", "json")

	require.NoError(t, err)
	assert.NotContains(t, out, "sk-1234567890abcdef")
	var view settingsView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "openai", view.Embedding.Provider)
	assert.Equal(t, "sk-1...cdef", view.Embedding.APIKey)
	assert.Equal(t, 1000, view.RAG.ChunkSize)
	assert.True(t, view.Valid)
}

func TestSettingsRAGCmd_UpdatesGivenFlags(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("settings", "rag", "--chunk-size", "400", "--chunk-overlap", "50", "--min-similarity", "0.3")

	require.NoError(t, err)
	assert.Contains(t, out, "Retrieval settings saved.")
	rag := ts.settings.Settings.RAG
	assert.Equal(t, 400, rag.ChunkSize)
	assert.Equal(t, 50, rag.ChunkOverlap)
	assert.InDelta(t, 0.3, rag.MinSimilarity, 1e-9)
	assert.Equal(t, domain.DefaultTopK, rag.TopK)
	assert.Equal(t, domain.DefaultMaxDocuments, rag.MaxDocuments)
}

func TestSettingsRAGCmd_RejectsInvalid(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("settings", "rag", "--chunk-overlap", "1000")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
	assert.Equal(t, domain.DefaultChunkOverlap, ts.settings.Settings.RAG.ChunkOverlap)
}

func TestSettingsRAGCmd_NoFlags(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("settings", "rag")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no settings given")
}

func TestSettingsWizardCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	// local embeddings with the default model, then anthropic with a key
	rootCmd.SetIn(strings.NewReader("1\n\n4\n\nsk-ant-1234567890\n"))
	buf := new(strings.Builder)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"settings", "wizard"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderLocal, ts.settings.EmbeddingSet)
	assert.Equal(t, domain.AIProviderAnthropic, ts.settings.LLMSet)
	assert.Equal(t, "claude-3-5-sonnet-latest", ts.settings.LLMModel)
	assert.Equal(t, "sk-ant-1234567890", ts.settings.LLMKey)
	assert.Contains(t, buf.String(), "DocPilot Settings Wizard")
	assert.Contains(t, buf.String(), "All settings are valid and saved.")
}

func TestSettingsLLMCmd_RequiresKey(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetIn(strings.NewReader("3\n\n\n"))
	rootCmd.SetOut(new(strings.Builder))
	rootCmd.SetArgs([]string{"settings", "llm"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}
