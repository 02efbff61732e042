package ai

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	localembed "github.com/custodia-labs/docpilot/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/custodia-labs/docpilot/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docpilot/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/docpilot/internal/adapters/driven/llm/anthropic"
	localllm "github.com/custodia-labs/docpilot/internal/adapters/driven/llm/local"
	ollamallm "github.com/custodia-labs/docpilot/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docpilot/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docpilot/internal/core/domain"
)

func TestInitResult_Close(t *testing.T) {
	result := &InitResult{}
	// Should not panic
	result.Close()
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantType any
		wantDims int
		wantErr  error
	}{
		{
			name:     "nil settings",
			settings: nil,
			wantErr:  domain.ErrConfig,
		},
		{
			name:     "unconfigured settings",
			settings: &domain.EmbeddingSettings{},
			wantErr:  domain.ErrConfig,
		},
		{
			name:     "local provider",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderLocal, Model: "hashed-bow"},
			wantType: &localembed.EmbeddingService{},
			wantDims: 512,
		},
		{
			name:     "local provider with override",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderLocal, Dimensions: 64},
			wantType: &localembed.EmbeddingService{},
			wantDims: 64,
		},
		{
			name: "ollama provider",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "mxbai-embed-large",
			},
			wantType: &ollamaembed.EmbeddingService{},
			wantDims: 1024,
		},
		{
			name: "openai provider",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
			wantType: &openaiembed.EmbeddingService{},
			wantDims: 1536,
		},
		{
			name:     "openai without key",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
			wantErr:  domain.ErrConfig,
		},
		{
			name:     "anthropic has no embeddings",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"},
			wantErr:  domain.ErrConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, svc)
			assert.Equal(t, tt.wantDims, svc.Dimensions())
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantType any
		wantErr  bool
	}{
		{"nil settings", nil, nil, true},
		{"local", &domain.LLMSettings{Provider: domain.AIProviderLocal}, &localllm.LLMService{}, false},
		{"ollama", &domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"}, &ollamallm.LLMService{}, false},
		{"openai", &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k"}, &openaillm.LLMService{}, false},
		{"anthropic", &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"}, &anthropicllm.LLMService{}, false},
		{"anthropic without key", &domain.LLMSettings{Provider: domain.AIProviderAnthropic}, nil, true},
		{"unknown", &domain.LLMSettings{Provider: "acme"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrConfig)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, svc)
		})
	}
}

func TestInit_DefaultsAreOffline(t *testing.T) {
	settings := domain.DefaultAppSettings()

	result, err := Init(&settings)
	require.NoError(t, err)
	defer result.Close()

	assert.False(t, result.FellBack)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, "hashed-bow", result.EmbeddingService.ModelName())
	assert.Equal(t, "extractive", result.LLMService.ModelName())
}

func TestInit_UnreachableLLMFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	settings := domain.DefaultAppSettings()
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL, Model: "llama3.2"}

	result, err := Init(&settings)
	require.NoError(t, err)
	assert.True(t, result.FellBack)
	require.Len(t, result.Warnings, 1)
	assert.IsType(t, &localllm.LLMService{}, result.LLMService)
}

func TestInit_UnreachableEmbedderFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL}

	_, err := Init(&settings)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}
