// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"fmt"
	"time"

	localembed "github.com/custodia-labs/docpilot/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/custodia-labs/docpilot/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docpilot/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/docpilot/internal/adapters/driven/llm/anthropic"
	localllm "github.com/custodia-labs/docpilot/internal/adapters/driven/llm/local"
	ollamallm "github.com/custodia-labs/docpilot/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docpilot/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
	"github.com/custodia-labs/docpilot/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string // Non-fatal issues that caused fallback.
	FellBack         bool     // True if the LLM fell back to the built-in answerer.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates both AI services from settings.
//
// The embedding service must be reachable: vectors from a different model
// would not match the persisted index, so there is no fallback. An
// unreachable LLM falls back to the built-in extractive answerer with a
// warning, keeping retrieval usable offline.
func Init(settings *domain.AppSettings) (*InitResult, error) {
	embedder, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}

	result := &InitResult{EmbeddingService: embedder}

	llm, err := CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		warning := fmt.Sprintf("LLM unavailable, using the built-in answerer: %v", err)
		logger.Warn("%s", warning)
		result.Warnings = append(result.Warnings, warning)
		result.FellBack = true
		llm = localllm.NewLLMService()
	}
	result.LLMService = llm

	return result, nil
}

// CreateAndValidateEmbeddingService creates the embedding service and
// checks it answers within pingTimeout.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err == nil {
		err = ping(svc, pingTimeout)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'docpilot settings' to fix", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates the LLM service and checks it
// answers within pingTimeout.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err == nil {
		err = ping(svc, pingTimeout)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'docpilot settings' to fix", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// CreateEmbeddingService creates the embedding service selected by settings.
// An incomplete configuration is a domain.ErrConfig.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no embedding settings", domain.ErrConfig)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: embedding provider %q is not configured", domain.ErrConfig, settings.Provider)
	}

	switch settings.Provider {
	case domain.AIProviderLocal:
		return localembed.NewEmbeddingService(dimensionsFor(settings, localembed.DefaultDimensions)), nil

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensionsFor(settings, ollamaembed.DefaultDimensions),
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensionsFor(settings, 0),
		})

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s", domain.ErrConfig, settings.Provider)
	}
}

// dimensionsFor resolves the vector size: an explicit override, then the
// known size of the model, then fallback.
func dimensionsFor(settings *domain.EmbeddingSettings, fallback int) int {
	if settings.Dimensions > 0 {
		return settings.Dimensions
	}
	if d := domain.EmbeddingDimensions()[settings.Model]; d > 0 {
		return d
	}
	return fallback
}

// CreateLLMService creates the LLM service selected by settings.
// An incomplete configuration is a domain.ErrConfig.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no LLM settings", domain.ErrConfig)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: LLM provider %q is not configured", domain.ErrConfig, settings.Provider)
	}

	switch settings.Provider {
	case domain.AIProviderLocal:
		return localllm.NewLLMService(), nil

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", domain.ErrConfig, settings.Provider)
	}
}
