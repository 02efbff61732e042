package driving

import "github.com/custodia-labs/docpilot/internal/core/domain"

// SettingsService reads and edits the persisted configuration. Every
// setter validates before writing, so a failed call leaves the file as it was.
type SettingsService interface {
	Get() (*domain.AppSettings, error)
	Save(settings *domain.AppSettings) error

	// GetDefaults is what a fresh install starts with.
	GetDefaults() domain.AppSettings

	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error
	SetRAG(rag domain.RAGSettings) error

	// Validate checks the stored values without contacting any provider.
	Validate() error

	// ValidateEmbeddingConfig and ValidateLLMConfig ping the configured
	// provider with the stored credentials.
	ValidateEmbeddingConfig() error
	ValidateLLMConfig() error
}
