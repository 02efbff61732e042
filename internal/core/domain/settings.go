package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderLocal is the built-in offline provider. It needs no network
	// and produces deterministic output.
	AIProviderLocal AIProvider = "local"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderLocal:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderLocal
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderLocal:
		return "Built-in (offline)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's vector size. Zero uses the model default.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Temperature is the sampling temperature.
	Temperature float64

	// MaxTokens caps the length of a generated answer.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RAGSettings holds the retrieval pipeline knobs.
type RAGSettings struct {
	// MaxDocuments is the registry capacity.
	MaxDocuments int

	// ChunkSize is the window size in tokens.
	ChunkSize int

	// ChunkOverlap is the number of tokens shared by consecutive chunks.
	ChunkOverlap int

	// TopK is the number of chunks retrieved per question.
	TopK int

	// MinSimilarity drops retrieval results scoring below it.
	MinSimilarity float64

	// PromptBudget is the maximum prompt size in characters.
	PromptBudget int

	// HistoryLength is the number of turns kept per session.
	HistoryLength int
}

// Validate reports the first invalid knob as an ErrConfig.
func (r RAGSettings) Validate() error {
	switch {
	case r.MaxDocuments <= 0:
		return fmt.Errorf("%w: max documents must be positive, got %d", ErrConfig, r.MaxDocuments)
	case r.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrConfig, r.ChunkSize)
	case r.ChunkOverlap < 0 || r.ChunkOverlap >= r.ChunkSize:
		return fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d", ErrConfig, r.ChunkSize, r.ChunkOverlap)
	case r.TopK <= 0:
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrConfig, r.TopK)
	case r.MinSimilarity < -1 || r.MinSimilarity > 1:
		return fmt.Errorf("%w: min similarity must be in [-1, 1], got %v", ErrConfig, r.MinSimilarity)
	case r.PromptBudget <= 0:
		return fmt.Errorf("%w: prompt budget must be positive, got %d", ErrConfig, r.PromptBudget)
	case r.HistoryLength < 0:
		return fmt.Errorf("%w: history length must not be negative, got %d", ErrConfig, r.HistoryLength)
	}
	return nil
}

// StorageBackend selects where documents, chunks and vectors live.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite persists to a SQLite database in the data directory.
	StorageSQLite StorageBackend = "sqlite"

	// StorageMemory keeps everything in process memory.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageSQLite || b == StorageMemory
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	// Backend is the storage backend.
	Backend StorageBackend
}

// SessionSettings holds conversation session configuration.
type SessionSettings struct {
	// TTL is how long an idle session is kept.
	TTL time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// RAG holds retrieval pipeline settings.
	RAG RAGSettings

	// Storage holds persistence settings.
	Storage StorageSettings

	// Session holds session settings.
	Session SessionSettings
}

// Defaults for the retrieval pipeline.
const (
	DefaultMaxDocuments  = 5
	DefaultChunkSize     = 1000
	DefaultChunkOverlap  = 200
	DefaultTopK          = 5
	DefaultPromptBudget  = 12000
	DefaultHistoryLength = 6
	DefaultTemperature   = 0.1
	DefaultMaxTokens     = 4000
	DefaultSessionTTL    = time.Hour
)

// DefaultRAGSettings returns the retrieval pipeline defaults.
func DefaultRAGSettings() RAGSettings {
	return RAGSettings{
		MaxDocuments:  DefaultMaxDocuments,
		ChunkSize:     DefaultChunkSize,
		ChunkOverlap:  DefaultChunkOverlap,
		TopK:          DefaultTopK,
		MinSimilarity: 0,
		PromptBudget:  DefaultPromptBudget,
		HistoryLength: DefaultHistoryLength,
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// Both AI providers default to the built-in offline provider so the
// application works before a cloud provider is configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderLocal,
			Model:    DefaultEmbeddingModels()[AIProviderLocal],
		},
		LLM: LLMSettings{
			Provider:    AIProviderLocal,
			Model:       DefaultLLMModels()[AIProviderLocal],
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		RAG:     DefaultRAGSettings(),
		Storage: StorageSettings{Backend: StorageSQLite},
		Session: SessionSettings{TTL: DefaultSessionTTL},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "hashed-bow",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:     "extractive",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Built-in
		"hashed-bow": 512,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
