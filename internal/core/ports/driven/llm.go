// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService writes answers from a chat transcript. Adapters exist for
// OpenAI, Anthropic, Ollama and a built-in extractive answerer.
//
// Failures are *domain.ProviderError values so callers can tell a
// retryable outage from a rejected request.
type LLMService interface {
	// Chat returns the assistant reply to messages.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the model answering requests.
	ModelName() string

	// Ping checks the provider is reachable without generating text.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one entry of the transcript sent to the model.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions tunes a single Chat call. Zero values leave the provider
// default in place.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
	Stop        []string // sequences that end generation
}
