// Package ollama provides an LLM service adapter using Ollama.
package ollama

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docpilot/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const providerName = "ollama"

// Defaults applied by NewLLMService.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
	DefaultKeepAlive  = "10m"
)

// LLMConfig configures the Ollama chat adapter.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration

	// KeepAlive is how long Ollama keeps the model loaded after a request,
	// in Ollama duration syntax.
	KeepAlive string
}

// LLMService answers through Ollama's /api/chat endpoint without streaming.
type LLMService struct {
	api       *ratelimit.Client
	model     string
	keepAlive string
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	Stream    bool          `json:"stream"`
	KeepAlive string        `json:"keep_alive,omitempty"`
	Options   *options      `json:"options,omitempty"`
}

type options struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Message    chatMessage `json:"message"`
	Done       bool        `json:"done"`
	DoneReason string      `json:"done_reason"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewLLMService creates an Ollama chat adapter, filling unset config
// fields with the defaults.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	if cfg.KeepAlive == "" {
		cfg.KeepAlive = DefaultKeepAlive
	}
	return &LLMService{
		api:       ratelimit.NewClient(providerName, cfg.BaseURL, cfg.Timeout, 0, nil),
		model:     cfg.Model,
		keepAlive: cfg.KeepAlive,
	}
}

// Chat sends the transcript and returns the reply. A reply Ollama did not
// mark as done is rejected as malformed.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := chatRequest{
		Model:     s.model,
		Messages:  make([]chatMessage, len(messages)),
		KeepAlive: s.keepAlive,
	}
	for i, m := range messages {
		req.Messages[i] = chatMessage{Role: m.Role, Content: m.Content}
	}
	if opts.MaxTokens > 0 || opts.Temperature > 0 || len(opts.Stop) > 0 {
		req.Options = &options{
			NumPredict:  opts.MaxTokens,
			Temperature: opts.Temperature,
			Stop:        opts.Stop,
		}
	}

	var resp chatResponse
	if err := s.api.PostJSON(ctx, "/api/chat", req, &resp); err != nil {
		return "", err
	}
	if !resp.Done {
		return "", ratelimit.MalformedError(providerName, "incomplete response", nil)
	}
	return resp.Message.Content, nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists the installed models and fails with domain.ErrRejected when
// the configured model has not been pulled.
func (s *LLMService) Ping(ctx context.Context) error {
	var tags tagsResponse
	if err := s.api.Get(ctx, "/api/tags", &tags); err != nil {
		return err
	}
	for _, m := range tags.Models {
		if m.Name == s.model || strings.TrimSuffix(m.Name, ":latest") == s.model {
			return nil
		}
	}
	return &domain.ProviderError{
		Provider: providerName,
		Kind:     domain.ProviderRejected,
		Message:  fmt.Sprintf("model %q is not installed; run 'ollama pull %s'", s.model, s.model),
	}
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
