package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
	"github.com/custodia-labs/docpilot/internal/logger"
)

// Answer synthesizer defaults.
const (
	DefaultGenerationAttempts    = 3
	DefaultGenerationCallTimeout = 120 * time.Second
	confidenceTopN               = 3
)

// NoContextAnswer is returned when no document content matched the question.
const NoContextAnswer = "I could not find any relevant information in the uploaded documents to answer this question. " +
	"Try uploading a document that covers this topic or rephrasing the question."

// AnswerSynthesizer turns an assembled prompt into an answer with sources
// and a confidence score.
type AnswerSynthesizer struct {
	llm driven.LLMService

	// MaxAttempts bounds the provider calls made for one answer.
	MaxAttempts int

	// CallTimeout applies to each provider call.
	CallTimeout time.Duration

	// Temperature and MaxTokens are passed to the provider.
	Temperature float64
	MaxTokens   int

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewAnswerSynthesizer creates a synthesizer with default retries.
func NewAnswerSynthesizer(llm driven.LLMService) *AnswerSynthesizer {
	return &AnswerSynthesizer{
		llm:         llm,
		MaxAttempts: DefaultGenerationAttempts,
		CallTimeout: DefaultGenerationCallTimeout,
		Temperature: domain.DefaultTemperature,
		MaxTokens:   domain.DefaultMaxTokens,
		now:         time.Now,
	}
}

// Synthesize calls the language model once per prompt, retrying transient
// failures, and fills sources and confidence from the prompt's chunks.
// A prompt without context returns NoContextAnswer without a provider call.
// Failures wrap domain.ErrGeneration.
func (s *AnswerSynthesizer) Synthesize(ctx context.Context, prompt *Prompt) (*domain.Answer, error) {
	logger.Section("Answer Synthesis")
	start := s.now()

	if !prompt.HasContext() {
		logger.Debug("No context survived, returning the no-context answer")
		return &domain.Answer{
			Response:       NoContextAnswer,
			Sources:        []string{},
			Confidence:     0,
			ProcessingTime: s.now().Sub(start).Seconds(),
		}, nil
	}

	if s.llm == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, &domain.ProviderError{
			Provider: "none",
			Kind:     domain.ProviderUnavailable,
			Message:  "no language model configured",
			Err:      domain.ErrLLMUnavailable,
		})
	}

	policy := retryPolicy{
		attempts:    s.MaxAttempts,
		callTimeout: s.CallTimeout,
		provider:    s.llm.ModelName(),
		sleep:       s.sleep,
	}
	opts := driven.ChatOptions{MaxTokens: s.MaxTokens, Temperature: s.Temperature}

	var response string
	err := policy.do(ctx, func(callCtx context.Context) error {
		var err error
		response, err = s.llm.Chat(callCtx, prompt.Messages, opts)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, &domain.ProviderError{
			Provider: policy.provider,
			Kind:     domain.ProviderRejected,
			Message:  "empty response",
		})
	}

	scores := make([]float64, len(prompt.Chunks))
	for i, c := range prompt.Chunks {
		scores[i] = c.Score
	}

	answer := &domain.Answer{
		Response:       response,
		Sources:        SourcesOf(prompt.Chunks),
		Confidence:     ConfidenceFromScores(scores),
		ProcessingTime: s.now().Sub(start).Seconds(),
	}
	logger.Debug("Answered from %d chunks, confidence %.3f", len(prompt.Chunks), answer.Confidence)
	return answer, nil
}

// SourcesOf returns the distinct filenames of chunks in first-appearance
// order.
func SourcesOf(chunks []domain.RetrievalResult) []string {
	seen := make(map[string]bool, len(chunks))
	sources := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if seen[c.Filename] {
			continue
		}
		seen[c.Filename] = true
		sources = append(sources, c.Filename)
	}
	return sources
}

// ConfidenceFromScores is the mean of the three highest scores clamped to
// [0, 1]. It is zero when there are no scores.
func ConfidenceFromScores(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	top := append([]float64(nil), scores...)
	// Partial selection sort; n is small.
	n := min(confidenceTopN, len(top))
	for i := 0; i < n; i++ {
		best := i
		for j := i + 1; j < len(top); j++ {
			if top[j] > top[best] {
				best = j
			}
		}
		top[i], top[best] = top[best], top[i]
	}

	sum := 0.0
	for _, s := range top[:n] {
		sum += s
	}
	mean := sum / float64(n)
	switch {
	case mean < 0:
		return 0
	case mean > 1:
		return 1
	default:
		return mean
	}
}
