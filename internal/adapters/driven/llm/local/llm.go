// Package local provides an offline LLM service. It answers by extracting
// the context sentence that shares the most words with the question, so
// the application works without any model or network access.
package local

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is the model name reported by the extractive answerer.
const DefaultModel = "extractive"

// NoAnswer is returned when no context sentence shares a word with the
// question.
const NoAnswer = "The documents do not appear to answer this question directly."

var (
	sourceLine    = regexp.MustCompile(`(?m)^\[Source: (.+)\]$`)
	sentenceEnd   = regexp.MustCompile(`[^.!?\n]+[.!?]?`)
	wordPattern   = regexp.MustCompile(`\p{L}+|\p{N}+`)
	questionLabel = "\n\nQuestion: "
)

var ignored = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "was": {}, "were": {}, "what": {},
	"which": {}, "who": {}, "how": {}, "does": {}, "did": {}, "this": {}, "that": {},
	"with": {}, "from": {}, "about": {}, "is": {}, "of": {}, "a": {}, "an": {}, "in": {},
	"to": {}, "on": {}, "it": {}, "be": {}, "by": {}, "as": {}, "at": {}, "or": {},
}

// LLMService is a deterministic extractive answerer.
type LLMService struct{}

// NewLLMService creates the answerer.
func NewLLMService() *LLMService {
	return &LLMService{}
}

// Chat answers the last user message. The message is expected to hold
// context blocks headed by "[Source: <filename>]" lines followed by a
// "Question:" line.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var last string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == driven.RoleUser {
			last = messages[i].Content
			break
		}
	}

	body, question := last, last
	if i := strings.LastIndex(last, questionLabel); i >= 0 {
		body, question = last[:i], last[i+len(questionLabel):]
	}

	want := words(question)
	if len(want) == 0 {
		return NoAnswer, nil
	}

	best, bestSource, bestScore := "", "", 0
	for _, block := range blocks(body) {
		for _, sentence := range sentenceEnd.FindAllString(block.text, -1) {
			sentence = strings.TrimSpace(sentence)
			score := 0
			for w := range words(sentence) {
				if _, ok := want[w]; ok {
					score++
				}
			}
			if score > bestScore {
				best, bestSource, bestScore = sentence, block.source, score
			}
		}
	}

	if bestScore == 0 {
		return NoAnswer, nil
	}
	if bestSource != "" {
		return best + " [Source: " + bestSource + "]", nil
	}
	return best, nil
}

type block struct {
	source string
	text   string
}

// blocks splits the context body at its source headers. Text before the first
// header is ignored.
func blocks(body string) []block {
	locs := sourceLine.FindAllStringSubmatchIndex(body, -1)
	out := make([]block, 0, len(locs))
	for i, loc := range locs {
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		out = append(out, block{
			source: body[loc[2]:loc[3]],
			text:   body[loc[1]:end],
		})
	}
	return out
}

func words(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, skip := ignored[w]; !skip {
			out[w] = struct{}{}
		}
	}
	return out
}

// ModelName returns DefaultModel.
func (s *LLMService) ModelName() string {
	return DefaultModel
}

// Ping always succeeds.
func (s *LLMService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
