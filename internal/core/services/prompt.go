package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
	"github.com/custodia-labs/docpilot/internal/logger"
)

// DefaultSystemPrompt is used when no prompt store is configured.
const DefaultSystemPrompt = `You are DocPilot, an assistant that answers questions about the user's documents.
Answer only from the provided context. If the context does not contain the answer, say so.
Cite the source filenames you used. Be concise and accurate.`

// noContextNotice replaces the context block when nothing was retrieved.
const noContextNotice = "No relevant context was found in the uploaded documents."

// Prompt is an assembled chat request.
type Prompt struct {
	// Messages is the system instruction, the history and the question.
	Messages []driven.ChatMessage

	// Chunks are the retrieval results that made it into the context, in
	// score order.
	Chunks []domain.RetrievalResult

	// Size is the rune count of every message content.
	Size int
}

// HasContext reports whether any chunk survived into the prompt.
func (p *Prompt) HasContext() bool {
	return len(p.Chunks) > 0
}

// PromptBuilder assembles prompts that fit a character budget.
type PromptBuilder struct {
	system string
	budget int
}

// NewPromptBuilder creates a builder. A non-positive budget uses the default.
func NewPromptBuilder(system string, budget int) *PromptBuilder {
	if strings.TrimSpace(system) == "" {
		system = DefaultSystemPrompt
	}
	if budget <= 0 {
		budget = domain.DefaultPromptBudget
	}
	return &PromptBuilder{system: system, budget: budget}
}

// Budget returns the character budget.
func (b *PromptBuilder) Budget() int {
	return b.budget
}

// Build assembles a prompt from the question, the ranked results and the
// history. When over budget the lowest-scoring chunks go first, then the
// oldest turns, and finally the question is truncated. It fails with
// domain.ErrConfig when even the bare instruction does not fit.
func (b *PromptBuilder) Build(question string, results []domain.RetrievalResult, history []domain.Turn) (*Prompt, error) {
	if fixed := b.size(nil, nil, ""); fixed > b.budget {
		return nil, fmt.Errorf("%w: prompt budget %d is smaller than the %d characters of the system instruction",
			domain.ErrConfig, b.budget, fixed)
	}

	chunks := append([]domain.RetrievalResult(nil), results...)
	turns := append([]domain.Turn(nil), history...)

	size := b.size(chunks, turns, question)
	for size > b.budget && len(chunks) > 0 {
		chunks = dropLowest(chunks)
		size = b.size(chunks, turns, question)
	}
	for size > b.budget && len(turns) > 0 {
		turns = turns[1:]
		size = b.size(chunks, turns, question)
	}
	if size > b.budget {
		keep := utf8.RuneCountInString(question) - (size - b.budget)
		question = truncateRunes(question, max(keep, 0))
		size = b.size(chunks, turns, question)
	}

	if dropped := len(results) - len(chunks); dropped > 0 {
		logger.Debug("Prompt budget dropped %d chunks", dropped)
	}
	if dropped := len(history) - len(turns); dropped > 0 {
		logger.Debug("Prompt budget dropped %d turns", dropped)
	}

	return &Prompt{
		Messages: b.messages(chunks, turns, question),
		Chunks:   chunks,
		Size:     size,
	}, nil
}

// dropLowest removes the lowest-scoring chunk, the later one on ties.
func dropLowest(chunks []domain.RetrievalResult) []domain.RetrievalResult {
	lowest := len(chunks) - 1
	for i := len(chunks) - 2; i >= 0; i-- {
		if chunks[i].Score < chunks[lowest].Score {
			lowest = i
		}
	}
	return append(chunks[:lowest], chunks[lowest+1:]...)
}

func (b *PromptBuilder) size(chunks []domain.RetrievalResult, turns []domain.Turn, question string) int {
	n := 0
	for _, m := range b.messages(chunks, turns, question) {
		n += utf8.RuneCountInString(m.Content)
	}
	return n
}

func (b *PromptBuilder) messages(chunks []domain.RetrievalResult, turns []domain.Turn, question string) []driven.ChatMessage {
	msgs := make([]driven.ChatMessage, 0, len(turns)+2)
	msgs = append(msgs, driven.ChatMessage{Role: driven.RoleSystem, Content: b.system})
	for _, t := range turns {
		role := driven.RoleUser
		if t.Role == domain.RoleAssistant {
			role = driven.RoleAssistant
		}
		msgs = append(msgs, driven.ChatMessage{Role: role, Content: t.Content})
	}
	msgs = append(msgs, driven.ChatMessage{Role: driven.RoleUser, Content: userMessage(chunks, question)})
	return msgs
}

func userMessage(chunks []domain.RetrievalResult, question string) string {
	var sb strings.Builder
	if len(chunks) == 0 {
		sb.WriteString(noContextNotice)
	} else {
		sb.WriteString("Context:\n")
		for i, c := range chunks {
			if i > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString("[Source: ")
			sb.WriteString(c.Filename)
			sb.WriteString("]\n")
			sb.WriteString(c.Content)
		}
	}
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	return sb.String()
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
