// Package chunker provides a token-window text chunking processor.
//
// Tokens are maximal runs of non-whitespace. Each chunk holds up to
// chunk size tokens and consecutive chunks share exactly overlap tokens,
// so the token sequence of a document can be rebuilt from its chunks by
// dropping the leading overlap of every chunk after the first.
package chunker

import (
	"context"
	"fmt"
	"unicode"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// DefaultChunkSize is the default number of tokens per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping tokens.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Processor splits document content into overlapping token windows.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in tokens.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in tokens.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// It fails with domain.ErrConfig unless 0 <= overlap < size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := validate(p.chunkSize, p.overlap); err != nil {
		return nil, err
	}
	return p, nil
}

func validate(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrConfig, size)
	}
	if overlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", domain.ErrConfig, overlap)
	}
	if overlap >= size {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d", domain.ErrConfig, overlap, size)
	}
	return nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the window size in tokens.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the number of tokens shared by consecutive chunks.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Segment is one window of the input text.
type Segment struct {
	// Position is the ordinal of the segment.
	Position int

	// Span is the byte range of Text within the input.
	Span domain.Span

	// Text is the input between the first and last token of the window.
	Text string

	// TokenCount is the number of tokens in the window.
	TokenCount int
}

// Split validates size and overlap and splits text with them.
func Split(text string, size, overlap int) ([]Segment, error) {
	p, err := New(WithChunkSize(size), WithOverlap(overlap))
	if err != nil {
		return nil, err
	}
	return p.Split(text), nil
}

// Split returns every segment of text in order.
// Empty or whitespace-only text produces no segments.
func (p *Processor) Split(text string) []Segment {
	return p.Resume(text, 0)
}

// Resume returns the segments of text starting at position from. Callers
// that stopped part way through a document continue with the next position
// and get the same segments a single Split would have produced.
func (p *Processor) Resume(text string, from int) []Segment {
	tokens := tokenize(text)
	total := p.count(len(tokens))
	if from < 0 {
		from = 0
	}
	if from >= total {
		return nil
	}

	step := p.chunkSize - p.overlap
	segments := make([]Segment, 0, total-from)
	for pos := from; pos < total; pos++ {
		start := pos * step
		end := min(start+p.chunkSize, len(tokens))

		span := domain.Span{Start: tokens[start].Start, End: tokens[end-1].End}
		segments = append(segments, Segment{
			Position:   pos,
			Span:       span,
			Text:       text[span.Start:span.End],
			TokenCount: end - start,
		})
	}
	return segments
}

// Count returns how many segments text splits into.
func (p *Processor) Count(text string) int {
	return p.count(len(tokenize(text)))
}

// count is the number of windows needed so the last one ends on the final
// token. Text shorter than one window gives a single segment.
func (p *Processor) count(n int) int {
	if n == 0 {
		return 0
	}
	if n <= p.chunkSize {
		return 1
	}
	step := p.chunkSize - p.overlap
	return 1 + (n-p.chunkSize+step-1)/step
}

// Process splits the document content into chunks with ids derived from
// the document id and position.
func (p *Processor) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	segments := p.Split(doc.Content)
	if len(segments) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, 0, len(segments))
	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunks = append(chunks, domain.Chunk{
			ID:         domain.ChunkID(doc.ID, seg.Position),
			DocumentID: doc.ID,
			Position:   seg.Position,
			Span:       seg.Span,
			Content:    seg.Text,
			TokenCount: seg.TokenCount,
		})
	}
	return chunks, nil
}

// Tokens returns the tokens of text in order.
func Tokens(text string) []string {
	spans := tokenize(text)
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = text[s.Start:s.End]
	}
	return out
}

func tokenize(text string) []domain.Span {
	var spans []domain.Span
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				spans = append(spans, domain.Span{Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, domain.Span{Start: start, End: len(text)})
	}
	return spans
}
