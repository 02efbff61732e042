package domain

import (
	"fmt"
	"time"
)

// ContentType identifies the source format of an uploaded document.
type ContentType string

// Supported content types.
const (
	ContentTypePDF      ContentType = "pdf"
	ContentTypeText     ContentType = "txt"
	ContentTypeMarkdown ContentType = "md"
)

// Document represents an uploaded document with its extracted text.
// It is owned by the document registry and is immutable once chunked,
// except for the derived summary/topics slot which is written at most once.
type Document struct {
	// ID is the unique identifier assigned at upload.
	ID string

	// Filename is the original name of the uploaded file.
	Filename string

	// SizeBytes is the size of the uploaded file.
	SizeBytes int64

	// ContentType is the source format.
	ContentType ContentType

	// Content is the full extracted text before chunking.
	Content string

	// ChunkIDs lists the document's chunks in position order.
	ChunkIDs []string

	// Summary is the derived summary, nil until set.
	Summary *string

	// Topics are the derived key topics, nil until set.
	Topics []string

	// CreatedAt is when the document was registered.
	CreatedAt time.Time
}

// HasDerived reports whether the derived slot has been written.
func (d *Document) HasDerived() bool {
	return d.Summary != nil || d.Topics != nil
}

// Chunk is a contiguous window of a document's text, the unit of
// embedding and retrieval.
type Chunk struct {
	// ID is "<documentID>_<position>".
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Position is the ordinal position within the document.
	Position int

	// Span is the byte range of Content within the parent text.
	Span Span

	// Content is the text of this chunk.
	Content string

	// TokenCount is the number of tokens in Content.
	TokenCount int

	// Embedding is the vector representation, set once.
	Embedding []float32
}

// Span is a half-open byte range [Start, End).
type Span struct {
	Start int
	End   int
}

// ChunkID returns the identifier of the chunk at position within documentID.
func ChunkID(documentID string, position int) string {
	return fmt.Sprintf("%s_%d", documentID, position)
}

// NewDocument is the input to registering a document.
type NewDocument struct {
	// Filename is the original name of the uploaded file.
	Filename string

	// Content is the extracted text.
	Content string

	// SizeBytes is the size of the uploaded file.
	SizeBytes int64

	// ContentType is the source format.
	ContentType ContentType
}

// UploadFile is a raw file handed to the upload operation.
type UploadFile struct {
	// Filename includes the extension used to pick an extractor.
	Filename string

	// Data is the file content.
	Data []byte
}

// RetrievalResult is a ranked chunk returned for a query.
type RetrievalResult struct {
	// ChunkID identifies the chunk.
	ChunkID string

	// DocumentID identifies the parent document.
	DocumentID string

	// Filename is the parent document's filename, used for attribution.
	Filename string

	// Content is the chunk text.
	Content string

	// Position is the chunk's ordinal within its document.
	Position int

	// Score is the cosine similarity to the query. Higher is more relevant.
	Score float64
}
