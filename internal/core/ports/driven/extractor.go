package driven

import "context"

// TextExtractor turns an uploaded file into plain text.
// Each extractor handles a fixed set of file extensions.
type TextExtractor interface {
	// Extensions returns the lowercase extensions handled, including the dot.
	Extensions() []string

	// Extract returns the text content of data.
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}
