// Package extract dispatches uploads to a text extractor by file extension.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/docpilot/internal/adapters/driven/extract/pdf"
	"github.com/custodia-labs/docpilot/internal/adapters/driven/extract/plaintext"
	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.TextExtractor = (*Registry)(nil)

// Registry is a TextExtractor that routes each file to the extractor
// registered for its extension. Later registrations win.
type Registry struct {
	byExt map[string]driven.TextExtractor
}

// NewRegistry creates a registry holding the given extractors.
func NewRegistry(extractors ...driven.TextExtractor) *Registry {
	r := &Registry{byExt: make(map[string]driven.TextExtractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Default returns a registry with the PDF, text and Markdown extractors.
func Default() *Registry {
	return NewRegistry(plaintext.New(), pdf.New())
}

// Register adds an extractor for all of its extensions.
func (r *Registry) Register(e driven.TextExtractor) {
	for _, ext := range e.Extensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// Extensions returns every supported extension, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports reports whether filename has a supported extension.
func (r *Registry) Supports(filename string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Extract returns the text content of data using the extractor for
// filename's extension.
func (r *Registry) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	e, ok := r.byExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q files are not supported (supported: %s)",
			domain.ErrUnsupportedType, ext, strings.Join(r.Extensions(), ", "))
	}
	return e.Extract(ctx, filename, data)
}
