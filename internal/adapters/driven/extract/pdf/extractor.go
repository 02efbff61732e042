// Package pdf extracts the text layer of PDF uploads.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
	"github.com/custodia-labs/docpilot/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor reads the text of every page in order. Scanned pages without a
// text layer contribute nothing; there is no OCR.
type Extractor struct{}

// New creates a PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract returns the text of all pages, separated by blank lines.
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (text string, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %s is not a readable PDF: %v", domain.ErrInvalidInput, filename, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %s is not a readable PDF: %w", domain.ErrInvalidInput, filename, err)
	}

	pages := make([]string, 0, reader.NumPage())
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		content, err := page.GetPlainText(fonts)
		if err != nil {
			logger.Warn("Skipping page %d of %s: %v", i, filename, err)
			continue
		}
		if content = strings.TrimSpace(content); content != "" {
			pages = append(pages, content)
		}
	}
	logger.Debug("Read %d of %d pages from %s", len(pages), reader.NumPage(), filename)

	if len(pages) == 0 {
		return "", fmt.Errorf("%w: no text could be extracted from %s", domain.ErrInvalidInput, filename)
	}
	return strings.Join(pages, "\n\n"), nil
}
