package pdf

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

func TestExtractor_Extensions(t *testing.T) {
	assert.Equal(t, []string{".pdf"}, New().Extensions())
}

func TestExtractor_ReadsPagesInOrder(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "two-pages.pdf"))
	require.NoError(t, err)

	text, err := New().Extract(context.Background(), "two-pages.pdf", data)
	require.NoError(t, err)

	paris := strings.Index(text, "Paris")
	lyon := strings.Index(text, "Lyon")
	require.GreaterOrEqual(t, paris, 0, text)
	require.Greater(t, lyon, paris, text)
	assert.Contains(t, text, "\n\n")
}

func TestExtractor_RejectsGarbage(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":     {},
		"not a pdf": []byte("hello, this is plain text"),
		"truncated": []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := New().Extract(context.Background(), "bad.pdf", data)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestExtractor_Cancelled(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "two-pages.pdf"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New().Extract(ctx, "two-pages.pdf", data)
	assert.ErrorIs(t, err, context.Canceled)
}
