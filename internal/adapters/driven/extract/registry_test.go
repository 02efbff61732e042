package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// stubExtractor returns a fixed text for its extensions.
type stubExtractor struct {
	exts []string
	text string
}

func (s *stubExtractor) Extensions() []string { return s.exts }

func (s *stubExtractor) Extract(context.Context, string, []byte) (string, error) {
	return s.text, nil
}

func TestDefault_Extensions(t *testing.T) {
	r := Default()
	assert.Equal(t, []string{".markdown", ".md", ".pdf", ".txt"}, r.Extensions())
	assert.True(t, r.Supports("Report.PDF"))
	assert.False(t, r.Supports("slides.pptx"))
}

func TestRegistry_DispatchesByExtension(t *testing.T) {
	r := Default()

	text, err := r.Extract(context.Background(), "notes.TXT", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	text, err = r.Extract(context.Background(), "readme.md", []byte("# Title\n\nBody"))
	require.NoError(t, err)
	assert.Equal(t, "Title\n\nBody", text)
}

func TestRegistry_UnsupportedType(t *testing.T) {
	_, err := Default().Extract(context.Background(), "image.png", []byte{1, 2, 3})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Contains(t, err.Error(), ".pdf")

	_, err = Default().Extract(context.Background(), "Makefile", []byte("all:"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_LaterRegistrationWins(t *testing.T) {
	r := NewRegistry(&stubExtractor{exts: []string{".txt"}, text: "first"})
	r.Register(&stubExtractor{exts: []string{".TXT"}, text: "second"})

	text, err := r.Extract(context.Background(), "a.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, "second", text)
	assert.Equal(t, []string{".txt"}, r.Extensions())
}
