package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
	"github.com/custodia-labs/docpilot/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// promptSpec describes one user-editable prompt file.
type promptSpec struct {
	name         string
	about        string
	placeholders int // number of %s the prompt must keep
	fallback     string
}

//nolint:lll // prompt text reads better unwrapped
var promptSpecs = []promptSpec{
	{
		name:  driven.PromptSystem,
		about: "Instructions sent with every question",
		fallback: `You are DocPilot, an assistant that answers questions about the user's documents.
Answer only from the provided context. If the context does not contain the answer, say so.
Cite the source filenames you used. Be concise and accurate.`,
	},
	{
		name:         driven.PromptSummary,
		about:        "The question asked by `docpilot summary`",
		placeholders: 1,
		fallback: `Write an executive summary of all the loaded documents: %s
Cover the main purpose, the key findings and any conclusions or recommendations.`,
	},
	{
		name:         driven.PromptComparison,
		about:        "The question asked by `docpilot compare`",
		placeholders: 1,
		fallback: `Compare the following documents and identify their key similarities and differences: %s
Point out where they agree, where they disagree and what each one covers that the others do not.`,
	},
}

// defaultPrompts maps prompt names to their built-in text.
var defaultPrompts = func() map[string]string {
	m := make(map[string]string, len(promptSpecs))
	for _, p := range promptSpecs {
		m[p.name] = p.fallback
	}
	return m
}()

func specFor(name string) (promptSpec, bool) {
	for _, p := range promptSpecs {
		if p.name == name {
			return p, true
		}
	}
	return promptSpec{}, false
}

// PromptStore reads prompts from <dir>/<name>.txt. The directory and the
// default files are written on the first Load, never by the constructor.
// A missing, unreadable or malformed file falls back to the built-in text.
type PromptStore struct {
	promptDir string

	initOnce sync.Once
	initErr  error

	mu    sync.Mutex
	cache map[string]string
}

// NewPromptStore creates a prompt store rooted at promptDir, or
// ~/.docpilot/prompts when it is empty.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".docpilot", "prompts")
	}
	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Load returns the named prompt. Unknown names are an error.
func (s *PromptStore) Load(name string) (string, error) {
	spec, ok := specFor(name)
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}

	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		logger.Debug("Prompt directory unavailable, using built-in %s prompt: %v", name, s.initErr)
		return spec.fallback, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prompt, ok := s.cache[name]; ok {
		return prompt, nil
	}

	prompt := s.read(spec)
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached prompts so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.promptDir, name+".txt")
}

func (s *PromptStore) read(spec promptSpec) string {
	data, err := os.ReadFile(s.path(spec.name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Reading prompt %s: %v", spec.name, err)
		}
		return spec.fallback
	}

	prompt := strings.TrimSpace(string(data))
	if got := strings.Count(prompt, "%s"); got != spec.placeholders {
		logger.Warn("Prompt %s has %d %%s placeholders, want %d; using the built-in prompt",
			spec.name, got, spec.placeholders)
		return spec.fallback
	}
	return prompt
}

// initialise writes any missing default files and the README.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}
	for _, spec := range promptSpecs {
		if err := writeIfMissing(s.path(spec.name), spec.fallback); err != nil {
			s.initErr = fmt.Errorf("create default prompt %q: %w", spec.name, err)
			return
		}
	}
	if err := writeIfMissing(filepath.Join(s.promptDir, "README.md"), readme()); err != nil {
		s.initErr = err
	}
}

func writeIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readme() string {
	var b strings.Builder
	b.WriteString("# DocPilot Prompts\n\n")
	b.WriteString("This directory holds the prompts DocPilot sends to the language model.\n\n")
	b.WriteString("## Files\n\n")
	for _, spec := range promptSpecs {
		fmt.Fprintf(&b, "- `%s.txt` - %s\n", spec.name, spec.about)
	}
	b.WriteString(`
## Customisation

Edit any file to change how answers are written. Changes take effect on the
next command, or after restarting the chat or the server.

## Placeholders

The summary and comparison prompts must keep exactly one ` + "`%s`" + `,
which is replaced with the comma-separated document names. A prompt with a
different count is ignored and the built-in text is used instead.
`)
	return b.String()
}
