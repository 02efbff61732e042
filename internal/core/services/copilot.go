package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
	"github.com/custodia-labs/docpilot/internal/core/ports/driving"
	"github.com/custodia-labs/docpilot/internal/logger"
)

// Ensure CopilotService implements the interfaces.
var (
	_ driving.CopilotService  = (*CopilotService)(nil)
	_ driven.PromptStoreAware = (*CopilotService)(nil)
)

// DefaultMaxUploadBytes is the largest file accepted by Upload.
const DefaultMaxUploadBytes = 10 * 1024 * 1024

// Canned questions used when no prompt store is configured. Each takes the
// comma-separated document names.
const (
	defaultSummaryPrompt    = "Write an executive summary of all the loaded documents: %s"
	defaultComparisonPrompt = "Compare the following documents and identify their key similarities and differences: %s"
)

// CopilotService answers questions about uploaded documents. It wires the
// registry, the retriever, the prompt builder and the synthesizer into the
// query surface used by the CLI, TUI, MCP and REST adapters.
type CopilotService struct {
	registry  *DocumentRegistry
	sessions  *SessionManager
	retriever *Retriever
	builder   *PromptBuilder
	synth     *AnswerSynthesizer
	analyzer  *DocumentAnalyzer
	insights  *InsightGenerator

	extractor   driven.TextExtractor
	promptStore driven.PromptStore

	topK           int
	maxUploadBytes int64

	now func() time.Time
}

// NewCopilotService creates the query surface. topK is validated by
// Retrieve on every question.
func NewCopilotService(
	registry *DocumentRegistry,
	sessions *SessionManager,
	retriever *Retriever,
	builder *PromptBuilder,
	synth *AnswerSynthesizer,
	topK int,
) *CopilotService {
	analyzer := NewDocumentAnalyzer()
	return &CopilotService{
		registry:       registry,
		sessions:       sessions,
		retriever:      retriever,
		builder:        builder,
		synth:          synth,
		analyzer:       analyzer,
		insights:       NewInsightGenerator(analyzer),
		topK:           topK,
		maxUploadBytes: DefaultMaxUploadBytes,
		now:            time.Now,
	}
}

// SetExtractor sets the text extractor used by Upload.
func (s *CopilotService) SetExtractor(extractor driven.TextExtractor) {
	s.extractor = extractor
}

// SetPromptStore sets the store for the summary and comparison questions.
func (s *CopilotService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// SetMaxUploadBytes overrides the per-file upload limit.
func (s *CopilotService) SetMaxUploadBytes(n int64) {
	if n > 0 {
		s.maxUploadBytes = n
	}
}

// Upload extracts and registers each file in order. It stops at the first
// failure and returns the documents registered so far with the error.
func (s *CopilotService) Upload(ctx context.Context, files []domain.UploadFile) ([]domain.Document, error) {
	logger.Section("Upload")

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files to upload", domain.ErrInvalidInput)
	}
	if s.extractor == nil {
		return nil, fmt.Errorf("%w: no text extractor configured", domain.ErrConfig)
	}

	docs := make([]domain.Document, 0, len(files))
	for _, f := range files {
		doc, err := s.upload(ctx, f)
		if err != nil {
			return docs, fmt.Errorf("uploading %s: %w", f.Filename, err)
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func (s *CopilotService) upload(ctx context.Context, f domain.UploadFile) (*domain.Document, error) {
	name := filepath.Base(f.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(s.extractor.Extensions(), ext) {
		return nil, fmt.Errorf("%w: %q files are not supported (supported: %s)",
			domain.ErrUnsupportedType, ext, strings.Join(s.extractor.Extensions(), ", "))
	}
	if int64(len(f.Data)) > s.maxUploadBytes {
		return nil, fmt.Errorf("%w: file is %d bytes, the limit is %d",
			domain.ErrInvalidInput, len(f.Data), s.maxUploadBytes)
	}

	text, err := s.extractor.Extract(ctx, name, f.Data)
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	logger.Debug("Extracted %d characters from %s", len(text), name)

	return s.registry.AddDocument(ctx, domain.NewDocument{
		Filename:    name,
		Content:     text,
		SizeBytes:   int64(len(f.Data)),
		ContentType: contentTypeOf(ext),
	})
}

func contentTypeOf(ext string) domain.ContentType {
	switch ext {
	case ".pdf":
		return domain.ContentTypePDF
	case ".md", ".markdown":
		return domain.ContentTypeMarkdown
	default:
		return domain.ContentTypeText
	}
}

// ListDocuments returns registered documents in upload order.
func (s *CopilotService) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return s.registry.ListDocuments(ctx)
}

// GetDocument returns a registered document.
func (s *CopilotService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	return s.registry.GetDocument(ctx, id)
}

// DeleteDocument removes a document from the registry, the index and every
// session scope.
func (s *CopilotService) DeleteDocument(ctx context.Context, id string) error {
	if err := s.registry.RemoveDocument(ctx, id); err != nil {
		return err
	}
	return s.sessions.ForgetDocument(ctx, id)
}

// Ask answers message from the documents visible to the session and records
// the exchange in its history. Nothing is recorded when answering fails.
func (s *CopilotService) Ask(ctx context.Context, sessionID, message string) (*domain.Answer, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if sessionID == "" {
		sessionID = s.sessions.newID()
	}

	unlock := s.sessions.Lock(sessionID)
	defer unlock()

	sess, err := s.sessions.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.ask(ctx, sess, message)
}

// ask runs the read path for one question. Callers hold the session lock.
func (s *CopilotService) ask(ctx context.Context, sess *domain.Session, message string) (*domain.Answer, error) {
	logger.Section("Ask")
	start := s.now()

	docs, err := s.sessions.ActiveDocuments(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("listing active documents: %w", err)
	}
	active := make([]string, len(docs))
	for i, d := range docs {
		active[i] = d.ID
	}
	logger.Debug("Session %s sees %d documents", sess.ID, len(active))

	results, err := s.retriever.Retrieve(ctx, message, active, s.topK)
	if err != nil {
		return nil, err
	}

	history := s.sessions.Memory(sess).Turns()
	prompt, err := s.builder.Build(message, results, history)
	if err != nil {
		return nil, err
	}

	answer, err := s.synth.Synthesize(ctx, prompt)
	if err != nil {
		return nil, err
	}
	answer.SessionID = sess.ID
	answer.ProcessingTime = s.now().Sub(start).Seconds()

	now := s.now()
	err = s.sessions.Record(ctx, sess,
		domain.Turn{Role: domain.RoleUser, Content: message, Timestamp: now},
		domain.Turn{Role: domain.RoleAssistant, Content: answer.Response, Timestamp: now, Sources: answer.Sources},
	)
	if err != nil {
		return nil, err
	}
	return answer, nil
}

// GetSummary asks for an executive summary of the session's documents.
// A summary of a single document is also stored in its derived slot the
// first time it is produced.
func (s *CopilotService) GetSummary(ctx context.Context, sessionID string) (*domain.Answer, error) {
	answer, docs, err := s.askCanned(ctx, sessionID, driven.PromptSummary, defaultSummaryPrompt, 1)
	if err != nil {
		return nil, err
	}
	if len(docs) == 1 && docs[0].Summary == nil && len(answer.Sources) > 0 {
		summary := answer.Response
		if err := s.registry.SetDerived(ctx, docs[0].ID, &summary, nil); err != nil && !errors.Is(err, domain.ErrDerivedFrozen) {
			logger.Warn("Storing summary of %s: %v", docs[0].ID, err)
		}
	}
	return answer, nil
}

// GetComparison asks the model to compare the session's documents and adds
// the statistical comparison. It needs at least two documents.
func (s *CopilotService) GetComparison(ctx context.Context, sessionID string) (*domain.ComparisonReport, error) {
	answer, docs, err := s.askCanned(ctx, sessionID, driven.PromptComparison, defaultComparisonPrompt, 2)
	if err != nil {
		return nil, err
	}
	stats, err := s.analyzer.Compare(docs)
	if err != nil {
		return nil, err
	}
	return &domain.ComparisonReport{Answer: answer, Statistics: stats}, nil
}

// askCanned asks a stored question naming the session's documents. It
// fails with domain.ErrInvalidInput when fewer than minDocs are visible.
func (s *CopilotService) askCanned(
	ctx context.Context, sessionID, name, fallback string, minDocs int,
) (*domain.Answer, []domain.Document, error) {
	if sessionID == "" {
		sessionID = s.sessions.newID()
	}

	unlock := s.sessions.Lock(sessionID)
	defer unlock()

	sess, err := s.sessions.Open(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	docs, err := s.sessions.ActiveDocuments(ctx, sess)
	if err != nil {
		return nil, nil, fmt.Errorf("listing active documents: %w", err)
	}
	if len(docs) < minDocs {
		return nil, nil, fmt.Errorf("%w: %s needs at least %d documents, %d loaded",
			domain.ErrInvalidInput, name, minDocs, len(docs))
	}

	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Filename
	}
	question := fmt.Sprintf(s.loadPrompt(name, fallback), strings.Join(names, ", "))
	answer, err := s.ask(ctx, sess, question)
	if err != nil {
		return nil, nil, err
	}
	return answer, docs, nil
}

func (s *CopilotService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	tmpl, err := s.promptStore.Load(name)
	if err != nil || !strings.Contains(tmpl, "%s") {
		logger.Warn("Prompt %q unusable, using the built-in question: %v", name, err)
		return fallback
	}
	return tmpl
}

// GetInsights derives statistics and suggestions from every registered
// document without calling the language model.
func (s *CopilotService) GetInsights(ctx context.Context) (*domain.Insights, error) {
	docs, err := s.registry.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	return s.insights.Generate(docs)
}

// Analyze returns statistics for one document.
func (s *CopilotService) Analyze(ctx context.Context, documentID string) (*domain.DocumentAnalysis, error) {
	doc, err := s.registry.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("document %s: %w", documentID, err)
		}
		return nil, err
	}
	return s.analyzer.Analyze(doc), nil
}
