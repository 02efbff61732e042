package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// documentView is the serialised form of a document. Content is only
// filled by "documents get --content".
type documentView struct {
	ID          string    `json:"id" yaml:"id"`
	Filename    string    `json:"filename" yaml:"filename"`
	ContentType string    `json:"content_type" yaml:"content_type"`
	SizeBytes   int64     `json:"size_bytes" yaml:"size_bytes"`
	Chunks      int       `json:"chunks" yaml:"chunks"`
	Topics      []string  `json:"topics,omitempty" yaml:"topics,omitempty"`
	Summary     string    `json:"summary,omitempty" yaml:"summary,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	Content     string    `json:"content,omitempty" yaml:"content,omitempty"`
}

func newDocumentView(d *domain.Document) documentView {
	v := documentView{
		ID:          d.ID,
		Filename:    d.Filename,
		ContentType: string(d.ContentType),
		SizeBytes:   d.SizeBytes,
		Chunks:      len(d.ChunkIDs),
		Topics:      d.Topics,
		CreatedAt:   d.CreatedAt,
	}
	if d.Summary != nil {
		v.Summary = *d.Summary
	}
	return v
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload documents",
	Long: `Upload PDF, text or Markdown files.

Each file is extracted, chunked and embedded, then becomes visible to every
unscoped session. Files are processed in order and the upload stops at the
first failure; files uploaded before it are kept.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

var documentCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Manage uploaded documents",
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [document-id]",
	Short: "Show a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [document-id]",
	Short: "Delete a document and its chunks",
	Long: `Delete a document, its chunks and their vectors. Sessions scoped to the
document stop seeing it.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentDelete,
}

var documentAnalyzeCmd = &cobra.Command{
	Use:   "analyze [document-id]",
	Short: "Show statistics for a document",
	Long: `Show word and sentence counts, a readability score, frequent words and
pattern-matched entities (dates, numbers, emails, URLs, names).`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentAnalyze,
}

func init() {
	documentGetCmd.Flags().Bool("content", false, "Include the extracted text")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentAnalyzeCmd)
	rootCmd.AddCommand(documentCmd)
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if err := requireCopilot(); err != nil {
		return err
	}

	files := make([]domain.UploadFile, 0, len(args))
	for _, path := range args {
		name := filepath.Base(path)
		if supportedFile != nil && !supportedFile(name) {
			return fmt.Errorf("%s: unsupported file type %q", path, filepath.Ext(name))
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		files = append(files, domain.UploadFile{Filename: name, Data: data})
	}

	docs, err := copilotService.Upload(cmd.Context(), files)
	views := make([]documentView, len(docs))
	for i := range docs {
		views[i] = newDocumentView(&docs[i])
	}
	if rerr := render(cmd, views, func() {
		for _, d := range views {
			cmd.Printf("Uploaded %s (%s, %d chunks) as %s\n",
				d.Filename, humanize.Bytes(uint64(d.SizeBytes)), d.Chunks, d.ID)
		}
	}); rerr != nil {
		return rerr
	}
	if err != nil {
		return commandError("upload failed", err)
	}
	return nil
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if err := requireCopilot(); err != nil {
		return err
	}

	docs, err := copilotService.ListDocuments(cmd.Context())
	if err != nil {
		return commandError("failed to list documents", err)
	}

	views := make([]documentView, len(docs))
	for i := range docs {
		views[i] = newDocumentView(&docs[i])
	}
	return render(cmd, views, func() {
		if len(views) == 0 {
			cmd.Println("No documents uploaded. Run 'docpilot upload <file>' to add one.")
			return
		}
		var total int64
		for _, d := range views {
			total += d.SizeBytes
		}
		cmd.Printf("Documents (%d, %s):\n\n", len(views), humanize.Bytes(uint64(total)))
		for _, d := range views {
			cmd.Printf("  %s\n", d.Filename)
			cmd.Printf("    ID: %s\n", d.ID)
			cmd.Printf("    Type: %s  Size: %s  Chunks: %d\n",
				d.ContentType, humanize.Bytes(uint64(d.SizeBytes)), d.Chunks)
			cmd.Printf("    Uploaded: %s\n", humanize.Time(d.CreatedAt))
			cmd.Println()
		}
	})
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if err := requireCopilot(); err != nil {
		return err
	}

	withContent, err := cmd.Flags().GetBool("content")
	if err != nil {
		return fmt.Errorf("getting content flag: %w", err)
	}

	doc, err := copilotService.GetDocument(cmd.Context(), args[0])
	if err != nil {
		return commandError("failed to get document", err)
	}

	view := newDocumentView(doc)
	if withContent {
		view.Content = doc.Content
	}
	return render(cmd, view, func() {
		cmd.Printf("Document: %s\n", view.Filename)
		cmd.Printf("  ID: %s\n", view.ID)
		cmd.Printf("  Type: %s\n", view.ContentType)
		cmd.Printf("  Size: %s\n", humanize.Bytes(uint64(view.SizeBytes)))
		cmd.Printf("  Chunks: %d\n", view.Chunks)
		cmd.Printf("  Uploaded: %s (%s)\n", view.CreatedAt.Format(time.RFC3339), humanize.Time(view.CreatedAt))
		if len(view.Topics) > 0 {
			cmd.Printf("  Topics: %s\n", strings.Join(view.Topics, ", "))
		}
		if view.Summary != "" {
			cmd.Printf("  Summary: %s\n", view.Summary)
		}
		if withContent {
			cmd.Println()
			cmd.Println(view.Content)
		}
	})
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if err := requireCopilot(); err != nil {
		return err
	}

	if err := copilotService.DeleteDocument(cmd.Context(), args[0]); err != nil {
		return commandError("failed to delete document", err)
	}
	cmd.Printf("Deleted document %s\n", args[0])
	return nil
}

func runDocumentAnalyze(cmd *cobra.Command, args []string) error {
	if err := requireCopilot(); err != nil {
		return err
	}

	a, err := copilotService.Analyze(cmd.Context(), args[0])
	if err != nil {
		return commandError("failed to analyze document", err)
	}
	if a == nil {
		return errors.New("no analysis returned")
	}

	return render(cmd, a, func() {
		cmd.Printf("Analysis: %s\n\n", a.Filename)
		cmd.Printf("  Characters: %s\n", humanize.Comma(int64(a.Stats.Characters)))
		cmd.Printf("  Words: %s\n", humanize.Comma(int64(a.Stats.Words)))
		cmd.Printf("  Sentences: %s\n", humanize.Comma(int64(a.Stats.Sentences)))
		cmd.Printf("  Paragraphs: %s\n", humanize.Comma(int64(a.Stats.Paragraphs)))
		cmd.Printf("  Reading time: %.1f min\n", a.ReadingMinutes)
		cmd.Println()
		cmd.Printf("  Readability: %.1f (avg %.1f words/sentence, %.1f chars/word)\n",
			a.Readability.FleschReadingEase, a.Readability.AvgSentenceLength, a.Readability.AvgWordLength)
		if len(a.Topics) > 0 {
			cmd.Printf("  Topics: %s\n", strings.Join(a.Topics, ", "))
		}
		if len(a.TopWords) > 0 {
			words := make([]string, 0, len(a.TopWords))
			for _, w := range a.TopWords {
				words = append(words, fmt.Sprintf("%s (%d)", w.Word, w.Count))
			}
			cmd.Printf("  Top words: %s\n", strings.Join(words, ", "))
		}
		printEntities(cmd, "Dates", a.Entities.Dates)
		printEntities(cmd, "Numbers", a.Entities.Numbers)
		printEntities(cmd, "Emails", a.Entities.Emails)
		printEntities(cmd, "URLs", a.Entities.URLs)
		printEntities(cmd, "Names", a.Entities.CapitalizedWords)
	})
}

func printEntities(cmd *cobra.Command, label string, values []string) {
	if len(values) == 0 {
		return
	}
	const maxShown = 5
	shown := values
	if len(shown) > maxShown {
		shown = shown[:maxShown]
	}
	line := strings.Join(shown, ", ")
	if extra := len(values) - len(shown); extra > 0 {
		line += fmt.Sprintf(" (+%d more)", extra)
	}
	cmd.Printf("  %s: %s\n", label, line)
}
