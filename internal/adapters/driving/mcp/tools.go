package mcp

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question  string `json:"question" jsonschema:"the question to answer from the uploaded documents"`
	SessionID string `json:"session_id,omitempty" jsonschema:"conversation to continue; omit to start a new one"`
}

// AnswerOutput is the output schema for tools that produce a grounded answer.
type AnswerOutput struct {
	SessionID      string   `json:"session_id"`
	Response       string   `json:"response"`
	Sources        []string `json:"sources"`
	Confidence     float64  `json:"confidence"`
	ProcessingTime float64  `json:"processing_time"`
}

// SessionInput selects the conversation a canned question runs in.
type SessionInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"conversation whose document scope to use; omit for all documents"`
}

// UploadInput is the input schema for the upload tool. Exactly one of
// Path and Content must be set.
type UploadInput struct {
	Path     string `json:"path,omitempty" jsonschema:"local file to upload"`
	Filename string `json:"filename,omitempty" jsonschema:"file name for inline content, including its extension"`
	Content  string `json:"content,omitempty" jsonschema:"inline file content"`
	Base64   bool   `json:"base64,omitempty" jsonschema:"whether content is base64 encoded (required for PDF)"`
}

// DocumentOutput describes one registered document.
type DocumentOutput struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Chunks      int       `json:"chunks"`
	Summary     string    `json:"summary,omitempty"`
	Topics      []string  `json:"topics,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DocumentsOutput is the output schema for tools returning documents.
type DocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentInput identifies a registered document.
type DocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"identifier of a registered document"`
}

// DeleteOutput is the output schema for the delete_document tool.
type DeleteOutput struct {
	Deleted string `json:"deleted"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the uploaded documents, citing the files used",
	}, s.handleAsk)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "upload",
		Description: "Add a .txt, .md or .pdf file to the document library",
	}, s.handleUpload)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the documents in the library in upload order",
	}, s.handleListDocuments)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Remove a document from the library and every conversation",
	}, s.handleDeleteDocument)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summary",
		Description: "Write an executive summary of the documents in scope",
	}, s.handleSummary)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compare",
		Description: "Compare the documents in scope, with similarity statistics",
	}, s.handleCompare)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "insights",
		Description: "Report corpus-wide statistics and recommendations",
	}, s.handleInsights)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze",
		Description: "Compute statistics, readability and entities for one document",
	}, s.handleAnalyze)
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	answer, err := s.ports.Copilot.Ask(ctx, input.SessionID, input.Question)
	if err != nil {
		return nil, AnswerOutput{}, toolError("ask", err)
	}
	return nil, toAnswerOutput(answer), nil
}

func (s *Server) handleUpload(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UploadInput,
) (*mcp.CallToolResult, DocumentsOutput, error) {
	file, err := uploadFile(input)
	if err != nil {
		return nil, DocumentsOutput{}, toolError("upload", err)
	}

	docs, err := s.ports.Copilot.Upload(ctx, []domain.UploadFile{file})
	if err != nil {
		return nil, DocumentsOutput{}, toolError("upload", err)
	}
	return nil, toDocumentsOutput(docs), nil
}

// uploadFile resolves an upload request to a file's name and bytes.
func uploadFile(input UploadInput) (domain.UploadFile, error) {
	switch {
	case input.Path != "" && input.Content != "":
		return domain.UploadFile{}, fmt.Errorf("%w: set either path or content, not both", domain.ErrInvalidInput)
	case input.Path != "":
		data, err := os.ReadFile(input.Path)
		if err != nil {
			return domain.UploadFile{}, fmt.Errorf("%w: reading %s: %v", domain.ErrInvalidInput, input.Path, err)
		}
		name := input.Filename
		if name == "" {
			name = filepath.Base(input.Path)
		}
		return domain.UploadFile{Filename: name, Data: data}, nil
	case input.Content != "":
		if input.Filename == "" {
			return domain.UploadFile{}, fmt.Errorf("%w: filename is required with inline content", domain.ErrInvalidInput)
		}
		data := []byte(input.Content)
		if input.Base64 {
			decoded, err := base64.StdEncoding.DecodeString(input.Content)
			if err != nil {
				return domain.UploadFile{}, fmt.Errorf("%w: decoding content: %v", domain.ErrInvalidInput, err)
			}
			data = decoded
		}
		return domain.UploadFile{Filename: input.Filename, Data: data}, nil
	default:
		return domain.UploadFile{}, fmt.Errorf("%w: path or content is required", domain.ErrInvalidInput)
	}
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, DocumentsOutput, error) {
	docs, err := s.ports.Copilot.ListDocuments(ctx)
	if err != nil {
		return nil, DocumentsOutput{}, toolError("list_documents", err)
	}
	return nil, toDocumentsOutput(docs), nil
}

func (s *Server) handleDeleteDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, DeleteOutput, error) {
	if err := s.ports.Copilot.DeleteDocument(ctx, input.DocumentID); err != nil {
		return nil, DeleteOutput{}, toolError("delete_document", err)
	}
	return nil, DeleteOutput{Deleted: input.DocumentID}, nil
}

func (s *Server) handleSummary(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	answer, err := s.ports.Copilot.GetSummary(ctx, input.SessionID)
	if err != nil {
		return nil, AnswerOutput{}, toolError("summary", err)
	}
	return nil, toAnswerOutput(answer), nil
}

func (s *Server) handleCompare(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, domain.ComparisonReport, error) {
	report, err := s.ports.Copilot.GetComparison(ctx, input.SessionID)
	if err != nil {
		return nil, domain.ComparisonReport{}, toolError("compare", err)
	}
	return nil, *report, nil
}

func (s *Server) handleInsights(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, domain.Insights, error) {
	insights, err := s.ports.Copilot.GetInsights(ctx)
	if err != nil {
		return nil, domain.Insights{}, toolError("insights", err)
	}
	return nil, *insights, nil
}

func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, domain.DocumentAnalysis, error) {
	analysis, err := s.ports.Copilot.Analyze(ctx, input.DocumentID)
	if err != nil {
		return nil, domain.DocumentAnalysis{}, toolError("analyze", err)
	}
	return nil, *analysis, nil
}

func toAnswerOutput(a *domain.Answer) AnswerOutput {
	sources := a.Sources
	if sources == nil {
		sources = []string{}
	}
	return AnswerOutput{
		SessionID:      a.SessionID,
		Response:       a.Response,
		Sources:        sources,
		Confidence:     a.Confidence,
		ProcessingTime: a.ProcessingTime,
	}
}

func toDocumentOutput(d *domain.Document) DocumentOutput {
	out := DocumentOutput{
		ID:          d.ID,
		Filename:    d.Filename,
		ContentType: string(d.ContentType),
		SizeBytes:   d.SizeBytes,
		Chunks:      len(d.ChunkIDs),
		Topics:      d.Topics,
		CreatedAt:   d.CreatedAt,
	}
	if d.Summary != nil {
		out.Summary = *d.Summary
	}
	return out
}

func toDocumentsOutput(docs []domain.Document) DocumentsOutput {
	out := DocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		out.Documents[i] = toDocumentOutput(&docs[i])
	}
	return out
}
