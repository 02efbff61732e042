package http

import (
	"time"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// Response wraps every successful payload.
type Response[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func successResponse[T any](message string, data T) Response[T] {
	return Response[T]{Success: true, Message: message, Data: data}
}

// AskRequest is the body of POST /api/ask.
type AskRequest struct {
	SessionID string `json:"session_id" validate:"omitempty,max=64"`
	Message   string `json:"message" validate:"required,max=8000"`
}

// ScopeRequest is the body of PUT /api/sessions/:id/scope. An empty list
// removes the scope.
type ScopeRequest struct {
	DocumentIDs []string `json:"document_ids" validate:"omitempty,max=100,dive,required,max=64"`
}

// SessionQuery selects the session for summary and comparison requests.
type SessionQuery struct {
	SessionID string `query:"session_id" validate:"omitempty,max=64"`
}

// DocumentDTO describes an uploaded document. Content is only set when
// requested with ?content=true.
type DocumentDTO struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Chunks      int       `json:"chunks"`
	Topics      []string  `json:"topics,omitempty"`
	Summary     *string   `json:"summary,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Content     string    `json:"content,omitempty"`
}

// TurnDTO is one message of a conversation.
type TurnDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Sources   []string  `json:"sources,omitempty"`
}

// HealthDTO is returned by GET /api/health.
type HealthDTO struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
}

func toDocumentDTO(d *domain.Document) DocumentDTO {
	return DocumentDTO{
		ID:          d.ID,
		Filename:    d.Filename,
		ContentType: string(d.ContentType),
		SizeBytes:   d.SizeBytes,
		Chunks:      len(d.ChunkIDs),
		Topics:      d.Topics,
		Summary:     d.Summary,
		CreatedAt:   d.CreatedAt,
	}
}

func toDocumentDTOs(docs []domain.Document) []DocumentDTO {
	out := make([]DocumentDTO, len(docs))
	for i := range docs {
		out[i] = toDocumentDTO(&docs[i])
	}
	return out
}

func toTurnDTOs(turns []domain.Turn) []TurnDTO {
	out := make([]TurnDTO, len(turns))
	for i, t := range turns {
		out[i] = TurnDTO{
			Role:      string(t.Role),
			Content:   t.Content,
			Timestamp: t.Timestamp,
			Sources:   t.Sources,
		}
	}
	return out
}
