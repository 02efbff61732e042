package domain

import "time"

// Role identifies who produced a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation.
type Turn struct {
	// Role is the author of the turn.
	Role Role

	// Content is the message text.
	Content string

	// Timestamp is when the turn was recorded.
	Timestamp time.Time

	// Sources lists the filenames cited by an assistant turn.
	Sources []string
}

// ConversationStats counts the turns currently held in memory.
type ConversationStats struct {
	TotalMessages     int `json:"total_messages" yaml:"total_messages"`
	UserMessages      int `json:"user_messages" yaml:"user_messages"`
	AssistantMessages int `json:"assistant_messages" yaml:"assistant_messages"`
}

// SessionInfo describes a conversation session.
type SessionInfo struct {
	// ID is the session identifier.
	ID string `json:"id" yaml:"id"`

	// CreatedAt is when the session was opened.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// UpdatedAt is when the session last changed.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`

	// Scoped is true when the session is restricted to DocumentIDs.
	Scoped bool `json:"scoped" yaml:"scoped"`

	// DocumentIDs is the explicit document scope when Scoped is set.
	DocumentIDs []string `json:"document_ids,omitempty" yaml:"document_ids,omitempty"`

	// Stats counts the turns held by the session.
	Stats ConversationStats `json:"stats" yaml:"stats"`

	// DocumentsLoaded is the number of documents visible to the session.
	DocumentsLoaded int `json:"documents_loaded" yaml:"documents_loaded"`

	// DocumentNames lists the filenames visible to the session.
	DocumentNames []string `json:"document_names" yaml:"document_names"`
}

// Answer is the structured result of a question.
type Answer struct {
	// SessionID is the session the question was asked in.
	SessionID string `json:"session_id" yaml:"session_id"`

	// Response is the generated answer text.
	Response string `json:"response" yaml:"response"`

	// Sources lists distinct filenames of the chunks that informed the
	// answer, in first-appearance order.
	Sources []string `json:"sources" yaml:"sources"`

	// Confidence is derived from retrieval scores, in [0, 1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// ProcessingTime is the wall-clock time of the request in seconds.
	ProcessingTime float64 `json:"processing_time" yaml:"processing_time"`
}
