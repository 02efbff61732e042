// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the conversation view.
	ViewChat
	// ViewDocuments lists the document library.
	ViewDocuments
	// ViewDocContent shows the extracted text of a document.
	ViewDocContent
	// ViewDocDetails shows the analysis of a document.
	ViewDocDetails
	// ViewSettings is the settings configuration view.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewDocuments:
		return "documents"
	case ViewDocContent:
		return "doc_content"
	case ViewDocDetails:
		return "doc_details"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// AnswerKind tells what produced an answer shown in the chat.
type AnswerKind int

const (
	// AnswerQuestion is a reply to a free-form question.
	AnswerQuestion AnswerKind = iota
	// AnswerSummary is an executive summary.
	AnswerSummary
	// AnswerComparison is a document comparison.
	AnswerComparison
	// AnswerInsights is the corpus report.
	AnswerInsights
)

// AnswerReceived carries a reply from the copilot back to the chat.
type AnswerReceived struct {
	Kind     AnswerKind
	Question string
	Answer   *domain.Answer
	Err      error
}

// SessionStarted carries a newly opened session.
type SessionStarted struct {
	Session *domain.SessionInfo
	Err     error
}

// ConversationCleared signals the chat history was wiped.
type ConversationCleared struct {
	Err error
}

// ScopeChanged signals the chat now sees only DocumentIDs (all when empty).
type ScopeChanged struct {
	DocumentIDs []string
	Session     *domain.SessionInfo
	Err         error
}

// DocumentsLoaded carries the document library.
type DocumentsLoaded struct {
	Documents []domain.Document
	Err       error
}

// DocumentSelected signals a document was selected.
type DocumentSelected struct {
	Document domain.Document
}

// DocumentContentLoaded carries the extracted text of a document.
type DocumentContentLoaded struct {
	DocumentID string
	Content    string
	Err        error
}

// AnalysisLoaded carries the analysis of a document.
type AnalysisLoaded struct {
	DocumentID string
	Analysis   *domain.DocumentAnalysis
	Err        error
}

// DocumentDeleted signals a document was removed from the library.
type DocumentDeleted struct {
	DocumentID string
	Err        error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Err error
}

// ChatScopeRequested asks the chat to focus on the given documents.
type ChatScopeRequested struct {
	DocumentIDs []string
}
