// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

// AnswerReceived carries the assistant's reply to a question.
type AnswerReceived struct {
	Question    string
	Answer      string
	UsedContext bool
	Outcome     domain.TurnOutcome
}

// SourcesLoaded carries the chunks retrieved for a question.
type SourcesLoaded struct {
	Query   string
	Results []domain.RetrievalResult
	Err     error
}

// ConversationReset signals a new session started.
type ConversationReset struct {
	SessionID string
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the conversation transcript and input.
	ViewChat ViewType = iota
	// ViewSources lists the chunks behind the last answer.
	ViewSources
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewSources:
		return "sources"
	default:
		return "unknown"
	}
}
