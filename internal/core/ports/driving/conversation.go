package driving

import (
	"context"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

// ConversationService answers user input for a single session.
// Calls to ProcessInput must not overlap; use one instance per conversation.
type ConversationService interface {
	// ProcessInput answers the text. It always returns a non-empty answer,
	// even when retrieval or generation fails.
	ProcessInput(ctx context.Context, text string) string

	// History returns a copy of the recorded turns, oldest first.
	History() []domain.ConversationTurn

	// Reset clears the history and starts a new session.
	Reset()

	// State returns the current turn processing state.
	State() domain.ConversationState

	// SessionID identifies the current session.
	SessionID() string
}
