package domain

import "time"

// Fixed user-facing strings of a conversation.
const (
	// WelcomeMessage opens every chat session.
	WelcomeMessage = "Hello! I'm your AI voice assistant. I can answer questions about our services. How can I help you today?"

	// GenericFallbackAnswer is returned when neither the provider nor the
	// knowledge base produced anything usable.
	GenericFallbackAnswer = "I don't have specific information about that. Please contact us for more details."

	// ErrorAnswer is returned when a turn fails unexpectedly.
	ErrorAnswer = "I apologize, I encountered an error. Could you please repeat that?"
)

// TurnOutcome classifies how a conversation turn resolved.
type TurnOutcome string

// Turn outcomes.
const (
	// TurnSuccess means the provider produced the answer.
	TurnSuccess TurnOutcome = "success"

	// TurnDegraded means the answer came from a fallback.
	TurnDegraded TurnOutcome = "degraded"

	// TurnErrored means the turn failed and the apology was returned.
	TurnErrored TurnOutcome = "errored"
)

// ConversationTurn is one recorded exchange.
type ConversationTurn struct {
	// User is the user's input text.
	User string `json:"user"`

	// Assistant is the answer returned to the user.
	Assistant string `json:"assistant"`

	// UsedContext is true when knowledge base context was put in the prompt.
	UsedContext bool `json:"used_context"`

	// Outcome classifies the turn.
	Outcome TurnOutcome `json:"outcome"`

	// At is when the turn completed.
	At time.Time `json:"at"`
}

// ConversationState is the step a turn is currently in.
type ConversationState string

// Turn processing states.
const (
	StateIdle               ConversationState = "idle"
	StateRetrievingContext  ConversationState = "retrieving_context"
	StatePromptBuilt        ConversationState = "prompt_built"
	StateAwaitingGeneration ConversationState = "awaiting_generation"
	StateResponded          ConversationState = "responded"
)
