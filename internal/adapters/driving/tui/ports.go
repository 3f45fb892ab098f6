// Package tui provides an interactive terminal chat with the voice assistant.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Conversation answers questions. Required.
	Conversation driving.ConversationService

	// Retrieval fills the sources view. Optional.
	Retrieval driving.RetrievalService

	// TopK is how many sources are shown per question.
	TopK int
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Conversation == nil {
		return ErrMissingConversationService
	}
	return nil
}
