package mcp

import (
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the MCP server.
type Ports struct {
	// Retrieval answers similarity queries over the corpus.
	Retrieval driving.RetrievalService

	// Conversation runs grounded question answering. Optional: without it
	// only the retrieval tools are registered.
	Conversation driving.ConversationService

	// TopK is the default number of chunks per query.
	TopK int
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
