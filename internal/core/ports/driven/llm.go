// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

// LLMService is the generation collaborator that answers prompts.
//
// Implementations include:
//   - Gemini (gemini-2.5-flash)
//   - OpenAI (gpt-4o-mini)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces a structured response for the prompt.
	// Content refused by the provider's safety policy is reported through
	// empty Text and the raw candidates, not through an error.
	// Network failures wrap domain.ErrTransientIO.
	Generate(ctx context.Context, prompt string, cfg domain.SamplingConfig) (*domain.Generation, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
