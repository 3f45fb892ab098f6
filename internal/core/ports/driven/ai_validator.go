package driven

import (
	"context"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

// AIConfigValidator checks provider settings against the live provider.
type AIConfigValidator interface {
	// ValidateEmbedding creates the configured embedding service and pings it.
	ValidateEmbedding(ctx context.Context, settings domain.EmbeddingSettings) error

	// ValidateLLM creates the configured generation service and pings it.
	ValidateLLM(ctx context.Context, settings domain.LLMSettings) error
}
