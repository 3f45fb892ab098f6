package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/postprocessors/chunker"
)

// NewDefaultPipeline returns the knowledge base pipeline: one paragraph
// chunker bounded at maxChunkSize characters.
func NewDefaultPipeline(maxChunkSize int) (*Pipeline, error) {
	if maxChunkSize <= 0 {
		return nil, fmt.Errorf("%w: max chunk size must be positive, got %d", domain.ErrConfiguration, maxChunkSize)
	}
	return NewPipeline(chunker.New(chunker.WithMaxSize(maxChunkSize))), nil
}
