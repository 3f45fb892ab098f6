package driven

import (
	"context"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

// SnapshotStore persists a built corpus so later runs can skip the
// embedding step.
type SnapshotStore interface {
	// Save replaces the stored snapshot.
	Save(ctx context.Context, snapshot *domain.CorpusSnapshot) error

	// Load returns the stored snapshot or domain.ErrNotFound.
	Load(ctx context.Context) (*domain.CorpusSnapshot, error)

	// Close releases resources.
	Close() error
}
