package driven

import (
	"context"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

// DocumentSource enumerates the text documents of a knowledge base.
type DocumentSource interface {
	// Name describes the source for logs (e.g. a directory or repository).
	Name() string

	// Documents returns every eligible document in a stable order.
	// Returns domain.ErrNotFound if the location does not exist.
	Documents(ctx context.Context) ([]domain.Document, error)
}

// WatchableSource is a DocumentSource that can push change notifications.
type WatchableSource interface {
	DocumentSource

	// Watch reports changes until ctx is cancelled, then closes the channel.
	Watch(ctx context.Context) (<-chan domain.DocumentChange, error)
}
