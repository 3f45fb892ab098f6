package driving

import (
	"context"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
)

// RetrievalService owns the corpus and answers similarity queries over it.
type RetrievalService interface {
	// BuildCorpus loads, chunks, embeds and indexes every document of the
	// source. Fails with domain.ErrNotFound when the source is empty and with
	// domain.ErrValidation when the embeddings do not fit the chunk table.
	BuildCorpus(ctx context.Context, source driven.DocumentSource) error

	// RestoreCorpus replaces the corpus with a previously saved snapshot.
	RestoreCorpus(snapshot *domain.CorpusSnapshot) error

	// Snapshot returns the durable form of the current corpus.
	Snapshot() (*domain.CorpusSnapshot, error)

	// Retrieve returns the topK chunks nearest to the query, best first.
	Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievalResult, error)

	// FormatContext renders Retrieve results as labelled source blocks.
	FormatContext(ctx context.Context, query string, topK int) (string, error)

	// Stats summarises the current corpus.
	Stats() domain.CorpusStats
}
