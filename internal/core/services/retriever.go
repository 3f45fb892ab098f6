package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-voice/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService owns the knowledge base corpus: the chunk table and the
// vector index built from it. Both are replaced together and are read-only
// between builds, so concurrent queries are safe.
type RetrievalService struct {
	embedder driven.EmbeddingService
	pipeline driven.PostProcessorPipeline
	indexes  driven.VectorIndexFactory

	mu          sync.RWMutex
	chunks      []domain.Chunk
	index       driven.VectorIndex
	documents   int
	fingerprint string
}

// NewRetrievalService creates a retrieval service. The corpus is empty until
// BuildCorpus or RestoreCorpus succeeds.
func NewRetrievalService(
	embedder driven.EmbeddingService,
	pipeline driven.PostProcessorPipeline,
	indexes driven.VectorIndexFactory,
) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		pipeline: pipeline,
		indexes:  indexes,
	}
}

// BuildCorpus loads every document of the source, chunks it, embeds all
// chunks in one batch and indexes the vectors.
func (s *RetrievalService) BuildCorpus(ctx context.Context, source driven.DocumentSource) error {
	logger.Section("Corpus Build")
	logger.Debug("Source: %s", source.Name())

	docs, err := source.Documents(ctx)
	if err != nil {
		return fmt.Errorf("load documents from %s: %w", source.Name(), err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("%w: no documents in %s", domain.ErrNotFound, source.Name())
	}

	var chunks []domain.Chunk
	documents := 0
	for i := range docs {
		docChunks, err := s.pipeline.Process(ctx, &docs[i])
		if err != nil {
			return fmt.Errorf("chunk %s: %w", docs[i].Source, err)
		}
		if len(docChunks) > 0 {
			documents++
		}
		logger.Debug("  %s: %d chunks", docs[i].Source, len(docChunks))
		chunks = append(chunks, docChunks...)
	}
	if len(chunks) == 0 {
		return fmt.Errorf("%w: documents in %s are empty", domain.ErrNotFound, source.Name())
	}
	logger.Info("Loaded %d chunks from %d documents", len(chunks), documents)

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: embedder returned %d vectors for %d chunks",
			domain.ErrValidation, len(vectors), len(chunks))
	}

	dims := len(vectors[0])
	if expected := s.embedder.Dimensions(); expected > 0 && dims != expected {
		return fmt.Errorf("%w: embedder %s returned dimension %d, expected %d",
			domain.ErrValidation, s.embedder.ModelName(), dims, expected)
	}

	index, err := s.indexes.New(dims)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := index.InsertAll(vectors); err != nil {
		return fmt.Errorf("index vectors: %w", err)
	}

	s.install(chunks, index, documents, domain.FingerprintDocuments(docs))
	logger.Info("Index built with %d vectors of dimension %d", index.Len(), dims)
	return nil
}

// RestoreCorpus replaces the corpus with a saved snapshot.
func (s *RetrievalService) RestoreCorpus(snapshot *domain.CorpusSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("%w: snapshot is nil", domain.ErrInvalidInput)
	}

	index, err := s.indexes.Load(snapshot.Index)
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	if index.Len() != len(snapshot.Chunks) {
		return fmt.Errorf("%w: snapshot has %d chunks but %d vectors",
			domain.ErrValidation, len(snapshot.Chunks), index.Len())
	}
	if snapshot.EmbeddingModel != "" && snapshot.EmbeddingModel != s.embedder.ModelName() {
		return fmt.Errorf("%w: snapshot was embedded with %s, current model is %s",
			domain.ErrValidation, snapshot.EmbeddingModel, s.embedder.ModelName())
	}
	if expected := s.embedder.Dimensions(); expected > 0 && index.Dimensions() != expected {
		return fmt.Errorf("%w: snapshot dimension %d, embedder dimension %d",
			domain.ErrValidation, index.Dimensions(), expected)
	}

	chunks := make([]domain.Chunk, len(snapshot.Chunks))
	copy(chunks, snapshot.Chunks)
	s.install(chunks, index, countSources(chunks), snapshot.SourceFingerprint)

	logger.Info("Restored corpus with %d chunks", len(chunks))
	return nil
}

// Snapshot returns the durable form of the current corpus.
func (s *RetrievalService) Snapshot() (*domain.CorpusSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.index == nil {
		return nil, domain.ErrIndexNotBuilt
	}

	data, err := s.index.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("serialize index: %w", err)
	}

	chunks := make([]domain.Chunk, len(s.chunks))
	copy(chunks, s.chunks)

	return &domain.CorpusSnapshot{
		Chunks:            chunks,
		Index:             data,
		EmbeddingModel:    s.embedder.ModelName(),
		SourceFingerprint: s.fingerprint,
	}, nil
}

// Retrieve returns the topK chunks nearest to the query, best first.
// An empty corpus yields no results.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievalResult, error) {
	s.mu.RLock()
	chunks, index := s.chunks, s.index
	s.mu.RUnlock()

	if index == nil || index.Len() == 0 || strings.TrimSpace(query) == "" {
		return []domain.RetrievalResult{}, nil
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := index.Search(vector, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]domain.RetrievalResult, 0, len(matches))
	for _, m := range matches {
		if m.Position < 0 || m.Position >= len(chunks) {
			return nil, fmt.Errorf("%w: index position %d outside chunk table of %d",
				domain.ErrValidation, m.Position, len(chunks))
		}
		chunk := chunks[m.Position]
		results = append(results, domain.RetrievalResult{
			Text:     chunk.Text,
			Distance: m.Distance,
			Metadata: chunk.Metadata(m.Position),
		})
	}

	logger.Debug("Retrieved %d results for %q", len(results), query)
	return results, nil
}

// FormatContext renders the results of Retrieve as labelled blocks, one per
// result in rank order.
func (s *RetrievalService) FormatContext(ctx context.Context, query string, topK int) (string, error) {
	results, err := s.Retrieve(ctx, query, topK)
	if err != nil {
		return "", err
	}
	return domain.FormatResults(results), nil
}

// Stats summarises the current corpus.
func (s *RetrievalService) Stats() domain.CorpusStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.CorpusStats{
		Documents:      s.documents,
		Chunks:         len(s.chunks),
		EmbeddingModel: s.embedder.ModelName(),
	}
	if s.index != nil {
		stats.Dimensions = s.index.Dimensions()
	}
	return stats
}

// install swaps in a new chunk table and index together.
func (s *RetrievalService) install(chunks []domain.Chunk, index driven.VectorIndex, documents int, fingerprint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = chunks
	s.index = index
	s.documents = documents
	s.fingerprint = fingerprint
}

// countSources returns the number of distinct sources in the chunk table.
func countSources(chunks []domain.Chunk) int {
	seen := make(map[string]struct{})
	for i := range chunks {
		seen[chunks[i].Source] = struct{}{}
	}
	return len(seen)
}
