package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore keeps the latest corpus snapshot in memory.
type SnapshotStore struct {
	mu       sync.RWMutex
	snapshot *domain.CorpusSnapshot
}

// NewSnapshotStore creates an empty snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Save replaces the stored snapshot with a copy of snapshot.
func (s *SnapshotStore) Save(_ context.Context, snapshot *domain.CorpusSnapshot) error {
	if snapshot == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = cloneSnapshot(snapshot)
	return nil
}

// Load returns the stored snapshot, or domain.ErrNotFound.
func (s *SnapshotStore) Load(_ context.Context) (*domain.CorpusSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, domain.ErrNotFound
	}
	return cloneSnapshot(s.snapshot), nil
}

// Close is a no-op for the memory store.
func (s *SnapshotStore) Close() error {
	return nil
}

func cloneSnapshot(src *domain.CorpusSnapshot) *domain.CorpusSnapshot {
	dst := &domain.CorpusSnapshot{
		Chunks:            make([]domain.Chunk, len(src.Chunks)),
		Index:             make([]byte, len(src.Index)),
		EmbeddingModel:    src.EmbeddingModel,
		SourceFingerprint: src.SourceFingerprint,
	}
	copy(dst.Chunks, src.Chunks)
	copy(dst.Index, src.Index)
	return dst
}
