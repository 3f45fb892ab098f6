package driven

import "github.com/custodia-labs/sercha-voice/internal/core/domain"

// VectorIndex stores fixed-dimension vectors in insertion order and answers
// exact nearest-neighbour queries by Euclidean distance.
type VectorIndex interface {
	// InsertAll appends a batch of vectors. A vector whose dimension differs
	// from the index dimension rejects the whole batch.
	InsertAll(vectors [][]float32) error

	// Search returns up to k nearest vectors in ascending distance order.
	// Equal distances are ordered by lower position first.
	Search(query []float32, k int) ([]domain.VectorMatch, error)

	// Len returns the number of stored vectors.
	Len() int

	// Dimensions returns the fixed vector size.
	Dimensions() int

	// MarshalBinary serializes the full vector set.
	MarshalBinary() ([]byte, error)
}

// VectorIndexFactory creates vector indexes.
type VectorIndexFactory interface {
	// New creates an empty index of the given dimension.
	New(dimensions int) (VectorIndex, error)

	// Load restores an index from MarshalBinary output.
	Load(data []byte) (VectorIndex, error)
}
