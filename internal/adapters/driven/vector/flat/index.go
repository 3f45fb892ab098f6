package flat

import (
	"container/heap"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an append-only flat L2 index.
// Safe for concurrent readers; writers take an exclusive lock.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	data       []float32 // len(data) == count * dimensions
}

// New creates an empty index for vectors of the given dimension.
func New(dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: index dimension must be positive, got %d",
			domain.ErrValidation, dimensions)
	}
	return &Index{dimensions: dimensions}, nil
}

// Dimensions returns the fixed vector size.
func (idx *Index) Dimensions() int {
	return idx.dimensions
}

// Len returns the number of stored vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.data) / idx.dimensions
}

// InsertAll appends vectors in order. If any vector has the wrong dimension
// the batch is rejected and the index is left unchanged.
func (idx *Index) InsertAll(vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != idx.dimensions {
			return fmt.Errorf("%w: vector %d has dimension %d, index expects %d",
				domain.ErrValidation, i, len(v), idx.dimensions)
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, v := range vectors {
		idx.data = append(idx.data, v...)
	}
	return nil
}

// Search returns up to k nearest vectors by squared L2 distance, closest
// first. Equal distances keep insertion order.
func (idx *Index) Search(query []float32, k int) ([]domain.VectorMatch, error) {
	if len(query) != idx.dimensions {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			domain.ErrValidation, len(query), idx.dimensions)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	count := len(idx.data) / idx.dimensions
	if k <= 0 || count == 0 {
		return []domain.VectorMatch{}, nil
	}
	if k > count {
		k = count
	}

	// Max-heap of the best k so far; the worst candidate sits on top.
	h := make(matchHeap, 0, k)
	for pos := 0; pos < count; pos++ {
		v := idx.data[pos*idx.dimensions : (pos+1)*idx.dimensions]
		m := domain.VectorMatch{Position: pos, Distance: SquaredL2(query, v)}

		if h.Len() < k {
			heap.Push(&h, m)
			continue
		}
		// Positions arrive in ascending order, so a tie never displaces
		// an earlier vector.
		if m.Distance < h[0].Distance {
			h[0] = m
			heap.Fix(&h, 0)
		}
	}

	results := []domain.VectorMatch(h)
	sort.Slice(results, func(i, j int) bool {
		return less(results[i], results[j])
	})
	return results, nil
}

// less orders matches by distance, then by position.
func less(a, b domain.VectorMatch) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Position < b.Position
}

// matchHeap is a max-heap on (distance, position).
type matchHeap []domain.VectorMatch

func (h matchHeap) Len() int           { return len(h) }
func (h matchHeap) Less(i, j int) bool { return less(h[j], h[i]) }
func (h matchHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *matchHeap) Push(x any) {
	*h = append(*h, x.(domain.VectorMatch))
}

func (h *matchHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
