// Package local provides an embedding service that runs in-process with no
// model or network: words are hashed into a fixed-size vector.
//
// Hashing vectors only capture word overlap, so retrieval quality is well
// below a neural model. The embedder is meant for offline use and tests.
package local

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
)

// Ensure HashingEmbedder implements the interface.
var _ driven.EmbeddingService = (*HashingEmbedder)(nil)

// DefaultDimensions is the vector size of the "hashing-256" model.
const DefaultDimensions = 256

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// HashingEmbedder maps text to L2-normalised feature-hashing vectors.
// It is stateless and safe for concurrent use.
type HashingEmbedder struct {
	dimensions int
	stopwords  map[string]struct{}
}

// NewHashingEmbedder creates an embedder producing vectors of the given
// size. Zero means DefaultDimensions.
func NewHashingEmbedder(dimensions int) *HashingEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &HashingEmbedder{dimensions: dimensions, stopwords: defaultStopwords()}
}

// Embed hashes the words of text into a vector. Text with no words gives
// the zero vector.
func (e *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.vector(text), nil
}

// EmbedBatch embeds each text independently.
func (e *HashingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.vector(text)
	}
	return out, nil
}

func (e *HashingEmbedder) vector(text string) []float32 {
	counts := make(map[string]int)
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if _, stop := e.stopwords[tok]; stop {
			continue
		}
		counts[tok]++
	}

	acc := make([]float64, e.dimensions)
	for tok, n := range counts {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()

		// The top bit picks the sign so collisions cancel out on average.
		weight := 1 + math.Log(float64(n))
		if sum>>63 == 1 {
			weight = -weight
		}
		acc[sum%uint64(e.dimensions)] += weight
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	vec := make([]float32, e.dimensions)
	if norm == 0 {
		return vec
	}
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec
}

// Dimensions returns the embedding vector size.
func (e *HashingEmbedder) Dimensions() int {
	return e.dimensions
}

// ModelName returns "hashing-<dimensions>".
func (e *HashingEmbedder) ModelName() string {
	return fmt.Sprintf("hashing-%d", e.dimensions)
}

// Ping always succeeds.
func (e *HashingEmbedder) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (e *HashingEmbedder) Close() error {
	return nil
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "do", "does", "for",
		"from", "how", "i", "in", "is", "it", "of", "on", "or", "that", "the",
		"this", "to", "was", "what", "when", "where", "which", "who", "will",
		"with", "you", "your",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
