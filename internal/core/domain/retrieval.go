package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// NoContextFound is rendered by FormatContext when a query yields no results.
const NoContextFound = "No relevant information found in knowledge base."

// VectorMatch is a single nearest-neighbour hit from the vector index.
type VectorMatch struct {
	// Position is the insertion offset of the matched vector.
	Position int

	// Distance is the squared Euclidean distance to the query.
	Distance float64
}

// RetrievalResult is a ranked chunk returned for a query.
type RetrievalResult struct {
	// Text is the chunk text.
	Text string `json:"text"`

	// Distance is the squared Euclidean distance to the query vector.
	// Lower is better.
	Distance float64 `json:"distance"`

	// Metadata locates the chunk in the corpus.
	Metadata ChunkMetadata `json:"metadata"`
}

// FormatResults renders results as labelled source blocks in rank order,
// or NoContextFound when there are none.
func FormatResults(results []RetrievalResult) string {
	if len(results) == 0 {
		return NoContextFound
	}

	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[Source %d: %s]\n%s\n", i+1, r.Metadata.Source, r.Text)
	}
	return strings.Join(parts, "\n")
}

// CorpusStats summarises a built corpus.
type CorpusStats struct {
	// Documents is the number of documents that produced chunks.
	Documents int `json:"documents"`

	// Chunks is the number of chunks in the chunk table.
	Chunks int `json:"chunks"`

	// Dimensions is the embedding vector size.
	Dimensions int `json:"dimensions"`

	// EmbeddingModel is the model that produced the vectors.
	EmbeddingModel string `json:"embedding_model,omitempty"`
}

// CorpusSnapshot is the durable form of a built corpus: the chunk table and
// the serialized vector index, kept side by side.
type CorpusSnapshot struct {
	// Chunks is the chunk table in index order.
	Chunks []Chunk

	// Index is the serialized vector set.
	Index []byte

	// EmbeddingModel is the model that produced the vectors.
	EmbeddingModel string

	// SourceFingerprint identifies the documents the corpus was built from.
	SourceFingerprint string
}

// FingerprintDocuments hashes document names and contents. The result does
// not depend on document order.
func FingerprintDocuments(docs []Document) string {
	sorted := make([]Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Source < sorted[j].Source })

	h := sha256.New()
	for _, d := range sorted {
		fmt.Fprintf(h, "%d:%s%d:", len(d.Source), d.Source, len(d.Content))
		h.Write([]byte(d.Content))
	}
	return hex.EncodeToString(h.Sum(nil))
}
