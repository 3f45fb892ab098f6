package domain

// Document is raw knowledge base text together with the identifier of the
// place it was loaded from (a file name or repository path).
// Documents are created at load time and never mutated.
type Document struct {
	// Source identifies where the content came from.
	Source string

	// Content is the full document text.
	Content string
}

// Chunk is a retrievable unit of a Document.
// Chunks are created once when the corpus is built and are immutable.
// The chunk table is kept parallel to the vector index: the chunk at
// position i owns the vector at position i.
type Chunk struct {
	// ID is a unique identifier for the chunk.
	ID string

	// Text is the chunk content.
	Text string

	// Source is the Document source this chunk was cut from.
	Source string

	// Index is the 0-based position of the chunk within its source.
	Index int
}

// ChunkMetadata describes where a retrieved chunk came from.
type ChunkMetadata struct {
	// Source is the Document source identifier.
	Source string `json:"source"`

	// ChunkIndex is the position of the chunk within its source.
	ChunkIndex int `json:"chunk_id"`

	// Position is the global position in the chunk table and vector index.
	Position int `json:"position"`
}

// Metadata returns the metadata for this chunk stored at the given
// global position.
func (c Chunk) Metadata(position int) ChunkMetadata {
	return ChunkMetadata{
		Source:     c.Source,
		ChunkIndex: c.Index,
		Position:   position,
	}
}

// ChangeType classifies a knowledge base change.
type ChangeType int

// Change types reported by a watched DocumentSource.
const (
	ChangeCreated ChangeType = iota
	ChangeUpdated
	ChangeDeleted
)

// String returns the lower-case name of the change type.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// DocumentChange reports that a document of a watched source changed.
type DocumentChange struct {
	// Source identifies the document, as in Document.Source.
	Source string

	// Type is what happened to it.
	Type ChangeType
}
