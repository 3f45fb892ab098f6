// Package chunker provides a paragraph-based text chunking processor.
package chunker

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

// DefaultMaxChunkSize is the default chunk size bound in characters.
const DefaultMaxChunkSize = 500

// paragraphSeparator marks a paragraph break in source text and joins
// paragraphs inside a chunk.
const paragraphSeparator = "\n\n"

// Processor groups consecutive paragraphs into chunks below a size bound.
// Paragraphs are never cut: a paragraph longer than the bound becomes a
// chunk of its own.
// It implements the PostProcessor interface.
type Processor struct {
	maxSize int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxSize sets the chunk size bound in characters.
func WithMaxSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.maxSize = size
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxSize: DefaultMaxChunkSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// MaxSize returns the configured chunk size bound.
func (p *Processor) MaxSize() int {
	return p.maxSize
}

// Split breaks text into chunk strings in document order.
//
// Paragraphs (separated by blank lines) are accumulated into a buffer. When
// adding the next paragraph would bring the buffer to the bound or beyond,
// the buffer is closed as a chunk and the paragraph starts a new one.
// Whitespace-only text yields no chunks.
func (p *Processor) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var (
		chunks []string
		buf    strings.Builder
		bufLen int
	)

	for _, para := range paragraphs(text) {
		paraLen := utf8.RuneCountInString(para)
		if bufLen > 0 && bufLen+paraLen >= p.maxSize {
			chunks = append(chunks, strings.TrimSpace(buf.String()))
			buf.Reset()
			bufLen = 0
		}
		buf.WriteString(para)
		buf.WriteString(paragraphSeparator)
		bufLen += paraLen + utf8.RuneCountInString(paragraphSeparator)
	}

	if bufLen > 0 {
		chunks = append(chunks, strings.TrimSpace(buf.String()))
	}

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	texts := p.Split(doc.Content)
	if len(texts) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:     uuid.New().String(),
			Text:   text,
			Source: doc.Source,
			Index:  i,
		}
	}

	return chunks, nil
}

// paragraphs returns the trimmed, non-empty paragraphs of text in order.
func paragraphs(text string) []string {
	parts := strings.Split(text, paragraphSeparator)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
