// Package gemini provides an embedding service adapter for the Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"google.golang.org/api/generativelanguage/v1beta"

	"github.com/custodia-labs/sercha-voice/internal/adapters/driven/ai/googleai"
	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel   = "models/text-embedding-004"
	DefaultTimeout = 60 * time.Second

	// maxBatchSize is the request limit of batchEmbedContents.
	maxBatchSize = 100
)

// Retrieval task types let the model embed queries and passages asymmetrically.
const (
	taskQuery    = "RETRIEVAL_QUERY"
	taskDocument = "RETRIEVAL_DOCUMENT"
)

var modelDimensions = map[string]int{
	"models/text-embedding-004": 768,
	"models/embedding-001":      768,
}

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model is the embedding model (default: models/text-embedding-004).
	Model string

	// Dimensions requests a reduced output size. Zero uses the model default.
	Dimensions int

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// EmbeddingService generates embeddings with the Gemini API.
type EmbeddingService struct {
	svc        *generativelanguage.Service
	model      string
	outputDims int64
	dimensions atomic.Int64
}

// NewEmbeddingService creates a Gemini embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini: API key is required", domain.ErrConfiguration)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	model := googleai.ModelPath(cfg.Model)

	svc, err := googleai.NewService(ctx, cfg.APIKey, cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	s := &EmbeddingService{svc: svc, model: model}
	known := modelDimensions[model]
	switch {
	case cfg.Dimensions > 0 && cfg.Dimensions != known:
		s.outputDims = int64(cfg.Dimensions)
		s.dimensions.Store(int64(cfg.Dimensions))
	case known > 0:
		s.dimensions.Store(int64(known))
	}
	return s, nil
}

// Embed generates a query embedding.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	req := s.request(text, taskQuery)
	resp, err := s.svc.Models.EmbedContent(s.model, req).Context(ctx).Do()
	if err != nil {
		return nil, googleai.WrapError(err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: gemini: no embedding returned", domain.ErrEmbeddingUnavailable)
	}
	return s.toFloat32(resp.Embedding.Values), nil
}

// EmbedBatch embeds document passages, splitting into requests of at most
// 100 texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatchSize {
		end := min(start+maxBatchSize, len(texts))

		batch := &generativelanguage.BatchEmbedContentsRequest{}
		for _, text := range texts[start:end] {
			batch.Requests = append(batch.Requests, s.request(text, taskDocument))
		}

		resp, err := s.svc.Models.BatchEmbedContents(s.model, batch).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("embed texts %d-%d: %w", start, end-1, googleai.WrapError(err))
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("%w: gemini returned %d embeddings for %d texts",
				domain.ErrValidation, len(resp.Embeddings), end-start)
		}
		for _, e := range resp.Embeddings {
			embeddings = append(embeddings, s.toFloat32(e.Values))
		}
	}
	return embeddings, nil
}

func (s *EmbeddingService) request(text, task string) *generativelanguage.EmbedContentRequest {
	return &generativelanguage.EmbedContentRequest{
		Model:                s.model,
		TaskType:             task,
		OutputDimensionality: s.outputDims,
		Content: &generativelanguage.Content{
			Parts: []*generativelanguage.Part{{Text: text}},
		},
	}
}

func (s *EmbeddingService) toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	s.dimensions.CompareAndSwap(0, int64(len(out)))
	return out
}

// Dimensions returns the embedding vector size, or 0 for an unknown model
// that has not been called yet.
func (s *EmbeddingService) Dimensions() int {
	return int(s.dimensions.Load())
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping fetches the model metadata, which validates the key without
// running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.svc.Models.Get(s.model).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", googleai.WrapError(err))
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
