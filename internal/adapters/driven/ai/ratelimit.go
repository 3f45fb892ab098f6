package ai

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
)

var (
	_ driven.EmbeddingService = (*rateLimitedEmbedding)(nil)
	_ driven.LLMService       = (*rateLimitedLLM)(nil)
)

// newLimiter returns a token bucket of rps requests per second, or nil when
// throttling is disabled.
func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// rateLimitedEmbedding throttles calls to an embedding provider.
type rateLimitedEmbedding struct {
	driven.EmbeddingService
	limiter *rate.Limiter
}

// WithEmbeddingRateLimit wraps svc so that at most rps provider calls are
// made per second. Non-positive rps returns svc unchanged.
func WithEmbeddingRateLimit(svc driven.EmbeddingService, rps float64) driven.EmbeddingService {
	limiter := newLimiter(rps)
	if limiter == nil {
		return svc
	}
	return &rateLimitedEmbedding{EmbeddingService: svc, limiter: limiter}
}

func (r *rateLimitedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.EmbeddingService.Embed(ctx, text)
}

func (r *rateLimitedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.EmbeddingService.EmbedBatch(ctx, texts)
}

// rateLimitedLLM throttles calls to a generation provider.
type rateLimitedLLM struct {
	driven.LLMService
	limiter *rate.Limiter
}

// WithLLMRateLimit wraps svc so that at most rps generations are requested
// per second. Non-positive rps returns svc unchanged.
func WithLLMRateLimit(svc driven.LLMService, rps float64) driven.LLMService {
	limiter := newLimiter(rps)
	if limiter == nil {
		return svc
	}
	return &rateLimitedLLM{LLMService: svc, limiter: limiter}
}

func (r *rateLimitedLLM) Generate(ctx context.Context, prompt string, cfg domain.SamplingConfig) (*domain.Generation, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.LLMService.Generate(ctx, prompt, cfg)
}
