// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	geminiembed "github.com/custodia-labs/sercha-voice/internal/adapters/driven/embedding/gemini"
	"github.com/custodia-labs/sercha-voice/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/custodia-labs/sercha-voice/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/sercha-voice/internal/adapters/driven/embedding/openai"
	geminillm "github.com/custodia-labs/sercha-voice/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/sercha-voice/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/sercha-voice/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-voice/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService creates the embedding service selected by settings.
// A positive RequestsPerSecond adds client-side throttling.
func CreateEmbeddingService(ctx context.Context, settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: %s embeddings are not configured",
			domain.ErrEmbeddingUnavailable, settings.Provider)
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderGemini:
		svc, err = geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})
	case domain.AIProviderOpenAI:
		svc, err = openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})
	case domain.AIProviderOllama:
		svc = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})
	case domain.AIProviderLocal:
		svc = local.NewHashingEmbedder(settings.Dimensions)
	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s", domain.ErrConfiguration, settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("Embedding service: %s (%s)", settings.Provider, svc.ModelName())
	return WithEmbeddingRateLimit(svc, settings.RequestsPerSecond), nil
}

// CreateLLMService creates the generation service selected by settings.
// A positive RequestsPerSecond adds client-side throttling.
func CreateLLMService(ctx context.Context, settings domain.LLMSettings) (driven.LLMService, error) {
	if settings.Provider == domain.AIProviderLocal {
		return nil, fmt.Errorf("%w: the local provider cannot generate answers", domain.ErrConfiguration)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: %s generation is not configured",
			domain.ErrLLMUnavailable, settings.Provider)
	}

	var (
		svc driven.LLMService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderGemini:
		svc, err = geminillm.NewLLMService(ctx, geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderOpenAI:
		svc, err = openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderOllama:
		svc = ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", domain.ErrConfiguration, settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("LLM service: %s (%s)", settings.Provider, svc.ModelName())
	return WithLLMRateLimit(svc, settings.RequestsPerSecond), nil
}

// CreateAndValidateEmbeddingService creates an embedding service and checks
// the provider answers within pingTimeout.
func CreateAndValidateEmbeddingService(ctx context.Context, settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(pingCtx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates a generation service and checks the
// provider answers within pingTimeout.
func CreateAndValidateLLMService(ctx context.Context, settings domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(pingCtx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable: %w", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}
