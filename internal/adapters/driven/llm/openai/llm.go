// Package openai provides an LLM service adapter using the OpenAI API.
package openai

import (
	"context"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/sercha-voice/internal/adapters/driven/ai/openaiapi"
	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// finishContentFilter is the finish reason of a filtered completion.
const finishContentFilter = "content_filter"

// Config holds configuration for the OpenAI LLM service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the LLM model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides generation using the OpenAI chat completions API.
type LLMService struct {
	client *openai.Client
	model  string
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai: API key is required", domain.ErrConfiguration)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client: openaiapi.NewClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout),
		model:  cfg.Model,
	}, nil
}

// Generate sends the prompt as a single user message. OpenAI has no
// per-request safety thresholds, so cfg.Safety is not sent.
func (s *LLMService) Generate(ctx context.Context, prompt string, cfg domain.SamplingConfig) (*domain.Generation, error) {
	temperature := float32(cfg.Temperature)
	if temperature == 0 {
		// The client omits a zero temperature.
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   cfg.MaxOutputTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, openaiapi.WrapError(err)
	}
	return toGeneration(resp), nil
}

func toGeneration(resp openai.ChatCompletionResponse) *domain.Generation {
	gen := &domain.Generation{}
	for _, choice := range resp.Choices {
		candidate := domain.Candidate{FinishReason: string(choice.FinishReason)}
		if choice.Message.Content != "" {
			candidate.Parts = []string{choice.Message.Content}
		}
		gen.Candidates = append(gen.Candidates, candidate)
	}
	if len(gen.Candidates) > 0 {
		gen.Text = gen.Candidates[0].JoinedText()
		if gen.Text == "" && gen.Candidates[0].FinishReason == finishContentFilter {
			gen.BlockReason = finishContentFilter
		}
	}
	return gen
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models, without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", openaiapi.WrapError(err))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
