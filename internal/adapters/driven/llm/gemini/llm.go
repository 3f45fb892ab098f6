// Package gemini provides a generation adapter for the Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/generativelanguage/v1beta"

	"github.com/custodia-labs/sercha-voice/internal/adapters/driven/ai/googleai"
	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel   = "models/gemini-2.5-flash"
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the Gemini generation service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model is the generation model (default: models/gemini-2.5-flash).
	Model string

	// Timeout is the HTTP timeout (default: 60s). Turn deadlines come from
	// the request context.
	Timeout time.Duration
}

// LLMService answers prompts with the Gemini API.
type LLMService struct {
	svc   *generativelanguage.Service
	model string
}

// NewLLMService creates a Gemini generation service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini: API key is required", domain.ErrConfiguration)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	svc, err := googleai.NewService(ctx, cfg.APIKey, cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &LLMService{svc: svc, model: googleai.ModelPath(cfg.Model)}, nil
}

// Generate sends a single-turn prompt. A blocked or empty answer is returned
// as a Generation with empty Text, not as an error.
func (s *LLMService) Generate(ctx context.Context, prompt string, cfg domain.SamplingConfig) (*domain.Generation, error) {
	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role:  "user",
			Parts: []*generativelanguage.Part{{Text: prompt}},
		}},
		GenerationConfig: &generativelanguage.GenerationConfig{
			Temperature:     cfg.Temperature,
			MaxOutputTokens: int64(cfg.MaxOutputTokens),
			// Temperature 0 is meaningful and must not be dropped as empty.
			ForceSendFields: []string{"Temperature"},
		},
	}
	for _, safety := range cfg.Safety {
		req.SafetySettings = append(req.SafetySettings, &generativelanguage.SafetySetting{
			Category:  string(safety.Category),
			Threshold: string(safety.Threshold),
		})
	}

	resp, err := s.svc.Models.GenerateContent(s.model, req).Context(ctx).Do()
	if err != nil {
		return nil, googleai.WrapError(err)
	}
	return toGeneration(resp), nil
}

// toGeneration keeps every candidate so callers can fall back to raw parts.
func toGeneration(resp *generativelanguage.GenerateContentResponse) *domain.Generation {
	gen := &domain.Generation{}
	if resp.PromptFeedback != nil {
		gen.BlockReason = resp.PromptFeedback.BlockReason
	}
	for _, c := range resp.Candidates {
		if c == nil {
			continue
		}
		candidate := domain.Candidate{FinishReason: c.FinishReason}
		if c.Content != nil {
			for _, part := range c.Content.Parts {
				if part != nil && part.Text != "" {
					candidate.Parts = append(candidate.Parts, part.Text)
				}
			}
		}
		gen.Candidates = append(gen.Candidates, candidate)
	}
	if len(gen.Candidates) > 0 {
		gen.Text = gen.Candidates[0].JoinedText()
	}
	return gen
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping fetches the model metadata, which validates the key without
// running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.svc.Models.Get(s.model).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", googleai.WrapError(err))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
