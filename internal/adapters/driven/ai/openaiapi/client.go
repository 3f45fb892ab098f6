// Package openaiapi builds go-openai clients shared by the OpenAI embedding
// and generation adapters. Any OpenAI-compatible endpoint works through
// the base URL.
package openaiapi

import (
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/sercha-voice/internal/adapters/driven/ai/apierr"
)

// DefaultBaseURL is the public OpenAI endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// NewClient creates a client for apiKey. An empty baseURL means DefaultBaseURL.
func NewClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return openai.NewClientWithConfig(cfg)
}

// WrapError converts a client error into the domain error taxonomy.
func WrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apierr.Status("openai", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := string(reqErr.Body)
		if body == "" && reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return apierr.Status("openai", reqErr.HTTPStatusCode, body)
	}
	return apierr.Network("openai", err)
}
