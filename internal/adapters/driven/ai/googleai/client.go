// Package googleai builds clients for the Gemini generativelanguage API
// shared by the Gemini embedding and generation adapters.
package googleai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/sercha-voice/internal/adapters/driven/ai/apierr"
)

// DefaultBaseURL is the public Gemini API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/"

// apiKeyHeader carries the API key on every request.
const apiKeyHeader = "x-goog-api-key"

// NewService builds a generativelanguage client that authenticates with an
// API key header. An empty baseURL means DefaultBaseURL.
func NewService(ctx context.Context, apiKey, baseURL string, timeout time.Duration) (*generativelanguage.Service, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	client := &http.Client{
		Timeout:   timeout,
		Transport: &apiKeyTransport{key: apiKey, base: http.DefaultTransport},
	}
	svc, err := generativelanguage.NewService(ctx,
		option.WithHTTPClient(client),
		option.WithEndpoint(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return svc, nil
}

// ModelPath returns name in the "models/<id>" form the API expects.
func ModelPath(name string) string {
	if strings.HasPrefix(name, "models/") || strings.HasPrefix(name, "tunedModels/") {
		return name
	}
	return "models/" + name
}

// WrapError converts a client error into the domain error taxonomy.
func WrapError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = gerr.Body
		}
		return apierr.Status("gemini", gerr.Code, msg)
	}
	return apierr.Network("gemini", err)
}

type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(apiKeyHeader, t.key)
	return t.base.RoundTrip(req)
}
