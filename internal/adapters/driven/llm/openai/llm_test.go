package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewLLMService(Config{APIKey: "sk-test", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)
	return svc
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	svc, err := NewLLMService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestLLMService_Generate(t *testing.T) {
	var captured map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		writeJSON(w, http.StatusOK, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "We open at 9am."},
				"finish_reason": "stop"
			}]
		}`)
	})

	gen, err := svc.Generate(context.Background(), "When do you open?", domain.DefaultSamplingConfig())
	require.NoError(t, err)

	assert.Equal(t, "We open at 9am.", gen.Text)
	require.Len(t, gen.Candidates, 1)
	assert.Equal(t, "stop", gen.Candidates[0].FinishReason)
	assert.Empty(t, gen.BlockReason)

	assert.Equal(t, DefaultModel, captured["model"])
	assert.EqualValues(t, 150, captured["max_tokens"])
	assert.InDelta(t, 0.7, captured["temperature"], 1e-6)
	messages := captured["messages"].([]any)
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]any)
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "When do you open?", msg["content"])
}

func TestLLMService_Generate_ZeroTemperature(t *testing.T) {
	var captured map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		writeJSON(w, http.StatusOK, `{"choices": []}`)
	})

	cfg := domain.DefaultSamplingConfig()
	cfg.Temperature = 0
	_, err := svc.Generate(context.Background(), "hi", cfg)
	require.NoError(t, err)

	require.Contains(t, captured, "temperature")
	assert.InDelta(t, 0, captured["temperature"], 1e-9)
}

func TestLLMService_Generate_ContentFilter(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"choices": [{"index": 0, "message": {"role": "assistant", "content": ""}, "finish_reason": "content_filter"}]
		}`)
	})

	gen, err := svc.Generate(context.Background(), "hi", domain.DefaultSamplingConfig())
	require.NoError(t, err)
	assert.Empty(t, gen.Text)
	assert.Equal(t, "content_filter", gen.BlockReason)
	require.Len(t, gen.Candidates, 1)
	assert.Empty(t, gen.Candidates[0].Parts)
}

func TestLLMService_Generate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"rate limited", http.StatusTooManyRequests, domain.ErrRateLimited},
		{"overloaded", http.StatusServiceUnavailable, domain.ErrTransientIO},
		{"forbidden", http.StatusForbidden, domain.ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, `{"error": {"message": "failed", "type": "error"}}`)
			})

			_, err := svc.Generate(context.Background(), "hi", domain.DefaultSamplingConfig())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLLMService_Ping(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"object": "list", "data": [{"id": "gpt-4o-mini"}]}`)
	})

	assert.NoError(t, svc.Ping(context.Background()))
}
