package gemini

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

	svc, err := NewLLMService(context.Background(), Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gemini-2.5-flash",
	})
	require.NoError(t, err)
	return svc
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(context.Background(), Config{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLLMService_Generate(t *testing.T) {
	var captured map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		writeJSON(w, http.StatusOK, `{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "We open "}, {"text": "at 9am."}]},
				"finishReason": "STOP"
			}]
		}`)
	})

	gen, err := svc.Generate(context.Background(), "When do you open?", domain.DefaultSamplingConfig())
	require.NoError(t, err)

	assert.Equal(t, "We open at 9am.", gen.Text)
	require.Len(t, gen.Candidates, 1)
	assert.Equal(t, []string{"We open ", "at 9am."}, gen.Candidates[0].Parts)
	assert.Equal(t, "STOP", gen.Candidates[0].FinishReason)
	assert.Equal(t, "models/gemini-2.5-flash", svc.ModelName())

	cfg := captured["generationConfig"].(map[string]any)
	assert.InDelta(t, 0.7, cfg["temperature"], 1e-9)
	assert.EqualValues(t, 150, cfg["maxOutputTokens"])

	safety := captured["safetySettings"].([]any)
	require.Len(t, safety, 4)
	for _, s := range safety {
		assert.Equal(t, "BLOCK_NONE", s.(map[string]any)["threshold"])
	}

	contents := captured["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	assert.Equal(t, "When do you open?", parts[0].(map[string]any)["text"])
}

func TestLLMService_Generate_ZeroTemperatureIsSent(t *testing.T) {
	var captured map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		writeJSON(w, http.StatusOK, `{"candidates": []}`)
	})

	cfg := domain.DefaultSamplingConfig()
	cfg.Temperature = 0
	_, err := svc.Generate(context.Background(), "hi", cfg)
	require.NoError(t, err)

	genCfg := captured["generationConfig"].(map[string]any)
	assert.Contains(t, genCfg, "temperature")
}

func TestLLMService_Generate_Blocked(t *testing.T) {
	t.Run("prompt blocked", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"promptFeedback": {"blockReason": "SAFETY"}}`)
		})

		gen, err := svc.Generate(context.Background(), "hi", domain.DefaultSamplingConfig())
		require.NoError(t, err)
		assert.Empty(t, gen.Text)
		assert.Empty(t, gen.Candidates)
		assert.Equal(t, "SAFETY", gen.BlockReason)
	})

	t.Run("candidate without parts", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"candidates": [{"finishReason": "SAFETY"}]}`)
		})

		gen, err := svc.Generate(context.Background(), "hi", domain.DefaultSamplingConfig())
		require.NoError(t, err)
		assert.Empty(t, gen.Text)
		require.Len(t, gen.Candidates, 1)
		assert.Equal(t, "SAFETY", gen.Candidates[0].FinishReason)
	})
}

func TestLLMService_Generate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"rate limited", http.StatusTooManyRequests, domain.ErrRateLimited},
		{"server error", http.StatusInternalServerError, domain.ErrTransientIO},
		{"bad key", http.StatusForbidden, domain.ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, `{"error": {"code": 0, "message": "nope", "status": "FAILED"}}`)
			})

			_, err := svc.Generate(context.Background(), "hi", domain.DefaultSamplingConfig())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLLMService_Ping(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"name": "models/gemini-2.5-flash"}`)
	})

	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}
