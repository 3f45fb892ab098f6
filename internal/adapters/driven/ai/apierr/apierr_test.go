package apierr

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
		limited   bool
		config    bool
	}{
		{http.StatusTooManyRequests, true, true, false},
		{http.StatusInternalServerError, true, false, false},
		{http.StatusServiceUnavailable, true, false, false},
		{http.StatusUnauthorized, false, false, true},
		{http.StatusForbidden, false, false, true},
		{http.StatusBadRequest, false, false, false},
		{http.StatusNotFound, false, false, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := Status("gemini", tt.status, " quota exceeded \n")
			assert.Equal(t, tt.transient, errors.Is(err, domain.ErrTransientIO))
			assert.Equal(t, tt.limited, errors.Is(err, domain.ErrRateLimited))
			assert.Equal(t, tt.config, errors.Is(err, domain.ErrConfiguration))
			assert.Contains(t, err.Error(), "gemini error (status")
			assert.Contains(t, err.Error(), "quota exceeded")
		})
	}
}

func TestStatus_TruncatesBody(t *testing.T) {
	err := Status("openai", http.StatusBadRequest, strings.Repeat("x", 2000))
	assert.Less(t, len(err.Error()), 600)
}

func TestNetwork(t *testing.T) {
	err := Network("ollama", errors.New("connection refused"))
	assert.ErrorIs(t, err, domain.ErrTransientIO)
	assert.Contains(t, err.Error(), "connection refused")

	deadline := Network("ollama", context.DeadlineExceeded)
	assert.ErrorIs(t, deadline, domain.ErrTransientIO)
	assert.ErrorIs(t, deadline, context.DeadlineExceeded)

	cancelled := Network("ollama", context.Canceled)
	assert.ErrorIs(t, cancelled, context.Canceled)
	assert.NotErrorIs(t, cancelled, domain.ErrTransientIO)
}
