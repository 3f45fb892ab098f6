package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	all := []error{
		ErrConfiguration, ErrValidation, ErrNotFound, ErrGenerationDegraded,
		ErrTransientIO, ErrInvalidInput, ErrIndexNotBuilt,
		ErrEmbeddingUnavailable, ErrLLMUnavailable, ErrRateLimited,
	}
	for i, a := range all {
		assert.NotEmpty(t, a.Error())
		for j, b := range all {
			if i != j {
				assert.NotErrorIs(t, a, b)
			}
		}
	}
}

func TestErrors_Wrapping(t *testing.T) {
	err := fmt.Errorf("embed batch 3: %w", ErrTransientIO)

	assert.ErrorIs(t, err, ErrTransientIO)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Equal(t, "embed batch 3: transient I/O error", err.Error())
	assert.True(t, errors.Is(fmt.Errorf("outer: %w", err), ErrTransientIO))
}
