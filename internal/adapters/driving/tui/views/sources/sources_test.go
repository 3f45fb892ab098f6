package sources

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/sercha-voice/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

func TestView_Empty(t *testing.T) {
	v := NewView(nil, nil)
	assert.Contains(t, v.View(), "Ask a question")
}

func TestView_NoResults(t *testing.T) {
	v := NewView(nil, nil)
	v.SetResults(messages.SourcesLoaded{Query: "parking"})
	assert.Contains(t, v.View(), domain.NoContextFound)
}

func TestView_ListsResults(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDimensions(120, 40)
	v.SetResults(messages.SourcesLoaded{
		Query: "refunds",
		Results: []domain.RetrievalResult{
			{Text: "Refunds within 30 days.", Distance: 0.1234, Metadata: domain.ChunkMetadata{Source: "policy.txt", ChunkIndex: 2}},
			{Text: strings.Repeat("long ", 100), Distance: 0.5, Metadata: domain.ChunkMetadata{Source: "faq.txt"}},
		},
	})

	view := v.View()
	assert.Contains(t, view, "1. policy.txt #2")
	assert.Contains(t, view, "distance 0.1234")
	assert.Contains(t, view, "2. faq.txt #0")
	assert.Contains(t, view, "...")
	assert.Contains(t, view, "2 sources")
}

func TestView_Error(t *testing.T) {
	v := NewView(nil, nil)
	v.SetResults(messages.SourcesLoaded{Query: "q", Err: errors.New("boom")})
	assert.Contains(t, v.View(), "Could not load sources.")
	assert.Contains(t, v.View(), "boom")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short"))
	long := strings.Repeat("é", previewRunes+5)
	got := preview(long)
	assert.Equal(t, previewRunes+3, len([]rune(got)))
}
