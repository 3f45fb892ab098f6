package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

func TestServer_handleRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns ranked chunks", func(t *testing.T) {
		retrieval := &mockRetrievalService{
			results: []domain.RetrievalResult{
				{
					Text:     "Delivery takes two days.",
					Distance: 0.12,
					Metadata: domain.ChunkMetadata{Source: "shipping.txt", ChunkIndex: 1, Position: 4},
				},
			},
		}
		server, err := NewServer(&Ports{Retrieval: retrieval})
		require.NoError(t, err)

		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{Query: "delivery", TopK: 2})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "shipping.txt", output.Results[0].Source)
		assert.Equal(t, 1, output.Results[0].ChunkID)
		assert.InDelta(t, 0.12, output.Results[0].Distance, 1e-9)
		assert.Equal(t, "Delivery takes two days.", output.Results[0].Text)
		assert.Equal(t, "[Source 1: shipping.txt]\nDelivery takes two days.\n", output.Context)
		assert.Equal(t, 2, retrieval.lastTopK)
		assert.Equal(t, 1, retrieval.retrieveCalls, "query is embedded once")
		assert.Zero(t, retrieval.formatCalls)
	})

	t.Run("default top k", func(t *testing.T) {
		retrieval := &mockRetrievalService{}
		server, err := NewServer(&Ports{Retrieval: retrieval})
		require.NoError(t, err)

		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{Query: "anything"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Equal(t, domain.NoContextFound, output.Context)
		assert.Equal(t, defaultTopK, retrieval.lastTopK)
	})

	t.Run("empty query", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		_, _, err = server.handleRetrieve(ctx, nil, RetrieveInput{Query: " "})
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})

	t.Run("returns error on retrieval failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{err: errors.New("embedding down")}})
		require.NoError(t, err)

		_, _, err = server.handleRetrieve(ctx, nil, RetrieveInput{Query: "q"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding down")
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()
	conv := &mockConversationService{
		answer:    "We deliver in two days.",
		outcome:   domain.TurnSuccess,
		sessionID: "session-a",
	}
	server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Conversation: conv})
	require.NoError(t, err)

	_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "How fast is delivery?"})
	require.NoError(t, err)
	assert.Equal(t, "We deliver in two days.", output.Answer)
	assert.Equal(t, "session-a", output.SessionID)
	assert.True(t, output.UsedContext)
	assert.Equal(t, domain.TurnSuccess, output.Outcome)

	_, _, err = server.handleAsk(ctx, nil, AskInput{Question: ""})
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Len(t, conv.history, 1)
}

func TestServer_handleReset(t *testing.T) {
	conv := &mockConversationService{answer: "hi", outcome: domain.TurnDegraded, sessionID: "old"}
	server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Conversation: conv})
	require.NoError(t, err)

	_, _, err = server.handleAsk(context.Background(), nil, AskInput{Question: "hello"})
	require.NoError(t, err)

	_, output, err := server.handleReset(context.Background(), nil, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "fresh-session", output.SessionID)
	assert.Equal(t, 1, conv.resets)
	assert.Empty(t, conv.history)
}
