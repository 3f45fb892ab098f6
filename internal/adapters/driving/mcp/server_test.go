package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil retrieval service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingRetrievalService)
	})

	t.Run("retrieval only creates server", func(t *testing.T) {
		ports := &Ports{Retrieval: &mockRetrievalService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.Equal(t, defaultTopK, ports.TopK)
	})

	t.Run("keeps configured top k", func(t *testing.T) {
		ports := &Ports{
			Retrieval:    &mockRetrievalService{},
			Conversation: &mockConversationService{},
			TopK:         5,
		}
		_, err := NewServer(ports)
		require.NoError(t, err)
		assert.Equal(t, 5, ports.TopK)
	})
}

func TestPorts_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingRetrievalService)
	assert.ErrorIs(t, (&Ports{Conversation: &mockConversationService{}}).Validate(), ErrMissingRetrievalService)
	assert.NoError(t, (&Ports{Retrieval: &mockRetrievalService{}}).Validate())
}
