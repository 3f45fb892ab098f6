package httpapi

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driving"
)

var (
	_ driving.RetrievalService    = (*mockRetriever)(nil)
	_ driving.ConversationService = (*mockConversation)(nil)
)

type mockRetriever struct {
	results []domain.RetrievalResult
	stats   domain.CorpusStats
	err     error

	lastQuery     string
	lastTopK      int
	retrieveCalls int
	formatCalls   int
}

func (m *mockRetriever) BuildCorpus(context.Context, driven.DocumentSource) error { return m.err }

func (m *mockRetriever) RestoreCorpus(*domain.CorpusSnapshot) error { return m.err }

func (m *mockRetriever) Snapshot() (*domain.CorpusSnapshot, error) {
	return nil, domain.ErrIndexNotBuilt
}

func (m *mockRetriever) Retrieve(_ context.Context, query string, topK int) ([]domain.RetrievalResult, error) {
	m.lastQuery, m.lastTopK = query, topK
	m.retrieveCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockRetriever) FormatContext(context.Context, string, int) (string, error) {
	m.formatCalls++
	if m.err != nil {
		return "", m.err
	}
	return domain.FormatResults(m.results), nil
}

func (m *mockRetriever) Stats() domain.CorpusStats { return m.stats }

// mockConversation echoes input and records turns.
type mockConversation struct {
	id string

	mu      sync.Mutex
	history []domain.ConversationTurn
}

func (m *mockConversation) ProcessInput(_ context.Context, text string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	answer := "echo: " + text
	m.history = append(m.history, domain.ConversationTurn{
		User:        text,
		Assistant:   answer,
		UsedContext: true,
		Outcome:     domain.TurnSuccess,
	})
	return answer
}

func (m *mockConversation) History() []domain.ConversationTurn {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ConversationTurn, len(m.history))
	copy(out, m.history)
	return out
}

func (m *mockConversation) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = nil
}

func (m *mockConversation) State() domain.ConversationState { return domain.StateIdle }

func (m *mockConversation) SessionID() string { return m.id }

// counterFactory hands out sessions with sequential IDs.
func counterFactory() SessionFactory {
	var mu sync.Mutex
	n := 0
	return func() driving.ConversationService {
		mu.Lock()
		defer mu.Unlock()
		n++
		return &mockConversation{id: fmt.Sprintf("session-%d", n)}
	}
}
