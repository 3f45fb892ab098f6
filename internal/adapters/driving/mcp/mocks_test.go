package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driving"
)

var (
	_ driving.RetrievalService    = (*mockRetrievalService)(nil)
	_ driving.ConversationService = (*mockConversationService)(nil)
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.RetrievalResult
	stats   domain.CorpusStats
	err     error

	lastTopK      int
	retrieveCalls int
	formatCalls   int
}

func (m *mockRetrievalService) BuildCorpus(context.Context, driven.DocumentSource) error {
	return m.err
}

func (m *mockRetrievalService) RestoreCorpus(*domain.CorpusSnapshot) error { return m.err }

func (m *mockRetrievalService) Snapshot() (*domain.CorpusSnapshot, error) {
	return nil, domain.ErrIndexNotBuilt
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string, topK int) ([]domain.RetrievalResult, error) {
	m.lastTopK = topK
	m.retrieveCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockRetrievalService) FormatContext(context.Context, string, int) (string, error) {
	m.formatCalls++
	if m.err != nil {
		return "", m.err
	}
	return domain.FormatResults(m.results), nil
}

func (m *mockRetrievalService) Stats() domain.CorpusStats { return m.stats }

// mockConversationService is a mock implementation of driving.ConversationService.
type mockConversationService struct {
	answer    string
	outcome   domain.TurnOutcome
	sessionID string
	history   []domain.ConversationTurn
	resets    int
}

func (m *mockConversationService) ProcessInput(_ context.Context, text string) string {
	m.history = append(m.history, domain.ConversationTurn{
		User:        text,
		Assistant:   m.answer,
		UsedContext: m.outcome == domain.TurnSuccess,
		Outcome:     m.outcome,
	})
	return m.answer
}

func (m *mockConversationService) History() []domain.ConversationTurn { return m.history }

func (m *mockConversationService) Reset() {
	m.resets++
	m.history = nil
	m.sessionID = "fresh-session"
}

func (m *mockConversationService) State() domain.ConversationState { return domain.StateIdle }

func (m *mockConversationService) SessionID() string { return m.sessionID }
