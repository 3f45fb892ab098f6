package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driving"
)

var (
	_ driving.ConversationService = (*MockConversationService)(nil)
	_ driving.RetrievalService    = (*MockRetrievalService)(nil)
)

// MockConversationService answers every question with a fixed reply.
type MockConversationService struct {
	Answer  string
	Outcome domain.TurnOutcome
	ID      string
	history []domain.ConversationTurn
}

func (m *MockConversationService) ProcessInput(_ context.Context, text string) string {
	m.history = append(m.history, domain.ConversationTurn{User: text, Assistant: m.Answer, Outcome: m.Outcome})
	return m.Answer
}

func (m *MockConversationService) History() []domain.ConversationTurn { return m.history }

func (m *MockConversationService) Reset() {
	m.history = nil
	m.ID += "-next"
}

func (m *MockConversationService) State() domain.ConversationState { return domain.StateIdle }

func (m *MockConversationService) SessionID() string { return m.ID }

// MockRetrievalService returns fixed results.
type MockRetrievalService struct {
	Results []domain.RetrievalResult
	Err     error
}

func (m *MockRetrievalService) BuildCorpus(context.Context, driven.DocumentSource) error { return nil }

func (m *MockRetrievalService) RestoreCorpus(*domain.CorpusSnapshot) error { return nil }

func (m *MockRetrievalService) Snapshot() (*domain.CorpusSnapshot, error) { return nil, nil }

func (m *MockRetrievalService) Retrieve(context.Context, string, int) ([]domain.RetrievalResult, error) {
	return m.Results, m.Err
}

func (m *MockRetrievalService) FormatContext(context.Context, string, int) (string, error) {
	return "", nil
}

func (m *MockRetrievalService) Stats() domain.CorpusStats { return domain.CorpusStats{} }

// runCmd executes cmd and flattens batches into their messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}
