package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-voice/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

func newTestApp(t *testing.T, retrieval *MockRetrievalService) (*App, *MockConversationService) {
	t.Helper()
	conv := &MockConversationService{Answer: "We open at nine.", Outcome: domain.TurnSuccess, ID: "0123456789abcdef"}
	ports := &Ports{Conversation: conv}
	if retrieval != nil {
		ports.Retrieval = retrieval
	}
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app, conv
}

func TestNewApp(t *testing.T) {
	t.Run("requires conversation", func(t *testing.T) {
		app, err := NewApp(&Ports{})
		assert.ErrorIs(t, err, ErrMissingConversationService)
		assert.Nil(t, app)
	})

	t.Run("starts in chat with welcome", func(t *testing.T) {
		app, _ := newTestApp(t, nil)
		assert.Equal(t, messages.ViewChat, app.CurrentView())
		require.Len(t, app.Chat().Entries(), 1)
		assert.Equal(t, domain.WelcomeMessage, app.Chat().Entries()[0].Text)
		assert.Equal(t, defaultTopK, app.ports.TopK)
	})
}

func TestApp_View_NotReady(t *testing.T) {
	app, err := NewApp(&Ports{Conversation: &MockConversationService{}})
	require.NoError(t, err)
	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_View_ShowsShortSessionID(t *testing.T) {
	app, _ := newTestApp(t, nil)
	view := app.View()
	assert.Contains(t, view, "01234567")
	assert.NotContains(t, view, "0123456789abcdef")
}

func TestApp_Quit(t *testing.T) {
	app, _ := newTestApp(t, nil)
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_AskFlow_LoadsSources(t *testing.T) {
	retrieval := &MockRetrievalService{Results: []domain.RetrievalResult{{
		Text:     "Opening hours are 9am to 5pm.",
		Distance: 0.2,
		Metadata: domain.ChunkMetadata{Source: "hours.txt"},
	}}}
	app, conv := newTestApp(t, retrieval)

	app.Chat().SetInput("When do you open?")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, app.Chat().Busy())

	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)
	answer, ok := msgs[0].(messages.AnswerReceived)
	require.True(t, ok)
	assert.Equal(t, "We open at nine.", answer.Answer)
	assert.Len(t, conv.History(), 1)

	_, cmd = app.Update(answer)
	assert.False(t, app.Chat().Busy())

	var loaded *messages.SourcesLoaded
	for _, m := range runCmd(cmd) {
		if sl, ok := m.(messages.SourcesLoaded); ok {
			loaded = &sl
		}
	}
	require.NotNil(t, loaded)
	assert.Equal(t, "When do you open?", loaded.Query)

	app.Update(*loaded)
	assert.Len(t, app.Sources().Results(), 1)

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyTab})
	for _, m := range runCmd(cmd) {
		app.Update(m)
	}
	assert.Equal(t, messages.ViewSources, app.CurrentView())
	assert.Contains(t, app.View(), "hours.txt")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestApp_AnswerWithoutRetrieval(t *testing.T) {
	app, _ := newTestApp(t, nil)

	_, cmd := app.Update(messages.AnswerReceived{Question: "q", Answer: "a", Outcome: domain.TurnSuccess})
	assert.Empty(t, runCmd(cmd))
}

func TestApp_SourcesError(t *testing.T) {
	app, _ := newTestApp(t, &MockRetrievalService{})
	app.Update(messages.SourcesLoaded{Query: "q", Err: errors.New("embedding down")})
	app.Update(messages.ViewChanged{View: messages.ViewSources})

	assert.Contains(t, app.View(), "Could not load sources.")
}

func TestApp_ResetClearsSources(t *testing.T) {
	app, conv := newTestApp(t, &MockRetrievalService{})
	app.Update(messages.SourcesLoaded{Query: "q", Results: []domain.RetrievalResult{{Text: "x"}}})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	for _, m := range runCmd(cmd) {
		app.Update(m)
	}

	assert.Equal(t, "0123456789abcdef-next", conv.SessionID())
	assert.Empty(t, app.Sources().Results())
}
