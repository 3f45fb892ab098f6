package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driving"
)

var (
	_ Backend                     = (*mockBackend)(nil)
	_ driving.SettingsService     = (*mockSettings)(nil)
	_ driving.RetrievalService    = (*mockRetrieval)(nil)
	_ driving.ConversationService = (*mockConversation)(nil)
)

type mockBackend struct {
	settings  *mockSettings
	app       *domain.AppSettings
	appErr    error
	corpus    *mockRetrieval
	corpusErr error
	changes   chan domain.DocumentChange
	watchErr  error
	checkErr  error

	rebuilds      int
	corpusRebuild bool
	sessions      []*mockConversation
	closed        bool
}

func newMockBackend() *mockBackend {
	app := domain.DefaultAppSettings()
	return &mockBackend{
		settings: &mockSettings{values: map[string]any{}},
		app:      &app,
		corpus: &mockRetrieval{
			stats: domain.CorpusStats{Documents: 2, Chunks: 5, Dimensions: 256, EmbeddingModel: "hashing-256"},
		},
	}
}

func (m *mockBackend) Settings() driving.SettingsService { return m.settings }

func (m *mockBackend) AppSettings() (*domain.AppSettings, error) { return m.app, m.appErr }

func (m *mockBackend) Corpus(_ context.Context, rebuild bool) (driving.RetrievalService, error) {
	if rebuild {
		m.corpusRebuild = true
	}
	if m.corpusErr != nil {
		return nil, m.corpusErr
	}
	return m.corpus, nil
}

func (m *mockBackend) Rebuild(ctx context.Context) (driving.RetrievalService, error) {
	m.rebuilds++
	return m.Corpus(ctx, true)
}

func (m *mockBackend) Conversations(ctx context.Context, rebuild bool) (func() driving.ConversationService, error) {
	if _, err := m.Corpus(ctx, rebuild); err != nil {
		return nil, err
	}
	return func() driving.ConversationService {
		conv := &mockConversation{}
		m.sessions = append(m.sessions, conv)
		return conv
	}, nil
}

func (m *mockBackend) Watch(context.Context) (<-chan domain.DocumentChange, error) {
	if m.watchErr != nil {
		return nil, m.watchErr
	}
	return m.changes, nil
}

func (m *mockBackend) CheckProviders(context.Context) error { return m.checkErr }

func (m *mockBackend) Close() error {
	m.closed = true
	return nil
}

type mockSettings struct {
	values map[string]any
	setErr error
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := domain.DefaultAppSettings()
	return &s, nil
}

func (m *mockSettings) Validate() error { return nil }

func (m *mockSettings) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockSettings) Values() map[string]any { return m.values }

func (m *mockSettings) Keys() []string {
	return []string{"conversation.top_k", "llm.model", "llm.provider"}
}

func (m *mockSettings) ConfigPath() string { return "/tmp/sercha-voice/config.toml" }

type mockRetrieval struct {
	results []domain.RetrievalResult
	err     error
	stats   domain.CorpusStats
	topK    int
}

func (m *mockRetrieval) BuildCorpus(context.Context, driven.DocumentSource) error { return nil }

func (m *mockRetrieval) RestoreCorpus(*domain.CorpusSnapshot) error { return nil }

func (m *mockRetrieval) Snapshot() (*domain.CorpusSnapshot, error) { return nil, nil }

func (m *mockRetrieval) Retrieve(_ context.Context, _ string, topK int) ([]domain.RetrievalResult, error) {
	m.topK = topK
	return m.results, m.err
}

func (m *mockRetrieval) FormatContext(context.Context, string, int) (string, error) {
	return "", nil
}

func (m *mockRetrieval) Stats() domain.CorpusStats { return m.stats }

// mockConversation answers "about: <question>" and uses context whenever the
// question mentions hours.
type mockConversation struct {
	history []domain.ConversationTurn
}

func (m *mockConversation) ProcessInput(_ context.Context, text string) string {
	answer := "about: " + text
	m.history = append(m.history, domain.ConversationTurn{
		User:        text,
		Assistant:   answer,
		UsedContext: strings.Contains(text, "hours"),
		Outcome:     domain.TurnSuccess,
	})
	return answer
}

func (m *mockConversation) History() []domain.ConversationTurn {
	return append([]domain.ConversationTurn(nil), m.history...)
}

func (m *mockConversation) Reset() { m.history = nil }

func (m *mockConversation) State() domain.ConversationState { return domain.StateIdle }

func (m *mockConversation) SessionID() string { return "session" }

// execute runs the root command with args against b and returns its output.
// Flag variables are package state, so they are reset between runs.
func execute(t *testing.T, b Backend, stdin string, args ...string) (string, error) {
	t.Helper()

	backend = b
	t.Cleanup(func() {
		backend = nil
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags() {
	askRebuild, askJSON = false, false
	searchLimit, searchJSON, searchRebuild = 3, false, false
	chatPlain, chatRebuild = false, false
	serveAddr, serveRebuild = "", false
	indexWatch = false
	configJSON = false
	mcpPort = 0
	cfgFile, envFile = "", ""
	verbose, skipPing = false, false
}
