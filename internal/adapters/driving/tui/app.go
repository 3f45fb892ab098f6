package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-voice/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-voice/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-voice/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-voice/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/sercha-voice/internal/adapters/driving/tui/views/sources"
)

const defaultTopK = 3

// App is the main TUI application following the Elm architecture.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	chatView    *chat.View
	sourcesView *sources.View
	currentView messages.ViewType

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if ports.TopK <= 0 {
		ports.TopK = defaultTopK
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		chatView:    chat.NewView(s, km, ports.Conversation),
		sourcesView: sources.NewView(s, km),
		currentView: messages.ViewChat,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("sercha-voice"),
		a.chatView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		keyStr := msg.String()
		if keymap.Matches(keyStr, a.keymap.Quit) {
			return a, tea.Quit
		}
		if keymap.Matches(keyStr, a.keymap.Sources) {
			return a, a.toggleView()
		}
		if a.currentView == messages.ViewSources {
			if keymap.Matches(keyStr, a.keymap.Back) {
				a.currentView = messages.ViewChat
			}
			return a, nil
		}
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.AnswerReceived:
		a.chatView, cmd = a.chatView.Update(msg)
		return a, tea.Batch(cmd, a.loadSources(msg.Question))

	case messages.SourcesLoaded:
		a.sourcesView.SetResults(msg)
		return a, nil

	case messages.ConversationReset:
		a.sourcesView.SetResults(messages.SourcesLoaded{})
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil
	}

	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

func (a *App) toggleView() tea.Cmd {
	next := messages.ViewSources
	if a.currentView == messages.ViewSources {
		next = messages.ViewChat
	}
	return func() tea.Msg { return messages.ViewChanged{View: next} }
}

// loadSources retrieves the chunks for the question, or nil when no
// retrieval service is wired.
func (a *App) loadSources(question string) tea.Cmd {
	if a.ports.Retrieval == nil {
		return nil
	}
	retrieval, ctx, topK := a.ports.Retrieval, a.ctx, a.ports.TopK
	return func() tea.Msg {
		results, err := retrieval.Retrieve(ctx, question, topK)
		return messages.SourcesLoaded{Query: question, Results: results, Err: err}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	header := a.styles.Title.Render("Voice Assistant") +
		a.styles.Muted.Render("  session "+shortID(a.ports.Conversation.SessionID()))

	var body string
	switch a.currentView {
	case messages.ViewSources:
		body = a.sourcesView.View()
	default:
		body = a.chatView.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Chat returns the chat view.
func (a *App) Chat() *chat.View {
	return a.chatView
}

// Sources returns the sources view.
func (a *App) Sources() *sources.View {
	return a.sourcesView
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions. One row is kept for the header.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.chatView.SetDimensions(width, height-1)
	a.sourcesView.SetDimensions(width, height-1)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
