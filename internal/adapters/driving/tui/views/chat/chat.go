// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-voice/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-voice/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-voice/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-voice/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-voice/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driving"
)

// Speaker identifies who said a transcript line.
type Speaker int

const (
	SpeakerAssistant Speaker = iota
	SpeakerUser
)

// Entry is one line of the transcript.
type Entry struct {
	Speaker Speaker
	Text    string
	Outcome domain.TurnOutcome
}

// chromeHeight is the rows taken by the input and status bar.
const chromeHeight = 5

// View shows the transcript above a question input.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.ChatInput
	transcript viewport.Model
	statusbar  *status.Bar

	conversation driving.ConversationService
	ctx          context.Context

	entries []Entry
	busy    bool
	width   int
	height  int
}

// NewView creates a chat view that opens with the welcome message.
func NewView(s *styles.Styles, km *keymap.KeyMap, conversation driving.ConversationService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:       s,
		keymap:       km,
		input:        input.NewChatInput(s),
		transcript:   viewport.New(80, 24-chromeHeight),
		statusbar:    status.NewBar(s, km.ChatHelp()),
		conversation: conversation,
		ctx:          context.Background(),
		width:        80,
		height:       24,
	}
	v.entries = []Entry{{Speaker: SpeakerAssistant, Text: domain.WelcomeMessage}}
	v.render()
	return v
}

// WithContext sets the context passed to the conversation.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.AnswerReceived:
		v.busy = false
		v.entries = append(v.entries, Entry{
			Speaker: SpeakerAssistant,
			Text:    msg.Answer,
			Outcome: msg.Outcome,
		})
		v.statusbar.SetState(status.StateReady)
		v.statusbar.SetMessage("")
		v.statusbar.SetTurns(len(v.conversation.History()))
		if msg.Outcome == domain.TurnErrored {
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage("the last turn failed")
		}
		v.render()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Send):
		question := strings.TrimSpace(v.input.Value())
		if question == "" || v.busy {
			return v, nil
		}
		v.busy = true
		v.input.Reset()
		v.entries = append(v.entries, Entry{Speaker: SpeakerUser, Text: question})
		v.statusbar.SetState(status.StateThinking)
		v.render()
		return v, v.ask(question)

	case keymap.Matches(keyStr, v.keymap.Reset):
		if v.busy {
			return v, nil
		}
		v.conversation.Reset()
		v.entries = []Entry{{Speaker: SpeakerAssistant, Text: domain.WelcomeMessage}}
		v.statusbar.Clear()
		v.render()
		sessionID := v.conversation.SessionID()
		return v, func() tea.Msg { return messages.ConversationReset{SessionID: sessionID} }

	case keymap.Matches(keyStr, v.keymap.ScrollUp), keymap.Matches(keyStr, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask runs a turn off the UI loop.
func (v *View) ask(question string) tea.Cmd {
	conversation, ctx := v.conversation, v.ctx
	return func() tea.Msg {
		answer := conversation.ProcessInput(ctx, question)
		msg := messages.AnswerReceived{Question: question, Answer: answer}
		if history := conversation.History(); len(history) > 0 {
			last := history[len(history)-1]
			msg.UsedContext = last.UsedContext
			msg.Outcome = last.Outcome
		}
		return msg
	}
}

// render rebuilds the transcript and scrolls to the newest line.
func (v *View) render() {
	wrap := lipgloss.NewStyle().Width(max(v.width-2, 20))

	lines := make([]string, 0, len(v.entries))
	for _, e := range v.entries {
		var label string
		switch e.Speaker {
		case SpeakerUser:
			label = v.styles.User.Render("You: ")
		case SpeakerAssistant:
			label = v.styles.Assistant.Render("Assistant: ")
		}
		text := e.Text
		switch e.Outcome {
		case domain.TurnDegraded:
			text = v.styles.Warning.Render(text)
		case domain.TurnErrored:
			text = v.styles.Error.Render(text)
		case domain.TurnSuccess:
		}
		lines = append(lines, wrap.Render(label+text))
	}

	if v.busy {
		lines = append(lines, v.styles.Muted.Render("Assistant is thinking..."))
	}

	v.transcript.SetContent(strings.Join(lines, "\n\n"))
	v.transcript.GotoBottom()
}

// View renders the chat view.
func (v *View) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		v.transcript.View(),
		v.input.View(),
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.transcript.Width = width
	v.transcript.Height = max(height-chromeHeight, 3)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.render()
}

// Entries returns the transcript lines, oldest first.
func (v *View) Entries() []Entry {
	return v.entries
}

// Busy reports whether a turn is in flight.
func (v *View) Busy() bool {
	return v.busy
}

// SetInput sets the question being typed.
func (v *View) SetInput(text string) {
	v.input.SetValue(text)
}

// Status returns the status bar state.
func (v *View) Status() status.State {
	return v.statusbar.State()
}
