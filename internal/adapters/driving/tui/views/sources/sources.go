// Package sources provides a view of the chunks behind the last answer.
package sources

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-voice/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-voice/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-voice/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-voice/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

// previewRunes caps each chunk shown in the list.
const previewRunes = 240

// View lists retrieval results for the most recent question.
type View struct {
	styles    *styles.Styles
	statusbar *status.Bar

	query   string
	results []domain.RetrievalResult
	err     error
	width   int
	height  int
}

// NewView creates a sources view.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:    s,
		statusbar: status.NewBar(s, km.SourcesHelp()),
		width:     80,
		height:    24,
	}
}

// SetResults replaces the listed results.
func (v *View) SetResults(msg messages.SourcesLoaded) {
	v.query = msg.Query
	v.results = msg.Results
	v.err = msg.Err

	v.statusbar.Clear()
	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return
	}
	v.statusbar.SetMessage(fmt.Sprintf("%d sources", len(msg.Results)))
}

// View renders the sources list.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Sources"))
	if v.query != "" {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  for %q", v.query)))
	}
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Could not load sources."))
	case v.query == "":
		b.WriteString(v.styles.Muted.Render("Ask a question to see where the answer came from."))
	case len(v.results) == 0:
		b.WriteString(v.styles.Muted.Render(domain.NoContextFound))
	default:
		wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
		for i, r := range v.results {
			header := fmt.Sprintf("%d. %s #%d", i+1, r.Metadata.Source, r.Metadata.ChunkIndex)
			b.WriteString(v.styles.Title.Render(header))
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  distance %.4f", r.Distance)))
			b.WriteString("\n")
			b.WriteString(wrap.Render(preview(r.Text)))
			b.WriteString("\n\n")
		}
	}

	body := lipgloss.NewStyle().Height(max(v.height-2, 3)).Render(b.String())
	return lipgloss.JoinVertical(lipgloss.Left, body, v.statusbar.View())
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.statusbar.SetWidth(width)
}

// Results returns the listed results.
func (v *View) Results() []domain.RetrievalResult {
	return v.results
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "..."
}
