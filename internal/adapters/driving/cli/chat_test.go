package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

func TestChatCmd_LineMode(t *testing.T) {
	b := newMockBackend()

	out, err := execute(t, b, "What are your hours?\n\n  \nexit\nnever asked\n", "chat")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, domain.WelcomeMessage))
	assert.Contains(t, out, "about: What are your hours?")
	assert.Contains(t, out, "Goodbye!")
	assert.NotContains(t, out, "never asked")

	require.Len(t, b.sessions, 1)
	assert.Len(t, b.sessions[0].history, 1, "blank lines are skipped")
}

func TestChatCmd_EndOfInput(t *testing.T) {
	b := newMockBackend()

	out, err := execute(t, b, "first\nsecond", "chat", "--plain")

	require.NoError(t, err)
	assert.Contains(t, out, "about: first")
	assert.Contains(t, out, "about: second")
	assert.NotContains(t, out, "Goodbye!")
}

func TestChatCmd_QuitIsCaseInsensitive(t *testing.T) {
	b := newMockBackend()

	out, err := execute(t, b, "QUIT\n", "chat")

	require.NoError(t, err)
	assert.Contains(t, out, "Goodbye!")
	assert.Empty(t, b.sessions[0].history)
}

func TestChatCmd_Flags(t *testing.T) {
	assert.NotNil(t, chatCmd.Flags().Lookup("plain"))
	assert.NotNil(t, chatCmd.Flags().Lookup("rebuild"))
}
