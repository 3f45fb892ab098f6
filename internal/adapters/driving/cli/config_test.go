package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

func TestConfigCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range configCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["show"])
	assert.True(t, names["set"])
	assert.True(t, names["path"])
	assert.True(t, names["keys"])
	assert.True(t, names["check"])
}

func TestConfigShow_Empty(t *testing.T) {
	out, err := execute(t, newMockBackend(), "", "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Defaults apply")
}

func TestConfigShow_SortedValues(t *testing.T) {
	b := newMockBackend()
	b.settings.values["llm.model"] = "gpt-4o"
	b.settings.values["conversation.top_k"] = int64(5)

	out, err := execute(t, b, "", "config", "show")

	require.NoError(t, err)
	assert.Equal(t, "conversation.top_k = 5\nllm.model = gpt-4o\n", out)
}

func TestConfigShow_JSON(t *testing.T) {
	b := newMockBackend()
	b.settings.values["llm.model"] = "gpt-4o"

	out, err := execute(t, b, "", "config", "show", "--json")
	require.NoError(t, err)

	var values map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &values))
	assert.Equal(t, "gpt-4o", values["llm.model"])
}

func TestConfigSet(t *testing.T) {
	b := newMockBackend()

	out, err := execute(t, b, "", "config", "set", "llm.model", "gpt-4o")

	require.NoError(t, err)
	assert.Contains(t, out, "Set llm.model")
	assert.Equal(t, "gpt-4o", b.settings.values["llm.model"])
}

func TestConfigSet_Invalid(t *testing.T) {
	b := newMockBackend()
	b.settings.setErr = errors.Join(domain.ErrValidation, errors.New("top_k must be an integer"))

	_, err := execute(t, b, "", "config", "set", "conversation.top_k", "four")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestConfigSet_RequiresTwoArgs(t *testing.T) {
	_, err := execute(t, newMockBackend(), "", "config", "set", "llm.model")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestConfigPath(t *testing.T) {
	out, err := execute(t, newMockBackend(), "", "config", "path")

	require.NoError(t, err)
	assert.Equal(t, "/tmp/sercha-voice/config.toml\n", out)
}

func TestConfigKeys(t *testing.T) {
	out, err := execute(t, newMockBackend(), "", "config", "keys")

	require.NoError(t, err)
	assert.Equal(t, "conversation.top_k\nllm.model\nllm.provider\n", out)
}

func TestConfigCheck(t *testing.T) {
	out, err := execute(t, newMockBackend(), "", "config", "check")

	require.NoError(t, err)
	assert.Contains(t, out, "Knowledge base: directory knowledge_base")
	assert.Contains(t, out, "Google Gemini (cloud) (models/text-embedding-004)")
	assert.Contains(t, out, "All providers reachable.")
}

func TestConfigCheck_ProviderFailure(t *testing.T) {
	b := newMockBackend()
	b.checkErr = domain.ErrLLMUnavailable

	out, err := execute(t, b, "", "config", "check")

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.NotContains(t, out, "All providers reachable.")
}

func TestDescribeKnowledgeBase(t *testing.T) {
	assert.Equal(t, "directory /srv/kb", describeKnowledgeBase(domain.KnowledgeBaseSettings{
		Kind: domain.KnowledgeBaseFilesystem, Path: "/srv/kb",
	}))
	assert.Equal(t, "github acme/docs/kb", describeKnowledgeBase(domain.KnowledgeBaseSettings{
		Kind:   domain.KnowledgeBaseGitHub,
		GitHub: domain.GitHubSettings{Owner: "acme", Repo: "docs", Prefix: "kb"},
	}))
}
