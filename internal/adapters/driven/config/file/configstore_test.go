package file

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStoreAt_CreatesParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "voice.toml")

	store, err := NewConfigStoreAt(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.model", "llama3.2"))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestConfigStore_ReadsNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := `
[knowledge_base]
kind = "github"

[knowledge_base.github]
owner = "acme"
repo = "support-kb"

[conversation]
top_k = 5
temperature = 1
timeout = "45s"

[server]
verbose = true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "github", store.GetString("knowledge_base.kind"))
	assert.Equal(t, "acme", store.GetString("knowledge_base.github.owner"))
	assert.Equal(t, 5, store.GetInt("conversation.top_k"))
	assert.InDelta(t, 1.0, store.GetFloat("conversation.temperature"), 1e-9)
	assert.Equal(t, "45s", store.GetString("conversation.timeout"))
	assert.True(t, store.GetBool("server.verbose"))
	assert.Equal(t, []string{
		"conversation.temperature",
		"conversation.timeout",
		"conversation.top_k",
		"knowledge_base.github.owner",
		"knowledge_base.github.repo",
		"knowledge_base.kind",
		"server.verbose",
	}, store.Keys())
}

func TestConfigStore_TypeMismatchReturnsZero(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.model", "gpt-4o-mini"))

	assert.Equal(t, 0, store.GetInt("llm.model"))
	assert.Equal(t, 0.0, store.GetFloat("llm.model"))
	assert.False(t, store.GetBool("llm.model"))
	assert.Equal(t, "", store.GetString("missing"))
}

func TestConfigStore_Persistence(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.provider", "ollama"))
	require.NoError(t, store.Set("conversation.top_k", 4))
	require.NoError(t, store.Set("conversation.temperature", 0.5))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "ollama", reopened.GetString("llm.provider"))
	assert.Equal(t, 4, reopened.GetInt("conversation.top_k"))
	assert.InDelta(t, 0.5, reopened.GetFloat("conversation.temperature"), 1e-9)

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[llm]")
	assert.Contains(t, string(raw), "[conversation]")
}

func TestConfigStore_Set_ConflictingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.model", "llama3.2"))

	err = store.Set("llm", "flat value")
	require.Error(t, err)

	_, exists := store.Get("llm")
	assert.False(t, exists, "failed set is rolled back")
	assert.Equal(t, "llama3.2", store.GetString("llm.model"))
}

func TestConfigStore_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes differ on windows")
	}
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("conversation.top_k", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("conversation.top_k")
			_ = store.Keys()
		}()
	}
	wg.Wait()
}

func TestUnflattenMap(t *testing.T) {
	nested, err := unflattenMap(map[string]any{
		"a.b.c": 1,
		"a.d":   "x",
		"e":     true,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": 1},
			"d": "x",
		},
		"e": true,
	}, nested)

	_, err = unflattenMap(map[string]any{"a": 1, "a.b": 2})
	assert.Error(t, err)
}
