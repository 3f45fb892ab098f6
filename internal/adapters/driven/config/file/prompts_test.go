package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
)

func newTestPromptStore(t *testing.T) *PromptStore {
	t.Helper()
	store, err := NewPromptStore(filepath.Join(t.TempDir(), "prompts"))
	require.NoError(t, err)
	return store
}

func TestNewPromptStore_NoIO(t *testing.T) {
	store := newTestPromptStore(t)

	_, err := os.Stat(store.Dir())
	assert.True(t, os.IsNotExist(err), "directory is created lazily")
}

func TestPromptStore_Defaults(t *testing.T) {
	store := newTestPromptStore(t)

	grounded, err := store.Load(driven.PromptGroundedAnswer)
	require.NoError(t, err)
	assert.Equal(t, "Context: %s\n\nQuestion: %s\n\nAnswer briefly:", grounded)

	bare, err := store.Load(driven.PromptBareAnswer)
	require.NoError(t, err)
	assert.Equal(t, "Answer briefly: %s", bare)

	for _, name := range []string{driven.PromptGroundedAnswer, driven.PromptBareAnswer} {
		_, err := os.Stat(filepath.Join(store.Dir(), name+".txt"))
		assert.NoError(t, err, "default file %s written", name)
	}
}

func TestPromptStore_UserFileWins(t *testing.T) {
	store := newTestPromptStore(t)
	require.NoError(t, os.MkdirAll(store.Dir(), 0700))
	path := filepath.Join(store.Dir(), driven.PromptBareAnswer+".txt")
	require.NoError(t, os.WriteFile(path, []byte("  Reply in one sentence: %s \n"), 0600))

	got, err := store.Load(driven.PromptBareAnswer)
	require.NoError(t, err)
	assert.Equal(t, "Reply in one sentence: %s", got)

	// The user's file is left alone.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "  Reply in one sentence: %s \n", string(raw))
}

func TestPromptStore_DeletedFileFallsBack(t *testing.T) {
	store := newTestPromptStore(t)
	_, err := store.Load(driven.PromptGroundedAnswer)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(store.Dir(), driven.PromptBareAnswer+".txt")))

	got, err := store.Load(driven.PromptBareAnswer)
	require.NoError(t, err)
	assert.Equal(t, "Answer briefly: %s", got)
}

func TestPromptStore_Unknown(t *testing.T) {
	store := newTestPromptStore(t)

	_, err := store.Load("no_such_prompt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	store := newTestPromptStore(t)
	first, err := store.Load(driven.PromptBareAnswer)
	require.NoError(t, err)

	path := filepath.Join(store.Dir(), driven.PromptBareAnswer+".txt")
	require.NoError(t, os.WriteFile(path, []byte("Edited: %s"), 0600))

	cached, err := store.Load(driven.PromptBareAnswer)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptBareAnswer)
	require.NoError(t, err)
	assert.Equal(t, "Edited: %s", fresh)
}

func TestPromptStore_ConcurrentLoad(t *testing.T) {
	store := newTestPromptStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := store.Load(driven.PromptGroundedAnswer)
			assert.NoError(t, err)
			assert.NotEmpty(t, got)
		}()
	}
	wg.Wait()
}
