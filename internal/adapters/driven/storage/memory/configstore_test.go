package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("llm.model", "gpt-4o-mini"))
	require.NoError(t, store.Set("llm.model", "llama3.2"))

	val, ok := store.Get("llm.model")
	assert.True(t, ok)
	assert.Equal(t, "llama3.2", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("s", "text")
	_ = store.Set("i", 3)
	_ = store.Set("i64", int64(4))
	_ = store.Set("f", 0.7)
	_ = store.Set("b", true)

	assert.Equal(t, "text", store.GetString("s"))
	assert.Equal(t, "", store.GetString("i"))
	assert.Equal(t, 3, store.GetInt("i"))
	assert.Equal(t, 4, store.GetInt("i64"))
	assert.Equal(t, 0, store.GetInt("f"), "float truncates toward zero")
	assert.InDelta(t, 0.7, store.GetFloat("f"), 1e-9)
	assert.InDelta(t, 3.0, store.GetFloat("i"), 1e-9)
	assert.Equal(t, 0.0, store.GetFloat("s"))
	assert.True(t, store.GetBool("b"))
	assert.False(t, store.GetBool("s"))
	assert.False(t, store.GetBool("missing"))
}

func TestConfigStore_Keys(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("llm.model", "x")
	_ = store.Set("embedding.provider", "local")
	_ = store.Set("conversation.top_k", 3)

	assert.Equal(t, []string{"conversation.top_k", "embedding.provider", "llm.model"}, store.Keys())
	assert.Equal(t, ":memory:", store.Path())
	assert.NoError(t, store.Load())
}

func TestConfigStore_Concurrent(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("conversation.top_k", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("conversation.top_k")
		}()
	}
	wg.Wait()
}
