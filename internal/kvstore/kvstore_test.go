package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLite(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache", "kv.db"))
	require.NoError(t, err)

	t.Cleanup(func() { store.Close() })
	return store
}

func TestStores(t *testing.T) {
	backends := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store { return newSQLite(t) },
	}

	for name, factory := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			_, err := store.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Set(ctx, "k", "v1"))
			got, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v1", got)

			require.NoError(t, store.Set(ctx, "k", "v2"))
			got, err = store.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v2", got)

			require.NoError(t, store.Remove(ctx, "k"))
			_, err = store.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)

			// removing again is not an error
			assert.NoError(t, store.Remove(ctx, "k"))
		})
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "youtube_video_snapshots:acc", `{"a":[]}`))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "youtube_video_snapshots:acc")
	require.NoError(t, err)
	assert.Equal(t, `{"a":[]}`, got)
}

func TestMemoryStore_Len(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "a", "1"))
	require.NoError(t, store.Set(ctx, "b", "2"))
	assert.Equal(t, 2, store.Len())
}

func TestNewRedisStoreFromURL_Errors(t *testing.T) {
	_, err := NewRedisStoreFromURL("not a url", "")
	assert.ErrorContains(t, err, "failed to parse redis URL")

	// nothing listens on port 1
	store, err := NewRedisStoreFromURL("redis://127.0.0.1:1/0", "")
	assert.ErrorContains(t, err, "failed to connect to redis")
	assert.Nil(t, store)
}
