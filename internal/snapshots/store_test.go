package snapshots

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"codeberg.org/tubetrack/server/internal/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wraps a memory store and fails Get/Set on demand
type flakyKV struct {
	*kvstore.MemoryStore
	failGet bool
	failSet bool
}

var errBackend = errors.New("backend unavailable")

func (f *flakyKV) Get(ctx context.Context, key string) (string, error) {
	if f.failGet {
		return "", errBackend
	}

	return f.MemoryStore.Get(ctx, key)
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errBackend
	}

	return f.MemoryStore.Set(ctx, key, value)
}

func newTestStore() (*Store, *flakyKV) {
	kv := &flakyKV{MemoryStore: kvstore.NewMemoryStore()}
	store := NewStore(kv, KeyFor("acc-1"))
	store.now = func() time.Time { return time.Date(2026, 3, 2, 3, 0, 0, 0, time.UTC) }

	return store, kv
}

func TestRecordSnapshot_OverwritesSameDate(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	a := []PlaylistRef{{ID: "PLa", Title: "A"}}
	b := []PlaylistRef{{ID: "PLb", Title: "B"}}

	require.NoError(t, store.RecordSnapshot(ctx, "vid", "2026-03-01", 100, "first", a))
	require.NoError(t, store.RecordSnapshot(ctx, "vid", "2026-03-01", 150, "second", b))

	got := store.Snapshots(ctx, "vid")
	require.Len(t, got, 1)
	assert.Equal(t, int64(150), got[0].TotalViews)
	assert.Equal(t, "second", got[0].Title)
	assert.Equal(t, b, got[0].Playlists)
}

func TestRecordSnapshot_StorageOrder(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	require.NoError(t, store.RecordSnapshot(ctx, "vid", "2026-03-03", 300, "t", nil))
	require.NoError(t, store.RecordSnapshot(ctx, "vid", "2026-03-01", 100, "t", nil))
	require.NoError(t, store.RecordSnapshot(ctx, "vid", "2026-03-02", 200, "t", nil))

	got := store.Snapshots(ctx, "vid")
	require.Len(t, got, 3)
	assert.Equal(t, "2026-03-03", got[0].Date)
	assert.Equal(t, "2026-03-01", got[1].Date)
	assert.Equal(t, "2026-03-02", got[2].Date)
}

func TestRecordSnapshot_NoMonotonicityCheck(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	require.NoError(t, store.RecordSnapshot(ctx, "vid", "2026-03-01", 500, "t", nil))
	require.NoError(t, store.RecordSnapshot(ctx, "vid", "2026-03-02", 400, "t", nil))

	assert.Len(t, store.Snapshots(ctx, "vid"), 2)
}

func TestRecordSnapshot_DedupesPlaylists(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	refs := []PlaylistRef{{ID: "PLa", Title: "A"}, {ID: "PLa", Title: "A again"}, {ID: "PLb", Title: "B"}}
	require.NoError(t, store.RecordSnapshot(ctx, "vid", "2026-03-01", 1, "t", refs))

	got := store.Snapshots(ctx, "vid")
	require.Len(t, got, 1)
	assert.Equal(t, []PlaylistRef{{ID: "PLa", Title: "A again"}, {ID: "PLb", Title: "B"}}, got[0].Playlists)
}

func TestSnapshots_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	require.NoError(t, store.RecordSnapshot(ctx, "vid", "2026-03-01", 1, "t", nil))

	got := store.Snapshots(ctx, "vid")
	got[0].TotalViews = 999

	assert.Equal(t, int64(1), store.Snapshots(ctx, "vid")[0].TotalViews)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	require.NoError(t, store.RecordSnapshot(ctx, "vid1", "2026-03-01", 1, "t", nil))
	require.NoError(t, store.RecordSnapshot(ctx, "vid2", "2026-03-01", 1, "t", nil))

	require.NoError(t, store.Clear(ctx, "vid1"))
	assert.Empty(t, store.Snapshots(ctx, "vid1"))
	assert.Len(t, store.Snapshots(ctx, "vid2"), 1)
	assert.Equal(t, []string{"vid2"}, store.VideoIDs(ctx))

	// clearing an unknown video is a no-op
	assert.NoError(t, store.Clear(ctx, "unknown"))
}

func TestLoad_MalformedJSONIsEmpty(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore()

	require.NoError(t, kv.MemoryStore.Set(ctx, store.Key(), "{not json"))

	m, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
	assert.Empty(t, store.Snapshots(ctx, "vid"))

	// the next write starts from an empty map
	require.NoError(t, store.RecordSnapshot(ctx, "vid", "2026-03-01", 10, "t", nil))
	assert.Len(t, store.Snapshots(ctx, "vid"), 1)
}

func TestReadFailure(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore()

	require.NoError(t, store.RecordSnapshot(ctx, "vid", "2026-03-01", 10, "t", nil))

	kv.failGet = true

	assert.Empty(t, store.Snapshots(ctx, "vid"))
	assert.Empty(t, store.VideoIDs(ctx))

	err := store.RecordSnapshot(ctx, "vid", "2026-03-02", 20, "t", nil)
	assert.ErrorIs(t, err, errBackend)

	// history survived the failed write
	kv.failGet = false
	assert.Len(t, store.Snapshots(ctx, "vid"), 1)
}

func TestWriteFailure(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore()

	kv.failSet = true

	err := store.RecordSnapshot(ctx, "vid", "2026-03-01", 10, "t", nil)
	assert.ErrorIs(t, err, errBackend)
	assert.Empty(t, store.Snapshots(ctx, "vid"))
}

func TestConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	days := []string{"2026-03-01", "2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05", "2026-03-06"}

	var wg sync.WaitGroup
	for i, day := range days {
		wg.Add(1)

		go func(views int64, date string) {
			defer wg.Done()
			assert.NoError(t, store.RecordSnapshot(ctx, "vid", date, views, "t", nil))
		}(int64(i), day)
	}

	wg.Wait()
	assert.Len(t, store.Snapshots(ctx, "vid"), len(days))
}

func TestManager_SharesStorePerAccount(t *testing.T) {
	manager := NewManager(kvstore.NewMemoryStore())

	assert.Same(t, manager.For("a"), manager.For("a"))
	assert.NotSame(t, manager.For("a"), manager.For("b"))
	assert.Equal(t, "youtube_video_snapshots:a", manager.For("a").Key())
}

func TestKeyFor(t *testing.T) {
	assert.Equal(t, DefaultKey, KeyFor(""))
	assert.Equal(t, "youtube_video_snapshots:acc", KeyFor("acc"))
}
