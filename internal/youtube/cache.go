package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"codeberg.org/tubetrack/server/internal/kvstore"
	"codeberg.org/tubetrack/server/internal/logger"
)

const cacheKeyPrefix = "youtube_cache"

type refreshKey struct{}

// marks ctx so that cached listings are fetched again
func WithRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, refreshKey{}, true)
}

// reports whether ctx was marked with WithRefresh
func IsRefresh(ctx context.Context) bool {
	refresh, _ := ctx.Value(refreshKey{}).(bool)
	return refresh
}

type cacheEntry struct {
	ExpiresAt time.Time       `json:"expires_at"`
	Data      json.RawMessage `json:"data"`
}

// CachedClient keeps channel and playlist listings of one account in the
// KV store for ttl. Video statistics always go to the API.
type CachedClient struct {
	api       API
	kv        kvstore.Store
	accountID string
	ttl       time.Duration
	now       func() time.Time
}

var _ API = (*CachedClient)(nil)

func NewCachedClient(api API, kv kvstore.Store, accountID string, ttl time.Duration) *CachedClient {
	return &CachedClient{
		api:       api,
		kv:        kv,
		accountID: accountID,
		ttl:       ttl,
		now:       time.Now,
	}
}

func (c *CachedClient) ListChannels(ctx context.Context) ([]Channel, error) {
	return cached(ctx, c, "channels", c.api.ListChannels)
}

func (c *CachedClient) ListPlaylists(ctx context.Context) ([]Playlist, error) {
	return cached(ctx, c, "playlists", c.api.ListPlaylists)
}

func (c *CachedClient) ListPlaylistVideoIDs(ctx context.Context, playlistID string) ([]string, error) {
	return cached(ctx, c, "playlist_items:"+playlistID, func(ctx context.Context) ([]string, error) {
		return c.api.ListPlaylistVideoIDs(ctx, playlistID)
	})
}

func (c *CachedClient) GetVideo(ctx context.Context, videoID string) (*Video, error) {
	return c.api.GetVideo(ctx, videoID)
}

func (c *CachedClient) GetVideos(ctx context.Context, videoIDs []string) (map[string]Video, error) {
	return c.api.GetVideos(ctx, videoIDs)
}

// drops every cached listing of the account
func (c *CachedClient) Invalidate(ctx context.Context, playlistIDs ...string) {
	keys := []string{c.key("channels"), c.key("playlists")}
	for _, id := range playlistIDs {
		keys = append(keys, c.key("playlist_items:"+id))
	}

	for _, key := range keys {
		if err := c.kv.Remove(ctx, key); err != nil {
			logger.Warn("failed to invalidate youtube cache", "key", key, "error", err)
		}
	}
}

func (c *CachedClient) key(name string) string {
	return fmt.Sprintf("%s:%s:%s", cacheKeyPrefix, c.accountID, name)
}

// serves name from the cache when fresh, otherwise calls fetch and stores
// the result. cache failures only cost an API call.
func cached[T any](ctx context.Context, c *CachedClient, name string, fetch func(context.Context) (T, error)) (T, error) {
	key := c.key(name)

	if !IsRefresh(ctx) {
		if value, ok := lookup[T](ctx, c, key); ok {
			return value, nil
		}
	}

	value, err := fetch(ctx)
	if err != nil {
		return value, err
	}

	c.store(ctx, key, value)
	return value, nil
}

func lookup[T any](ctx context.Context, c *CachedClient, key string) (T, bool) {
	var value T

	raw, err := c.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			logger.Warn("youtube cache read failed", "key", key, "error", err)
		}

		return value, false
	}

	var entry cacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		logger.Warn("discarding malformed youtube cache entry", "key", key, "error", err)
		return value, false
	}

	if !c.now().Before(entry.ExpiresAt) {
		return value, false
	}

	if err := json.Unmarshal(entry.Data, &value); err != nil {
		logger.Warn("discarding malformed youtube cache entry", "key", key, "error", err)
		return value, false
	}

	return value, true
}

func (c *CachedClient) store(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.Warn("failed to encode youtube cache entry", "key", key, "error", err)
		return
	}

	entry, err := json.Marshal(cacheEntry{
		ExpiresAt: c.now().Add(c.ttl),
		Data:      data,
	})
	if err != nil {
		logger.Warn("failed to encode youtube cache entry", "key", key, "error", err)
		return
	}

	if err := c.kv.Set(ctx, key, string(entry)); err != nil {
		logger.Warn("youtube cache write failed", "key", key, "error", err)
	}
}
