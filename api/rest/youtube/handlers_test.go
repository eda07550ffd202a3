package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/tubetrack/server/internal/auth"
	"codeberg.org/tubetrack/server/internal/youtube"
	"codeberg.org/tubetrack/server/tubetrack/accounts"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAccounts struct{}

func (fakeAccounts) FindByID(_ context.Context, accountID string) (*accounts.Account, error) {
	if accountID != "acct-1" {
		return nil, accounts.ErrAccountNotFound
	}

	return &accounts.Account{ID: accountID}, nil
}

type fakeAPI struct {
	refreshed bool
	listErr   error
}

func (f *fakeAPI) ListChannels(ctx context.Context) ([]youtube.Channel, error) {
	return []youtube.Channel{{ID: "UC1", Title: "Main"}}, nil
}

func (f *fakeAPI) ListPlaylists(ctx context.Context) ([]youtube.Playlist, error) {
	f.refreshed = youtube.IsRefresh(ctx)
	if f.listErr != nil {
		return nil, f.listErr
	}

	return []youtube.Playlist{{ID: "PLa", Title: "Tutorials", ItemCount: 3}}, nil
}

func (f *fakeAPI) ListPlaylistVideoIDs(_ context.Context, playlistID string) ([]string, error) {
	return []string{"dQw4w9WgXcQ"}, nil
}

func (f *fakeAPI) GetVideo(_ context.Context, videoID string) (*youtube.Video, error) {
	if videoID == "dQw4w9WgXcQ" {
		return &youtube.Video{ID: videoID, Title: "Video", TotalViews: 42}, nil
	}

	return nil, fmt.Errorf("%w: %s", youtube.ErrVideoNotFound, videoID)
}

func (f *fakeAPI) GetVideos(_ context.Context, videoIDs []string) (map[string]youtube.Video, error) {
	return map[string]youtube.Video{}, nil
}

type fakeFactory struct{ api *fakeAPI }

func (f fakeFactory) ForAccount(context.Context, *accounts.Account) (youtube.API, error) {
	return f.api, nil
}

func do(t *testing.T, api *fakeAPI, accountID, path string) *httptest.ResponseRecorder {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), fakeAccounts{}, fakeFactory{api: api})

	token, err := auth.GenerateJWT(accountID, "creator@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	return w
}

func TestListPlaylistsHandler(t *testing.T) {
	api := &fakeAPI{}
	w := do(t, api, "acct-1", "/api/v1/youtube/playlists")

	require.Equal(t, http.StatusOK, w.Code)

	var resp PlaylistsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Playlists, 1)
	assert.Equal(t, "Tutorials", resp.Playlists[0].Title)
	assert.False(t, api.refreshed)
}

func TestListPlaylistsHandler_Refresh(t *testing.T) {
	api := &fakeAPI{}
	w := do(t, api, "acct-1", "/api/v1/youtube/playlists?refresh=true")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, api.refreshed)
}

func TestListPlaylistsHandler_QuotaExceeded(t *testing.T) {
	api := &fakeAPI{listErr: fmt.Errorf("%w: %w", youtube.ErrQuotaExceeded, &googleapi.Error{
		Code:   http.StatusForbidden,
		Errors: []googleapi.ErrorItem{{Reason: "quotaExceeded"}},
	})}

	w := do(t, api, "acct-1", "/api/v1/youtube/playlists")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "quota_exceeded")
}

func TestListChannelsHandler_UnknownAccount(t *testing.T) {
	w := do(t, &fakeAPI{}, "acct-gone", "/api/v1/youtube/channels")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListPlaylistVideosHandler(t *testing.T) {
	w := do(t, &fakeAPI{}, "acct-1", "/api/v1/youtube/playlists/PLa1234567/videos")
	require.Equal(t, http.StatusOK, w.Code)

	var resp PlaylistVideosResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"dQw4w9WgXcQ"}, resp.VideoIDs)

	w = do(t, &fakeAPI{}, "acct-1", "/api/v1/youtube/playlists/bad!id/videos")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVideoHandler(t *testing.T) {
	w := do(t, &fakeAPI{}, "acct-1", "/api/v1/youtube/videos/dQw4w9WgXcQ")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Video"`)

	w = do(t, &fakeAPI{}, "acct-1", "/api/v1/youtube/videos/aaaaaaaaaaa")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "video_not_found")

	w = do(t, &fakeAPI{}, "acct-1", "/api/v1/youtube/videos/short")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
