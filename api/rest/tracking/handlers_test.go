package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"codeberg.org/tubetrack/server/internal/auth"
	"codeberg.org/tubetrack/server/internal/kvstore"
	"codeberg.org/tubetrack/server/internal/snapshots"
	"codeberg.org/tubetrack/server/internal/youtube"
	"codeberg.org/tubetrack/server/tubetrack/accounts"
	"codeberg.org/tubetrack/server/tubetrack/tracked"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const videoID = "dQw4w9WgXcQ"

type fakeTracked struct {
	videos map[string]tracked.Video
}

func (f *fakeTracked) Add(_ context.Context, accountID, id, title string) (*tracked.Video, error) {
	v := tracked.Video{AccountID: accountID, VideoID: id, Title: title, AddedAt: time.Now()}
	f.videos[id] = v
	return &v, nil
}

func (f *fakeTracked) Remove(_ context.Context, _, id string) error {
	if _, ok := f.videos[id]; !ok {
		return tracked.ErrNotTracked
	}

	delete(f.videos, id)
	return nil
}

func (f *fakeTracked) List(_ context.Context, _ string, limit, offset int) ([]tracked.Video, int, error) {
	all := make([]tracked.Video, 0, len(f.videos))
	for _, v := range f.videos {
		all = append(all, v)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].VideoID < all[j].VideoID })

	if offset > len(all) {
		offset = len(all)
	}

	end := min(offset+limit, len(all))
	return all[offset:end], len(all), nil
}

type fakeAccounts struct{}

func (fakeAccounts) FindByID(_ context.Context, id string) (*accounts.Account, error) {
	return &accounts.Account{ID: id}, nil
}

type fakeAPI struct{ youtube.API }

func (fakeAPI) GetVideo(_ context.Context, id string) (*youtube.Video, error) {
	if id != videoID {
		return nil, fmt.Errorf("%w: %s", youtube.ErrVideoNotFound, id)
	}

	return &youtube.Video{ID: id, Title: "Never Gonna Give You Up", TotalViews: 100}, nil
}

type fakeFactory struct{}

func (fakeFactory) ForAccount(context.Context, *accounts.Account) (youtube.API, error) {
	return fakeAPI{}, nil
}

type harness struct {
	router  *gin.Engine
	tracked *fakeTracked
	stores  *snapshots.Manager
	token   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")

	h := &harness{
		tracked: &fakeTracked{videos: map[string]tracked.Video{}},
		stores:  snapshots.NewManager(kvstore.NewMemoryStore()),
	}

	h.router = gin.New()
	RegisterRoutes(h.router.Group("/api/v1"), h.tracked, fakeAccounts{}, fakeFactory{}, h.stores)

	token, err := auth.GenerateJWT("acct-1", "creator@example.com")
	require.NoError(t, err)
	h.token = token

	return h
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body) //nolint:errcheck,gosec // test input
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Content-Type", "application/json")
	h.router.ServeHTTP(w, req)

	return w
}

func TestTrackVideoHandler(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/api/v1/tracking/videos", tracked.AddRequest{VideoID: videoID})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp VideoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Never Gonna Give You Up", resp.Video.Title, "title falls back to youtube")

	w = h.do(http.MethodPost, "/api/v1/tracking/videos", tracked.AddRequest{VideoID: videoID, Title: "Custom"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Custom", h.tracked.videos[videoID].Title)
}

func TestTrackVideoHandler_Errors(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"missing id", map[string]string{}, http.StatusBadRequest, "validation_error"},
		{"malformed id", tracked.AddRequest{VideoID: "nope"}, http.StatusBadRequest, "bad_request"},
		{"unknown video", tracked.AddRequest{VideoID: "aaaaaaaaaaa"}, http.StatusNotFound, "video_not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(http.MethodPost, "/api/v1/tracking/videos", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
		})
	}

	assert.Empty(t, h.tracked.videos)
}

func TestListTrackedHandler_Paginates(t *testing.T) {
	h := newHarness(t)
	for _, id := range []string{"aaaaaaaaaa1", "aaaaaaaaaa2", "aaaaaaaaaa3"} {
		h.tracked.videos[id] = tracked.Video{VideoID: id}
	}

	w := h.do(http.MethodGet, "/api/v1/tracking/videos?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Videos, 2)
	assert.Equal(t, 3, resp.Pagination.Total)
	assert.True(t, resp.Pagination.HasMore)
}

func TestUntrackVideoHandler(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.tracked.videos[videoID] = tracked.Video{VideoID: videoID}
	require.NoError(t, h.stores.For("acct-1").RecordSnapshot(ctx, videoID, "2026-03-01", 10, "t", nil))

	w := h.do(http.MethodDelete, "/api/v1/tracking/videos/"+videoID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, h.stores.For("acct-1").Snapshots(ctx, videoID), 1, "history kept by default")

	w = h.do(http.MethodDelete, "/api/v1/tracking/videos/"+videoID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_tracked")

	h.tracked.videos[videoID] = tracked.Video{VideoID: videoID}
	w = h.do(http.MethodDelete, "/api/v1/tracking/videos/"+videoID+"?clear_history=true", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp RemoveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.HistoryCleared)
	assert.Empty(t, h.stores.For("acct-1").Snapshots(ctx, videoID))
}
