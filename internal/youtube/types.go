package youtube

import (
	"context"
	"errors"
)

var (
	ErrVideoNotFound = errors.New("video not found")
	ErrQuotaExceeded = errors.New("youtube quota exceeded")
)

// videos.list accepts at most 50 ids per call
const maxBatchSize = 50

// API is the subset of the YouTube Data API the tracker needs.
type API interface {
	ListChannels(ctx context.Context) ([]Channel, error)
	ListPlaylists(ctx context.Context) ([]Playlist, error)
	ListPlaylistVideoIDs(ctx context.Context, playlistID string) ([]string, error)
	GetVideo(ctx context.Context, videoID string) (*Video, error)
	GetVideos(ctx context.Context, videoIDs []string) (map[string]Video, error)
}

type Channel struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	VideoCount  int64  `json:"video_count"`
	ViewCount   int64  `json:"view_count"`
	Subscribers int64  `json:"subscribers"`
}

type Playlist struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ItemCount int64  `json:"item_count"`
}

// current state of a video
type Video struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	TotalViews int64  `json:"total_views"`
}
