package youtube

import (
	"context"

	"codeberg.org/tubetrack/server/internal/youtube"
	"codeberg.org/tubetrack/server/tubetrack/accounts"
)

type AccountFinder interface {
	FindByID(ctx context.Context, accountID string) (*accounts.Account, error)
}

type ChannelsResponse struct {
	Channels []youtube.Channel `json:"channels"`
}

type PlaylistsResponse struct {
	Playlists []youtube.Playlist `json:"playlists"`
}

type PlaylistVideosResponse struct {
	PlaylistID string   `json:"playlist_id"`
	VideoIDs   []string `json:"video_ids"`
}

type VideoResponse struct {
	Video *youtube.Video `json:"video"`
}
