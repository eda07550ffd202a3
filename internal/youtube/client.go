package youtube

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync/atomic"

	"codeberg.org/tubetrack/server/internal/logger"
	"codeberg.org/tubetrack/server/internal/retry"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// Client calls the YouTube Data API v3 on behalf of one account.
type Client struct {
	service     *yt.Service
	retryConfig retry.Config

	// estimated quota units spent by this client
	quotaUsed atomic.Int64
}

var _ API = (*Client)(nil)

// creates a client authorized by ts
func NewClient(ctx context.Context, ts oauth2.TokenSource) (*Client, error) {
	return NewClientWithOptions(ctx, option.WithTokenSource(ts))
}

// creates a client from raw api options (endpoint overrides in tests)
func NewClientWithOptions(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	service, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &Client{
		service:     service,
		retryConfig: retry.DefaultConfig(),
	}, nil
}

// overrides the backoff settings
func (c *Client) SetRetryConfig(cfg retry.Config) {
	c.retryConfig = cfg
}

// estimated quota units spent so far
func (c *Client) QuotaUsed() int64 {
	return c.quotaUsed.Load()
}

// lists the channels owned by the authorized user
func (c *Client) ListChannels(ctx context.Context) ([]Channel, error) {
	var channels []Channel

	err := c.do(ctx, func(ctx context.Context) error {
		resp, err := c.service.Channels.List([]string{"snippet", "statistics"}).
			Mine(true).
			MaxResults(maxBatchSize).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}

		c.trackQuota(1)
		channels = channels[:0]

		for _, item := range resp.Items {
			channel := Channel{ID: item.Id}

			if item.Snippet != nil {
				channel.Title = item.Snippet.Title

				if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.Default != nil {
					channel.Thumbnail = item.Snippet.Thumbnails.Default.Url
				}
			}

			if item.Statistics != nil {
				channel.VideoCount = clampInt64(item.Statistics.VideoCount)
				channel.ViewCount = clampInt64(item.Statistics.ViewCount)
				channel.Subscribers = clampInt64(item.Statistics.SubscriberCount)
			}

			channels = append(channels, channel)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}

	return channels, nil
}

// lists every playlist owned by the authorized user
func (c *Client) ListPlaylists(ctx context.Context) ([]Playlist, error) {
	var playlists []Playlist
	pageToken := ""

	for {
		err := c.do(ctx, func(ctx context.Context) error {
			resp, err := c.service.Playlists.List([]string{"snippet", "contentDetails"}).
				Mine(true).
				MaxResults(maxBatchSize).
				PageToken(pageToken).
				Context(ctx).
				Do()
			if err != nil {
				return err
			}

			c.trackQuota(1)

			for _, item := range resp.Items {
				playlist := Playlist{ID: item.Id}

				if item.Snippet != nil {
					playlist.Title = item.Snippet.Title
				}

				if item.ContentDetails != nil {
					playlist.ItemCount = item.ContentDetails.ItemCount
				}

				playlists = append(playlists, playlist)
			}

			pageToken = resp.NextPageToken
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("list playlists: %w", err)
		}

		if pageToken == "" {
			break
		}
	}

	return playlists, nil
}

// lists the ids of the videos in a playlist, in playlist order
func (c *Client) ListPlaylistVideoIDs(ctx context.Context, playlistID string) ([]string, error) {
	ids := []string{}
	pageToken := ""

	for {
		err := c.do(ctx, func(ctx context.Context) error {
			resp, err := c.service.PlaylistItems.List([]string{"contentDetails"}).
				PlaylistId(playlistID).
				MaxResults(maxBatchSize).
				PageToken(pageToken).
				Context(ctx).
				Do()
			if err != nil {
				return err
			}

			c.trackQuota(1)

			for _, item := range resp.Items {
				if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
					ids = append(ids, item.ContentDetails.VideoId)
				}
			}

			pageToken = resp.NextPageToken
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("list playlist %s: %w", playlistID, err)
		}

		if pageToken == "" {
			break
		}
	}

	return ids, nil
}

// returns the current view count and title of a video
func (c *Client) GetVideo(ctx context.Context, videoID string) (*Video, error) {
	videos, err := c.GetVideos(ctx, []string{videoID})
	if err != nil {
		return nil, err
	}

	video, ok := videos[videoID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, videoID)
	}

	return &video, nil
}

// fetches several videos, 50 per call. unknown ids are absent from the result
func (c *Client) GetVideos(ctx context.Context, videoIDs []string) (map[string]Video, error) {
	videos := make(map[string]Video, len(videoIDs))

	for start := 0; start < len(videoIDs); start += maxBatchSize {
		end := min(start+maxBatchSize, len(videoIDs))
		batch := videoIDs[start:end]

		err := c.do(ctx, func(ctx context.Context) error {
			resp, err := c.service.Videos.List([]string{"snippet", "statistics"}).
				Id(batch...).
				Context(ctx).
				Do()
			if err != nil {
				return err
			}

			c.trackQuota(1)

			for _, item := range resp.Items {
				video := Video{ID: item.Id}

				if item.Snippet != nil {
					video.Title = item.Snippet.Title
				}

				if item.Statistics != nil {
					video.TotalViews = clampInt64(item.Statistics.ViewCount)
				}

				videos[item.Id] = video
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("get videos: %w", err)
		}
	}

	return videos, nil
}

func (c *Client) do(ctx context.Context, fn func(context.Context) error) error {
	err := retry.Do(ctx, c.retryConfig, isRetryable, fn)
	if err != nil && isQuotaExhausted(err) {
		return fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
	}

	return err
}

func (c *Client) trackQuota(units int64) {
	used := c.quotaUsed.Add(units)
	logger.Debug("youtube quota usage", "units", units, "used", used)
}

// not-found, auth and quota failures are permanent; server errors and
// short-term rate limiting are retried
func isRetryable(err error) bool {
	if !retry.IsRetryable(err) {
		return false
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return true
	}

	if isQuotaExhausted(err) {
		return false
	}

	for _, item := range apiErr.Errors {
		if item.Reason == "rateLimitExceeded" || item.Reason == "userRateLimitExceeded" {
			return true
		}
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return true
	case apiErr.Code >= 500:
		return true
	}

	return false
}

func isQuotaExhausted(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}

	for _, item := range apiErr.Errors {
		if item.Reason == "quotaExceeded" || item.Reason == "dailyLimitExceeded" {
			return true
		}
	}

	return false
}

func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(v)
}
