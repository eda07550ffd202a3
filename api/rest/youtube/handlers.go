package youtube

import (
	"context"
	stderrors "errors"
	"net/http"

	"codeberg.org/tubetrack/server/internal/auth"
	"codeberg.org/tubetrack/server/internal/errors"
	"codeberg.org/tubetrack/server/internal/youtube"
	"codeberg.org/tubetrack/server/tubetrack/accounts"
	"github.com/gin-gonic/gin"
)

// ListChannelsHandler godoc
// @Summary List channels
// @Description List the YouTube channels owned by the authenticated account
// @Tags youtube
// @Produce json
// @Param refresh query bool false "Bypass the listing cache"
// @Success 200 {object} ChannelsResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/youtube/channels [get]
// @Security BearerAuth
func ListChannelsHandler(accountFinder AccountFinder, factory youtube.Factory) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, api, ok := ClientFor(c, accountFinder, factory)
		if !ok {
			return
		}

		channels, err := api.ListChannels(ctx)
		if err != nil {
			errors.UpstreamError(c, "failed to list channels", err)
			return
		}

		c.JSON(http.StatusOK, ChannelsResponse{Channels: channels})
	}
}

// ListPlaylistsHandler godoc
// @Summary List playlists
// @Description List every playlist of the authenticated account's channel
// @Tags youtube
// @Produce json
// @Param refresh query bool false "Bypass the listing cache"
// @Success 200 {object} PlaylistsResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/youtube/playlists [get]
// @Security BearerAuth
func ListPlaylistsHandler(accountFinder AccountFinder, factory youtube.Factory) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, api, ok := ClientFor(c, accountFinder, factory)
		if !ok {
			return
		}

		playlists, err := api.ListPlaylists(ctx)
		if err != nil {
			errors.UpstreamError(c, "failed to list playlists", err)
			return
		}

		c.JSON(http.StatusOK, PlaylistsResponse{Playlists: playlists})
	}
}

// ListPlaylistVideosHandler godoc
// @Summary List playlist videos
// @Description List the video ids contained in one playlist
// @Tags youtube
// @Produce json
// @Param id path string true "Playlist ID"
// @Param refresh query bool false "Bypass the listing cache"
// @Success 200 {object} PlaylistVideosResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/youtube/playlists/{id}/videos [get]
// @Security BearerAuth
func ListPlaylistVideosHandler(accountFinder AccountFinder, factory youtube.Factory) gin.HandlerFunc {
	return func(c *gin.Context) {
		playlistID := c.Param("id")
		if !errors.IsValidPlaylistID(playlistID) {
			errors.BadRequest(c, "invalid playlist id", nil)
			return
		}

		ctx, api, ok := ClientFor(c, accountFinder, factory)
		if !ok {
			return
		}

		videoIDs, err := api.ListPlaylistVideoIDs(ctx, playlistID)
		if err != nil {
			errors.UpstreamError(c, "failed to list playlist videos", err)
			return
		}

		c.JSON(http.StatusOK, PlaylistVideosResponse{PlaylistID: playlistID, VideoIDs: videoIDs})
	}
}

// GetVideoHandler godoc
// @Summary Get video
// @Description Fetch the current title and view count of a video
// @Tags youtube
// @Produce json
// @Param videoId path string true "Video ID"
// @Success 200 {object} VideoResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/youtube/videos/{videoId} [get]
// @Security BearerAuth
func GetVideoHandler(accountFinder AccountFinder, factory youtube.Factory) gin.HandlerFunc {
	return func(c *gin.Context) {
		videoID, ok := errors.ValidatePathVideoID(c, "videoId")
		if !ok {
			return
		}

		ctx, api, ok := ClientFor(c, accountFinder, factory)
		if !ok {
			return
		}

		video, err := api.GetVideo(ctx, videoID)
		if err != nil {
			if stderrors.Is(err, youtube.ErrVideoNotFound) {
				errors.VideoNotFound(c, videoID)
				return
			}

			errors.UpstreamError(c, "failed to fetch video", err)
			return
		}

		c.JSON(http.StatusOK, VideoResponse{Video: video})
	}
}

// ClientFor resolves the authenticated account and its YouTube client,
// honouring ?refresh=true. On failure the error response has already been
// written.
func ClientFor(c *gin.Context, accountFinder AccountFinder, factory youtube.Factory) (context.Context, youtube.API, bool) {
	accountID, exists := auth.GetUserID(c)
	if !exists {
		errors.Unauthorized(c, "")
		return nil, nil, false
	}

	ctx := c.Request.Context()
	if c.Query("refresh") == "true" {
		ctx = youtube.WithRefresh(ctx)
	}

	account, err := accountFinder.FindByID(ctx, accountID)
	if err != nil {
		if stderrors.Is(err, accounts.ErrAccountNotFound) {
			errors.Unauthorized(c, "account no longer exists")
			return nil, nil, false
		}

		errors.InternalError(c, "failed to load account", err)
		return nil, nil, false
	}

	api, err := factory.ForAccount(ctx, account)
	if err != nil {
		errors.InternalError(c, "failed to create youtube client", err)
		return nil, nil, false
	}

	return ctx, api, true
}
