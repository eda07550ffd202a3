package tracking

import (
	stderrors "errors"
	"net/http"

	"codeberg.org/tubetrack/server/api/rest/pagination"
	ytrest "codeberg.org/tubetrack/server/api/rest/youtube"
	"codeberg.org/tubetrack/server/internal/auth"
	"codeberg.org/tubetrack/server/internal/errors"
	"codeberg.org/tubetrack/server/internal/logger"
	"codeberg.org/tubetrack/server/internal/snapshots"
	"codeberg.org/tubetrack/server/internal/youtube"
	"codeberg.org/tubetrack/server/tubetrack/tracked"
	"github.com/gin-gonic/gin"
)

// ListTrackedHandler godoc
// @Summary List tracked videos
// @Description List the videos whose daily snapshots the account collects
// @Tags tracking
// @Produce json
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} ListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/tracking/videos [get]
// @Security BearerAuth
func ListTrackedHandler(trackedRepo TrackedRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		params := pagination.FromQuery(c, defaultLimit, maxLimit)

		videos, total, err := trackedRepo.List(c.Request.Context(), accountID, params.Limit, params.Offset)
		if err != nil {
			errors.InternalError(c, "failed to list tracked videos", err)
			return
		}

		c.JSON(http.StatusOK, ListResponse{
			Videos:     videos,
			Pagination: pagination.NewMeta(params, total),
		})
	}
}

// TrackVideoHandler godoc
// @Summary Track a video
// @Description Start collecting daily snapshots for a video. The video is looked up on YouTube first
// @Tags tracking
// @Accept json
// @Produce json
// @Param request body tracked.AddRequest true "Video to track"
// @Success 201 {object} VideoResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/tracking/videos [post]
// @Security BearerAuth
func TrackVideoHandler(trackedRepo TrackedRepository, accountFinder ytrest.AccountFinder, factory youtube.Factory) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tracked.AddRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		if !errors.IsValidVideoID(req.VideoID) {
			errors.BadRequest(c, "invalid video id", nil)
			return
		}

		ctx, api, ok := ytrest.ClientFor(c, accountFinder, factory)
		if !ok {
			return
		}

		video, err := api.GetVideo(ctx, req.VideoID)
		if err != nil {
			if stderrors.Is(err, youtube.ErrVideoNotFound) {
				errors.VideoNotFound(c, req.VideoID)
				return
			}

			errors.UpstreamError(c, "failed to look up video", err)
			return
		}

		title := req.Title
		if title == "" {
			title = video.Title
		}

		accountID, _ := auth.GetUserID(c) //nolint:errcheck // checked by ClientFor

		added, err := trackedRepo.Add(ctx, accountID, req.VideoID, title)
		if err != nil {
			errors.InternalError(c, "failed to track video", err)
			return
		}

		logger.Info("video tracked", "account_id", accountID, "video_id", req.VideoID)

		c.JSON(http.StatusCreated, VideoResponse{Video: added})
	}
}

// UntrackVideoHandler godoc
// @Summary Stop tracking a video
// @Description Stop collecting snapshots. With clear_history=true the stored snapshots are deleted too
// @Tags tracking
// @Produce json
// @Param videoId path string true "Video ID"
// @Param clear_history query bool false "Also delete the snapshot history"
// @Success 200 {object} RemoveResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/tracking/videos/{videoId} [delete]
// @Security BearerAuth
func UntrackVideoHandler(trackedRepo TrackedRepository, stores *snapshots.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		videoID, ok := errors.ValidatePathVideoID(c, "videoId")
		if !ok {
			return
		}

		ctx := c.Request.Context()

		if err := trackedRepo.Remove(ctx, accountID, videoID); err != nil {
			if stderrors.Is(err, tracked.ErrNotTracked) {
				errors.NotTracked(c, videoID)
				return
			}

			errors.InternalError(c, "failed to untrack video", err)
			return
		}

		resp := RemoveResponse{VideoID: videoID}

		if c.Query("clear_history") == "true" {
			if err := stores.For(accountID).Clear(ctx, videoID); err != nil {
				errors.InternalError(c, "video untracked but history could not be cleared", err)
				return
			}

			resp.HistoryCleared = true
		}

		c.JSON(http.StatusOK, resp)
	}
}
