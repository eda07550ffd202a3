package videos

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	ytrest "codeberg.org/tubetrack/server/api/rest/youtube"
	"codeberg.org/tubetrack/server/internal/attribution"
	"codeberg.org/tubetrack/server/internal/auth"
	"codeberg.org/tubetrack/server/internal/errors"
	"codeberg.org/tubetrack/server/internal/export"
	"codeberg.org/tubetrack/server/internal/logger"
	"codeberg.org/tubetrack/server/internal/snapshots"
	"codeberg.org/tubetrack/server/internal/youtube"
	"codeberg.org/tubetrack/server/tubetrack/accounts"
	"github.com/gin-gonic/gin"
)

// ListSnapshotsHandler godoc
// @Summary List snapshots
// @Description Snapshot history of a video in storage order. An empty list is returned when nothing was recorded
// @Tags videos
// @Produce json
// @Param videoId path string true "Video ID"
// @Success 200 {object} SnapshotsResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/videos/{videoId}/snapshots [get]
// @Security BearerAuth
func ListSnapshotsHandler(stores *snapshots.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, videoID, ok := accountAndVideo(c)
		if !ok {
			return
		}

		history := stores.For(accountID).Snapshots(c.Request.Context(), videoID)

		c.JSON(http.StatusOK, SnapshotsResponse{
			VideoID:   videoID,
			Count:     len(history),
			Snapshots: history,
		})
	}
}

// TakeSnapshotHandler godoc
// @Summary Take a snapshot now
// @Description Fetch the current views and playlists of a video and record today's snapshot, replacing any earlier one for today
// @Tags videos
// @Produce json
// @Param videoId path string true "Video ID"
// @Success 201 {object} SnapshotResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/videos/{videoId}/snapshots [post]
// @Security BearerAuth
func TakeSnapshotHandler(accountFinder ytrest.AccountFinder, taker SnapshotTaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, videoID, ok := accountAndVideo(c)
		if !ok {
			return
		}

		ctx := c.Request.Context()

		account, err := accountFinder.FindByID(ctx, accountID)
		if err != nil {
			if stderrors.Is(err, accounts.ErrAccountNotFound) {
				errors.Unauthorized(c, "account no longer exists")
				return
			}

			errors.InternalError(c, "failed to load account", err)
			return
		}

		snapshot, err := taker.SnapshotVideo(ctx, account, videoID)
		if err != nil {
			if stderrors.Is(err, youtube.ErrVideoNotFound) {
				errors.VideoNotFound(c, videoID)
				return
			}

			errors.UpstreamError(c, "failed to take snapshot", err)
			return
		}

		logger.Info("manual snapshot recorded",
			"account_id", accountID,
			"video_id", videoID,
			"date", snapshot.Date,
			"total_views", snapshot.TotalViews,
		)

		c.JSON(http.StatusCreated, SnapshotResponse{Snapshot: snapshot})
	}
}

// ClearSnapshotsHandler godoc
// @Summary Clear snapshots
// @Description Delete the snapshot history of a video. Clearing a video without history succeeds
// @Tags videos
// @Produce json
// @Param videoId path string true "Video ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/videos/{videoId}/snapshots [delete]
// @Security BearerAuth
func ClearSnapshotsHandler(stores *snapshots.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, videoID, ok := accountAndVideo(c)
		if !ok {
			return
		}

		if err := stores.For(accountID).Clear(c.Request.Context(), videoID); err != nil {
			errors.InternalError(c, "failed to clear snapshots", err)
			return
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "snapshot history cleared"})
	}
}

// VideoImpactHandler godoc
// @Summary Playlist impact of a video
// @Description Estimate how much of a video's view growth each playlist contributed. Status is insufficient_data with fewer than two snapshots
// @Tags videos
// @Produce json
// @Param videoId path string true "Video ID"
// @Success 200 {object} ImpactResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/videos/{videoId}/impact [get]
// @Security BearerAuth
func VideoImpactHandler(service *attribution.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, videoID, ok := accountAndVideo(c)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, ImpactResponse{
			Result: service.VideoImpact(c.Request.Context(), accountID, videoID),
		})
	}
}

// ExportHandler godoc
// @Summary Export a video report
// @Description Download the impact estimate and snapshot history of a video
// @Tags videos
// @Produce text/csv
// @Produce json
// @Produce application/yaml
// @Produce text/markdown
// @Param videoId path string true "Video ID"
// @Param format query string false "Export format" Enums(csv, json, yaml, markdown)
// @Success 200 {file} file
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/videos/{videoId}/export [get]
// @Security BearerAuth
func ExportHandler(stores *snapshots.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, videoID, ok := accountAndVideo(c)
		if !ok {
			return
		}

		format, err := export.ParseFormat(c.Query("format"))
		if err != nil {
			errors.BadRequest(c, "unsupported export format", err)
			return
		}

		history := stores.For(accountID).Snapshots(c.Request.Context(), videoID)
		report := export.NewReport(videoID, history, time.Now())

		var buf bytes.Buffer
		if err := export.Write(&buf, format, report); err != nil {
			errors.InternalError(c, "failed to render export", err)
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(format)))
		c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
	}
}

// AccountImpactHandler godoc
// @Summary Playlist impact of all tracked videos
// @Description Estimate every tracked video of the account. With format=markdown a rendered report is returned
// @Tags videos
// @Produce json
// @Produce text/markdown
// @Param format query string false "json (default) or markdown"
// @Success 200 {object} AccountImpactResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/impact [get]
// @Security BearerAuth
func AccountImpactHandler(service *attribution.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		results, err := service.AccountImpact(c.Request.Context(), accountID)
		if err != nil {
			errors.InternalError(c, "failed to estimate impact", err)
			return
		}

		if format := c.Query("format"); format == "markdown" || format == "md" {
			var buf bytes.Buffer
			if err := export.MarkdownSummary(&buf, "Playlist impact", results); err != nil {
				errors.InternalError(c, "failed to render report", err)
				return
			}

			c.Data(http.StatusOK, export.FormatMarkdown.ContentType(), buf.Bytes())
			return
		}

		c.JSON(http.StatusOK, AccountImpactResponse{Videos: results})
	}
}

func accountAndVideo(c *gin.Context) (string, string, bool) {
	accountID, exists := auth.GetUserID(c)
	if !exists {
		errors.Unauthorized(c, "")
		return "", "", false
	}

	videoID, ok := errors.ValidatePathVideoID(c, "videoId")
	if !ok {
		return "", "", false
	}

	return accountID, videoID, true
}
