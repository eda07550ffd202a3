package snapshots

import (
	"context"
	stderrors "errors"
	"net/http"

	"codeberg.org/tubetrack/server/internal/auth"
	"codeberg.org/tubetrack/server/internal/errors"
	"codeberg.org/tubetrack/server/internal/scheduler"
	"github.com/gin-gonic/gin"
)

// RunHandler godoc
// @Summary Run a snapshot pass now
// @Description Snapshot every tracked video of the account outside the daily schedule. Runs in the background unless wait=true
// @Tags snapshots
// @Produce json
// @Param wait query bool false "Block until the run finishes and return its report"
// @Success 200 {object} RunResponse
// @Success 202 {object} RunAcceptedResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/snapshots/run [post]
// @Security BearerAuth
func RunHandler(baseCtx context.Context, runner RunTrigger) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		if c.Query("wait") == "true" {
			report, err := runner.RunAccount(c.Request.Context(), scheduler.TriggerManual, accountID)
			if err != nil {
				if stderrors.Is(err, scheduler.ErrRunInProgress) {
					errors.RunInProgress(c)
					return
				}

				errors.InternalError(c, "snapshot run failed", err)
				return
			}

			c.JSON(http.StatusOK, RunResponse{Report: report})
			return
		}

		// detached from the request, cancelled on server shutdown
		if err := runner.StartAccount(baseCtx, scheduler.TriggerManual, accountID); err != nil {
			if stderrors.Is(err, scheduler.ErrRunInProgress) {
				errors.RunInProgress(c)
				return
			}

			errors.InternalError(c, "failed to start snapshot run", err)
			return
		}

		c.JSON(http.StatusAccepted, RunAcceptedResponse{Message: "snapshot run started"})
	}
}

// ScheduleHandler godoc
// @Summary Snapshot schedule
// @Description Next scheduled run, whether a run is executing and the caller's part of the last run
// @Tags snapshots
// @Produce json
// @Success 200 {object} ScheduleResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/snapshots/schedule [get]
// @Security BearerAuth
func ScheduleHandler(status StatusProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		s := status.Status()
		s.LastRun = ownFailures(s.LastRun, accountID)

		c.JSON(http.StatusOK, ScheduleResponse{Schedule: s})
	}
}

// copies report keeping only the failures of accountID
func ownFailures(report *scheduler.RunReport, accountID string) *scheduler.RunReport {
	if report == nil {
		return nil
	}

	filtered := *report
	filtered.Failures = make([]scheduler.Failure, 0, len(report.Failures))

	for _, f := range report.Failures {
		if f.AccountID == accountID {
			filtered.Failures = append(filtered.Failures, f)
		}
	}

	return &filtered
}
