package errors

import (
	"net/http"
	"regexp"
	"strings"

	"codeberg.org/tubetrack/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Use errors.InternalError(), errors.BadRequest(), etc. for critical errors
//     These functions handle both logging and HTTP response automatically
//   - Use logger.ErrorErr() only for non-critical errors where processing continues
//   - Never call both logger.ErrorErr() and errors.InternalError() for the same error
//
// For services/repositories/internal packages:
//   - Return wrapped errors with context using fmt.Errorf("context: %w", err)
//   - Let the caller (handler) decide how to log and respond
//   - The snapshot store and the scheduler are the exceptions: they log and
//     continue, because a failed read or a failed video must not stop a run

// video ids are 11 characters of [A-Za-z0-9_-]
var videoIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// playlist ids are longer and use the same alphabet
var playlistIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{10,64}$`)

// returns a 401 unauthorized error
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}

	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error:   CodeUnauthorized,
		Message: message,
	})
}

// returns a 403 forbidden error
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "permission denied"
	}

	c.JSON(http.StatusForbidden, ErrorResponse{
		Error:   CodeForbidden,
		Message: message,
	})
}

// returns a 404 not found error
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 404 for a video youtube does not know about
func VideoNotFound(c *gin.Context, videoID string) {
	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeVideoNotFound,
		Message: "video not found",
		Details: videoID,
	})
}

// returns a 404 for a video the account does not track
func NotTracked(c *gin.Context, videoID string) {
	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeNotTracked,
		Message: "video is not tracked by this account",
		Details: videoID,
	})
}

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string, err error) {
	if message == "" {
		message = "invalid request"
	}

	response := ErrorResponse{
		Error:   CodeBadRequest,
		Message: message,
	}

	if err != nil {
		response.Details = sanitizeError(err)
	}

	c.JSON(http.StatusBadRequest, response)
}

// returns a 400 bad request error for validation failures
func ValidationError(c *gin.Context, err error) {
	message := "validation failed"
	details := ""

	if err != nil {
		details = sanitizeError(err)

		if strings.Contains(err.Error(), "binding") || strings.Contains(err.Error(), "validation") {
			message = "request validation failed"
		}
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   CodeValidationError,
		Message: message,
		Details: details,
	})
}

// returns a 500 internal server error
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "an error occurred"
	}

	info := classifyError(err)

	// log full error server-side with context
	logger.ErrorErr(err, message,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"user_id", c.GetString("user_id"),
		"category", info.category,
	)

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   CodeServerError,
		Message: message,
		Details: info.sanitized,
	})
}

// returns a 502 when the youtube api call failed
func UpstreamError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "youtube request failed"
	}

	info := classifyError(err)
	code := CodeUpstreamError
	status := http.StatusBadGateway

	if isQuotaError(err) {
		code = CodeQuotaExceeded
		status = http.StatusTooManyRequests
	}

	logger.ErrorErr(err, message,
		"path", c.Request.URL.Path,
		"user_id", c.GetString("user_id"),
		"category", info.category,
	)

	c.JSON(status, ErrorResponse{
		Error:   code,
		Message: message,
		Details: info.sanitized,
	})
}

// returns a 409 conflict error
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "resource conflict"
	}

	c.JSON(http.StatusConflict, ErrorResponse{
		Error:   CodeConflict,
		Message: message,
	})
}

// returns a 409 when a snapshot run is already executing
func RunInProgress(c *gin.Context) {
	c.JSON(http.StatusConflict, ErrorResponse{
		Error:   CodeRunInProgress,
		Message: "a snapshot run is already in progress",
	})
}

// returns a 429 too many requests error
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "too many requests"
	}

	c.JSON(http.StatusTooManyRequests, ErrorResponse{
		Error:   CodeTooManyRequests,
		Message: message,
	})
}

// sanitizes error messages for production
func sanitizeError(err error) string {
	return classifyError(err).sanitized
}

// validates a youtube video id
func IsValidVideoID(id string) bool {
	return videoIDRegex.MatchString(id)
}

// validates a youtube playlist id
func IsValidPlaylistID(id string) bool {
	return playlistIDRegex.MatchString(id)
}

// validates the :videoId path parameter and returns 400 if invalid
func ValidatePathVideoID(c *gin.Context, paramName string) (string, bool) {
	id := c.Param(paramName)

	if id == "" {
		BadRequest(c, "missing "+paramName, nil)
		return "", false
	}

	if !IsValidVideoID(id) {
		BadRequest(c, "invalid video id", nil)
		return "", false
	}

	return id, true
}
