package health

import (
	"context"
	"net/http"
	"time"

	"codeberg.org/tubetrack/server/internal/logger"
	"github.com/gin-gonic/gin"
)

const (
	serviceName = "tubetrack"
	version     = "1.0.0"
)

// returns the server health status
func Handler(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Status:  "healthy",
		Service: serviceName,
		Version: version,
	})
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}

// ReadyHandler godoc
// @Summary Readiness check
// @Description Pings every backing store and reports 503 if any is unreachable
// @Tags health
// @Produce json
// @Success 200 {object} ReadyResponse
// @Failure 503 {object} ReadyResponse
// @Router /ready [get]
func ReadyHandler(deps map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		resp := ReadyResponse{Status: "ready", Checks: make(map[string]string, len(deps))}
		status := http.StatusOK

		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				logger.Warn("readiness check failed", "dependency", name, "error", err)
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}

			resp.Checks[name] = "ok"
		}

		c.JSON(status, resp)
	}
}
