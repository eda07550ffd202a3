package snapshots

import (
	"context"

	"codeberg.org/tubetrack/server/internal/auth"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, baseCtx context.Context, runner RunTrigger, status StatusProvider) {
	snapshotsGroup := router.Group("/snapshots")
	snapshotsGroup.Use(auth.AuthMiddleware())
	{
		snapshotsGroup.POST("/run", RunHandler(baseCtx, runner))
		snapshotsGroup.GET("/schedule", ScheduleHandler(status))
	}
}
