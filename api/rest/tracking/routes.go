package tracking

import (
	ytrest "codeberg.org/tubetrack/server/api/rest/youtube"
	"codeberg.org/tubetrack/server/internal/auth"
	"codeberg.org/tubetrack/server/internal/snapshots"
	"codeberg.org/tubetrack/server/internal/youtube"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	router *gin.RouterGroup,
	trackedRepo TrackedRepository,
	accountFinder ytrest.AccountFinder,
	factory youtube.Factory,
	stores *snapshots.Manager,
) {
	trackingGroup := router.Group("/tracking")
	trackingGroup.Use(auth.AuthMiddleware())
	{
		trackingGroup.GET("/videos", ListTrackedHandler(trackedRepo))
		trackingGroup.POST("/videos", TrackVideoHandler(trackedRepo, accountFinder, factory))
		trackingGroup.DELETE("/videos/:videoId", UntrackVideoHandler(trackedRepo, stores))
	}
}
