package videos

import (
	ytrest "codeberg.org/tubetrack/server/api/rest/youtube"
	"codeberg.org/tubetrack/server/internal/attribution"
	"codeberg.org/tubetrack/server/internal/auth"
	"codeberg.org/tubetrack/server/internal/snapshots"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	router *gin.RouterGroup,
	stores *snapshots.Manager,
	service *attribution.Service,
	accountFinder ytrest.AccountFinder,
	taker SnapshotTaker,
) {
	router.GET("/impact", auth.AuthMiddleware(), AccountImpactHandler(service))

	videosGroup := router.Group("/videos/:videoId")
	videosGroup.Use(auth.AuthMiddleware())
	{
		videosGroup.GET("/snapshots", ListSnapshotsHandler(stores))
		videosGroup.POST("/snapshots", TakeSnapshotHandler(accountFinder, taker))
		videosGroup.DELETE("/snapshots", ClearSnapshotsHandler(stores))
		videosGroup.GET("/impact", VideoImpactHandler(service))
		videosGroup.GET("/export", ExportHandler(stores))
	}
}
