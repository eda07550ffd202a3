package youtube

import (
	"codeberg.org/tubetrack/server/internal/auth"
	"codeberg.org/tubetrack/server/internal/youtube"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, accountFinder AccountFinder, factory youtube.Factory) {
	ytGroup := router.Group("/youtube")
	ytGroup.Use(auth.AuthMiddleware())
	{
		ytGroup.GET("/channels", ListChannelsHandler(accountFinder, factory))
		ytGroup.GET("/playlists", ListPlaylistsHandler(accountFinder, factory))
		ytGroup.GET("/playlists/:id/videos", ListPlaylistVideosHandler(accountFinder, factory))
		ytGroup.GET("/videos/:videoId", GetVideoHandler(accountFinder, factory))
	}
}
