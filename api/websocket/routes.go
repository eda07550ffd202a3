package websocket

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/tubetrack/server/internal/events"
)

func RegisterRoutes(router *gin.RouterGroup, hub *events.Hub) {
	router.GET("/ws", EventsHandler(hub))
}
