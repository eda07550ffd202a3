package websocket

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/tubetrack/server/internal/auth"
	"codeberg.org/tubetrack/server/internal/errors"
	"codeberg.org/tubetrack/server/internal/events"
	"codeberg.org/tubetrack/server/internal/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     events.CheckOrigin,
}

// EventsHandler godoc
// @Summary Snapshot run events
// @Description Upgrade to a websocket that streams run_started, video_recorded, video_failed, account_failed and run_finished events for the caller's account
// @Tags events
// @Param token query string true "JWT"
// @Success 101 {string} string "Switching Protocols"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/v1/ws [get]
func EventsHandler(hub *events.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params ConnectParams
		if err := c.ShouldBindQuery(&params); err != nil {
			errors.BadRequest(c, "token query parameter required", err)
			return
		}

		claims, err := auth.ValidateJWT(params.Token)
		if err != nil {
			errors.Unauthorized(c, "invalid or expired token")
			return
		}

		accountID := claims.UserID
		ipAddress := c.ClientIP()

		if canAccept, reason := hub.CanAcceptConnection(accountID, ipAddress); !canAccept {
			errors.TooManyRequests(c, reason)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.ErrorErr(err, "failed to upgrade connection",
				"account_id", accountID,
				"ip", ipAddress,
			)

			return
		}

		clientID := events.GenerateClientID()
		client := events.NewClient(clientID, accountID, ipAddress, conn, hub)

		hub.Register <- client

		go client.WritePump()
		go client.ReadPump()

		logger.Info("websocket connection established",
			"client_id", clientID,
			"account_id", accountID,
			"ip", ipAddress,
		)
	}
}
