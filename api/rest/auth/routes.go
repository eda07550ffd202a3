package auth

import (
	"codeberg.org/tubetrack/server/internal/auth"
	"github.com/gin-gonic/gin"
)

// registers all authentication routes
func RegisterRoutes(router *gin.RouterGroup, accountRepo AccountRepository) {
	authGroup := router.Group("/auth")
	{
		authGroup.GET("/me", auth.AuthMiddleware(), GetCurrentAccountHandler(accountRepo))
		authGroup.POST("/logout", LogoutHandler())
		authGroup.GET("/:provider", BeginAuthHandler())
		authGroup.GET("/:provider/callback", CallbackHandler(accountRepo))
	}
}
