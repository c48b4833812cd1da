package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/GodwinAdu/med-pro-sub001/internal/middleware"
)

func RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	auth.POST("/register", Register)
	auth.POST("/login", Login)
	auth.POST("/logout", middleware.AuthMiddleware(), Logout)
}
