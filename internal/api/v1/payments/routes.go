package payments

import (
	"github.com/gin-gonic/gin"

	"github.com/GodwinAdu/med-pro-sub001/internal/middleware"
)

func RegisterRoutes(router *gin.RouterGroup) {
	p := router.Group("/payments")
	// The webhook authenticates via the signature header; bearer auth would
	// break provider deliveries.
	p.POST("/webhook", Webhook)
	p.GET("/verify/:reference", middleware.AuthMiddleware(), Verify)
}
