package entitlements

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	e := router.Group("/entitlements")
	e.GET("", List)
	e.GET("/:feature", Check)
}
