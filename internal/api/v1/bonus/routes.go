package bonus

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	bonus := router.Group("/bonus")
	bonus.POST("/daily", ClaimDaily)
}
