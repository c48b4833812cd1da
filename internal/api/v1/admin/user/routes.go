package user

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/users", ListAccounts)
	router.POST("/users/:id/coins", GrantCoins)
}
