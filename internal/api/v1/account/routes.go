package account

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	account := router.Group("/account")
	account.GET("/me", Me)
}
