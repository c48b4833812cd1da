package wallet

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	wallet := router.Group("/wallet")
	wallet.GET("", GetBalance)
	wallet.GET("/ledger", GetLedger)
}
