package referral

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	referral := router.Group("/referral")
	referral.GET("", Status)
	referral.POST("/redeem", Redeem)
}
