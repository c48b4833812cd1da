package assistantapi

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	a := router.Group("/assistant")
	a.POST("/chat", Chat)
	a.POST("/drug-lookup", DrugLookup)
	a.POST("/prescription", Prescription)
	a.POST("/diagnosis", Diagnosis)
	a.POST("/care-plan", CarePlan)
}
