package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/GodwinAdu/med-pro-sub001/config"
	_ "github.com/GodwinAdu/med-pro-sub001/docs"
	adminLedger "github.com/GodwinAdu/med-pro-sub001/internal/api/v1/admin/ledger"
	adminUser "github.com/GodwinAdu/med-pro-sub001/internal/api/v1/admin/user"
	accountRoutes "github.com/GodwinAdu/med-pro-sub001/internal/api/v1/account"
	"github.com/GodwinAdu/med-pro-sub001/internal/api/v1/assistantapi"
	"github.com/GodwinAdu/med-pro-sub001/internal/api/v1/auth"
	"github.com/GodwinAdu/med-pro-sub001/internal/api/v1/bonus"
	"github.com/GodwinAdu/med-pro-sub001/internal/api/v1/entitlements"
	"github.com/GodwinAdu/med-pro-sub001/internal/api/v1/payments"
	"github.com/GodwinAdu/med-pro-sub001/internal/api/v1/referral"
	"github.com/GodwinAdu/med-pro-sub001/internal/api/v1/wallet"
	"github.com/GodwinAdu/med-pro-sub001/internal/assistant"
	"github.com/GodwinAdu/med-pro-sub001/internal/database"
	"github.com/GodwinAdu/med-pro-sub001/internal/middleware"
	"github.com/GodwinAdu/med-pro-sub001/internal/payment/paystack"
	"github.com/GodwinAdu/med-pro-sub001/internal/services"
)

func NewRouter() (*gin.Engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	_, err = database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}

	err = database.ConnectRedis(cfg)
	if err != nil {
		return nil, err
	}

	if err := services.InitEntitlements(cfg); err != nil {
		return nil, err
	}
	services.Gateway = paystack.NewClient(cfg.PaystackSecretKey, cfg.PaystackBaseURL)
	services.Assistant = assistant.NewClient(cfg.AssistantAPIKey, cfg.AssistantBaseURL, cfg.AssistantModel)

	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1
	v1 := router.Group("/api/v1")
	{
		auth.RegisterRoutes(v1)
		payments.RegisterRoutes(v1)

		authorized := v1.Group("/")
		authorized.Use(middleware.AuthMiddleware())
		{
			accountRoutes.RegisterRoutes(authorized)
			wallet.RegisterRoutes(authorized)
			referral.RegisterRoutes(authorized)
			bonus.RegisterRoutes(authorized)
			entitlements.RegisterRoutes(authorized)
			assistantapi.RegisterRoutes(authorized)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			adminUser.RegisterRoutes(admin)
			adminLedger.RegisterRoutes(admin)
		}
	}

	return router, nil
}
