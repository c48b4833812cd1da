package main

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/GodwinAdu/med-pro-sub001/config"
	"github.com/GodwinAdu/med-pro-sub001/internal/api"
	"github.com/GodwinAdu/med-pro-sub001/internal/database"
	"github.com/GodwinAdu/med-pro-sub001/internal/models"
	"github.com/GodwinAdu/med-pro-sub001/pkg/logger"
)

// @title med-pro-sub API
// @version 1.0
// @description Entitlement, coin ledger and payment settlement backend for the medical assistant app.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	err = logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	router, err := api.NewRouter()
	if err != nil {
		log.Fatalf("failed to create router: %v", err)
	}

	// Migrate the schema
	err = database.DB.AutoMigrate(&models.Account{}, &models.LedgerEntry{}, &models.UsageCounter{})
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	initAdminAccount()

	if err := router.Run(":8080"); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}

// initAdminAccount seeds the bootstrap admin from the environment. Skipped
// when no credentials are configured.
func initAdminAccount() {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		return
	}

	var admin models.Account
	result := database.DB.Where("email = ?", adminEmail).First(&admin)

	if result.Error != nil {
		if result.Error.Error() == "record not found" {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
			if err != nil {
				log.Fatalf("failed to hash admin password: %v", err)
			}

			admin = models.Account{
				Email:        adminEmail,
				Password:     string(hashedPassword),
				Role:         "admin",
				ReferralCode: "ADMIN000",
			}

			if err := database.DB.Create(&admin).Error; err != nil {
				log.Fatalf("failed to create admin account: %v", err)
			}
			log.Println("Admin account created successfully!")
		} else {
			log.Fatalf("failed to check for admin account: %v", result.Error)
		}
	} else {
		log.Println("Admin account already exists.")
	}
}
