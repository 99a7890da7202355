package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/yeremiapane/restaurant-tables/config"
	"github.com/yeremiapane/restaurant-tables/hub"
	"github.com/yeremiapane/restaurant-tables/qr"
	"github.com/yeremiapane/restaurant-tables/repository"
	"github.com/yeremiapane/restaurant-tables/router"
	"github.com/yeremiapane/restaurant-tables/services"
	"github.com/yeremiapane/restaurant-tables/utils"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	utils.InitLogger(cfg.LogLevel)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize DB
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := config.AutoMigrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	issuer, err := qr.NewFileIssuer(cfg.QRDir)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to prepare QR directory: %v", err)
	}

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	if cfg.AdminEmail != "" {
		accounts := services.NewAccountService(repository.NewUserRepository(db), tokens)
		admin, err := accounts.EnsureAdmin(context.Background(), cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to seed admin account: %v", err)
		}
		utils.InfoLogger.Printf("Admin account ready: %s", admin.Email)
	}

	r := router.SetupRouter(router.Deps{
		Config: cfg,
		DB:     db,
		Hub:    hub.New(),
		Tokens: tokens,
		QR:     issuer,
	})

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}
