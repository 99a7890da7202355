package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yeremiapane/restaurant-tables/config"
	"github.com/yeremiapane/restaurant-tables/controllers"
	"github.com/yeremiapane/restaurant-tables/hub"
	"github.com/yeremiapane/restaurant-tables/middlewares"
	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/qr"
	"github.com/yeremiapane/restaurant-tables/repository"
	"github.com/yeremiapane/restaurant-tables/services"
	"github.com/yeremiapane/restaurant-tables/utils"
	"gorm.io/gorm"
)

// Deps are the long-lived collaborators the HTTP layer is built from.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Hub    *hub.Hub
	Tokens *utils.TokenManager
	QR     *qr.FileIssuer
}

func SetupRouter(d Deps) *gin.Engine {
	cfg := d.Config

	r := gin.New()
	r.Use(middlewares.LoggerMiddleware())
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		utils.ErrorLogger.Printf("Panic on %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		utils.AbortWithError(c, http.StatusInternalServerError, "Internal server error", nil)
	}))
	r.Use(middlewares.MetricsMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigin))
	r.Use(middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).RateLimit())

	// Repositories and services
	tableRepo := repository.NewTableRepository(d.DB)
	reservationRepo := repository.NewReservationRepository(d.DB)
	userRepo := repository.NewUserRepository(d.DB)

	tableSvc := services.NewTableService(tableRepo, reservationRepo, userRepo, d.QR, d.Hub, cfg.BaseURL)
	reservationSvc := services.NewReservationService(tableRepo, reservationRepo, d.Hub)
	qrSvc := services.NewQRService(tableRepo, d.QR, cfg.BaseURL)
	accountSvc := services.NewAccountService(userRepo, d.Tokens)

	// Controllers
	tableCtrl := controllers.NewTableController(tableSvc)
	reservationCtrl := controllers.NewReservationController(reservationSvc, cfg.Location)
	qrCtrl := controllers.NewQRController(qrSvc)
	userCtrl := controllers.NewUserController(accountSvc, d.Tokens)
	floorCtrl := controllers.NewFloorController(d.Hub, cfg.CORSOrigin)

	requireAuth := middlewares.AuthMiddleware(d.Tokens)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static("/public/qrcodes", d.QR.Dir())

	api := r.Group("/api")

	// Login/register get a stricter limiter
	authGroup := api.Group("/auth")
	{
		strict := middlewares.NewStrictRateLimiter().RateLimit()
		authGroup.POST("/register", strict, userCtrl.Register)
		authGroup.POST("/login", strict, userCtrl.Login)
		authGroup.POST("/logout", requireAuth, userCtrl.Logout)
		authGroup.GET("/profile", requireAuth, userCtrl.GetProfile)
	}

	users := api.Group("/users", requireAuth)
	{
		users.GET("/servers", userCtrl.GetServers)
		users.GET("", middlewares.RequireRole(models.RoleAdmin), userCtrl.GetAllUsers)
		users.POST("", middlewares.RequireRole(models.RoleAdmin), userCtrl.CreateUser)
	}

	// TABLES
	tables := api.Group("/tables")
	{
		tables.POST("", tableCtrl.CreateTable)
		tables.GET("", tableCtrl.GetAllTables)
		tables.GET("/stats", tableCtrl.GetTableStats)
		tables.GET("/availability/check", reservationCtrl.CheckAvailability)

		// RESERVATIONS
		tables.POST("/reservations", requireAuth, reservationCtrl.CreateReservation)
		tables.GET("/reservations", requireAuth, reservationCtrl.GetReservations)
		tables.GET("/reservations/:reservationId", requireAuth, reservationCtrl.GetReservationByID)
		tables.PUT("/reservations/:reservationId/status", requireAuth, reservationCtrl.UpdateReservationStatus)

		tables.GET("/:id", tableCtrl.GetTableByID)
		tables.PUT("/:id", tableCtrl.UpdateTable)
		tables.PUT("/:id/status", tableCtrl.UpdateTableStatus)
		tables.PUT("/:id/assign", requireAuth, tableCtrl.AssignServer)
		tables.DELETE("/:id", tableCtrl.DeleteTable)
		tables.GET("/:id/qr", tableCtrl.GetTableQR)
	}

	// QR CODES
	qrGroup := api.Group("/qr")
	{
		qrGroup.POST("/menu", requireAuth, qrCtrl.GenerateMenuQR)
		qrGroup.POST("/tables/:tableId", qrCtrl.GenerateTableQR)
		qrGroup.GET("/:filename", qrCtrl.ServeQRCode)
	}

	// Floor screens
	r.GET("/ws", middlewares.WebSocketAuthMiddleware(d.Tokens), floorCtrl.FloorHandler)

	r.NoRoute(func(c *gin.Context) {
		utils.RespondError(c, http.StatusNotFound, "Route not found", nil)
	})

	return r
}
