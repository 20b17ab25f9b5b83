package http

import (
	"github.com/gin-gonic/gin"

	"github.com/tastylog/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = maxUploadBytes

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(NewIPRateLimiter(cfg.RateLimit.PerIP)))
	v1.Use(SessionMiddleware())
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", handler.Register)
			auth.POST("/login", handler.Login)
			auth.DELETE("/session", handler.Logout)
		}

		me := v1.Group("/me")
		{
			me.GET("", handler.GetProfile)
			me.PUT("/name", handler.UpdateName)
			me.POST("/avatar", handler.UploadAvatar)
		}

		foods := v1.Group("/foods")
		{
			foods.GET("", handler.ListFoods)
			foods.POST("", handler.CreateFood)
			foods.GET("/grouped", handler.GroupedFoods)
			foods.PUT("/:id", handler.UpdateFood)
			foods.DELETE("/:id", handler.DeleteFood)
		}

		stats := v1.Group("/stats")
		{
			stats.GET("/monthly", handler.MonthlyStats)
			stats.GET("/trend", handler.SpendingTrend)
			stats.GET("/ratings", handler.RatingDistribution)
		}

		maps := v1.Group("/map")
		{
			maps.GET("/markers", handler.MapMarkers)
			maps.GET("/tiles", handler.MapTile)
		}

		v1.POST("/images", handler.UploadImage)
	}

	return router
}
