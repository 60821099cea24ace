package routes

import (
	"time"

	"saubio/config"
	"saubio/handlers"
	"saubio/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterPublicRoutes registers the runtime config, locale and country endpoints.
func RegisterPublicRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.GET("/config", hb.GetRuntimeConfig)
		api.GET("/locales/:locale", hb.GetLocaleMessages)
		api.GET("/countries", hb.ListCountries)
		api.GET("/countries/:code", hb.GetCountry)
	}
}

// RegisterFlowRoutes sets up the booking flow progress endpoints.
func RegisterFlowRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	flowGroup := r.Group("/api/booking/flow")
	{
		flowGroup.GET("/steps", hb.GetFlowSteps)
		flowGroup.POST("/timeline", hb.DeriveFlowTimeline)

		session := flowGroup.Group("/session")
		session.Use(middleware.JWTAuthMiddleware())
		session.POST("", hb.StartFlowSession)
		session.GET("/:sessionID", hb.GetFlowSession)
		session.PATCH("/:sessionID", hb.UpdateFlowSession)
		session.DELETE("/:sessionID", hb.CancelFlowSession)
		session.GET("/:sessionID/events", hb.StreamFlowSession)
	}
}

// RegisterBookingRoutes sets up the booking dashboard endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/bookings")
	{
		bookingGroup.Use(middleware.JWTAuthMiddleware())
		bookingGroup.GET("", hb.ListMyBookings)
	}
}

// RegisterAdminRoutes sets up endpoints for employee operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/admin/login", hb.AdminLogin)

	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuthAdminMiddleware())
		adminGroup.GET("/bookings", hb.ListAllBookings)
		adminGroup.PUT("/flow/session/:sessionID/overrides", hb.SetSessionOverrides)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Accept-Language", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(corsConfig(config.AppConfig.Origins())))

	RegisterHealthRoute(r, hb)
	RegisterPublicRoutes(r, hb)
	RegisterFlowRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
