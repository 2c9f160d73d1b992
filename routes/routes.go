package routes

import (
	"time"

	"slotbook/handlers"
	"slotbook/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options carries the settings the route tree needs from configuration.
type Options struct {
	JWTSecret         string
	AdminTokenHash    string
	MaxRequestsPerMin int
}

// RegisterProviderRoutes registers the provider side of the engine.
func RegisterProviderRoutes(r *gin.Engine, hb *handlers.HandlerBundle, identity gin.HandlerFunc) {
	api := r.Group("/api/providers")
	api.Use(identity)
	{
		api.POST("/register", hb.RegisterProviderHandler)

		api.GET("/services", hb.ListMyServicesHandler)
		api.POST("/services", hb.AddServiceHandler)
		api.PATCH("/services/:serviceID", hb.UpdateServiceHandler)
		api.DELETE("/services/:serviceID", hb.DeleteServiceHandler)

		api.GET("/slots", hb.ListMySlotsHandler)
		api.POST("/slots", hb.AddSlotHandler)

		api.DELETE("/bookings/:bookingID", hb.CancelBookingByProviderHandler)
	}
}

// RegisterCatalogRoutes registers the client-facing listings.
func RegisterCatalogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/services")
	{
		api.GET("", hb.ListPublicServicesHandler)
		api.GET("/:serviceID/slots", hb.ListServiceSlotsHandler)
	}
}

// RegisterBookingRoutes registers the client side of the reservation protocol.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle, identity gin.HandlerFunc) {
	api := r.Group("/api/bookings")
	api.Use(identity)
	{
		api.GET("", hb.ListMyBookingsHandler)
		api.POST("", hb.ReserveHandler)
		api.DELETE("/:bookingID", hb.CancelBookingHandler)
	}
}

// RegisterCommandRoutes exposes the textual commands of chat front ends.
func RegisterCommandRoutes(r *gin.Engine, hb *handlers.HandlerBundle, identity gin.HandlerFunc) {
	r.POST("/api/commands", identity, hb.CommandHandler)
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle, tokenHash string) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.AdminMiddleware(tokenHash))
		adminGroup.PATCH("/providers/:providerID/active", hb.SetProviderActiveHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", middleware.ActorIDHeader, middleware.AdminTokenHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware(opts.MaxRequestsPerMin))

	identity := middleware.IdentityMiddleware(opts.JWTSecret)
	RegisterProviderRoutes(r, hb, identity)
	RegisterCatalogRoutes(r, hb)
	RegisterBookingRoutes(r, hb, identity)
	RegisterCommandRoutes(r, hb, identity)
	RegisterAdminRoutes(r, hb, opts.AdminTokenHash)
	RegisterHealthRoute(r, hb)
}
