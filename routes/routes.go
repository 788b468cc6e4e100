package routes

import (
	"time"

	"backoffice/handlers"
	"backoffice/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterSourceRoutes registers the raw entity listings.
func RegisterSourceRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api.GET("/customers", hb.ListCustomersHandler)
	api.GET("/payments", hb.ListPaymentsHandler)
	api.GET("/subscriptions", hb.ListSubscriptionsHandler)
	api.GET("/tokens/transactions", hb.ListTokenTransactionsHandler)
}

// RegisterActivityRoutes registers the merged activity view.
func RegisterActivityRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api.GET("/activity", hb.GetActivityHandler)
}

// RegisterNotificationRoutes registers the notification feed endpoints.
func RegisterNotificationRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	group := api.Group("/notifications")
	{
		group.GET("", hb.ListNotificationsHandler)
		group.GET("/unread-count", hb.UnreadCountHandler)
		group.GET("/stream", hb.StreamNotifications)
		group.POST("", hb.CreateNotificationHandler)
		group.PATCH("/read-all", hb.MarkAllNotificationsRead)
		group.PATCH("/:id/read", hb.MarkNotificationRead)
		group.DELETE("/:id", hb.DeleteNotificationHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	health := hb.HealthHandler
	if health == nil {
		health = handlers.HealthHandler
	}
	r.GET("/health", health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)

	api := r.Group("/api/admin")
	api.Use(middleware.AdminAuthMiddleware(hb.AdminToken, hb.JWTSecret))
	api.Use(middleware.RateLimitMiddleware(hb.RateLimitPerMin))

	RegisterSourceRoutes(api, hb)
	RegisterActivityRoutes(api, hb)
	RegisterNotificationRoutes(api, hb)
}
