package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Admin authentication.
	AdminToken string
	JWTSecret  string
	// Requests per minute per client IP on the admin API.
	RateLimitPerMin int

	// Source listings
	ListCustomersHandler         gin.HandlerFunc
	ListPaymentsHandler          gin.HandlerFunc
	ListSubscriptionsHandler     gin.HandlerFunc
	ListTokenTransactionsHandler gin.HandlerFunc

	// Activity
	GetActivityHandler gin.HandlerFunc

	// Notification endpoints
	ListNotificationsHandler  gin.HandlerFunc
	UnreadCountHandler        gin.HandlerFunc
	MarkNotificationRead      gin.HandlerFunc
	MarkAllNotificationsRead  gin.HandlerFunc
	DeleteNotificationHandler gin.HandlerFunc
	CreateNotificationHandler gin.HandlerFunc
	StreamNotifications       gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}
