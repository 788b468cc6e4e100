package notificationRepo

import (
	"context"

	"backoffice/models"
)

// NotificationRepository defines persistence for the console notification feed.
type NotificationRepository interface {
	// List returns up to limit notifications, newest first.
	List(ctx context.Context, limit int) ([]models.Notification, error)
	// UnreadCount returns the number of unread notifications.
	UnreadCount(ctx context.Context) (int, error)
	// Insert stores a new notification.
	Insert(ctx context.Context, n models.Notification) error
	// MarkRead flips a single notification to read.
	MarkRead(ctx context.Context, id string) error
	// MarkAllRead flips every unread notification to read.
	MarkAllRead(ctx context.Context) (int64, error)
	// Delete removes a notification.
	Delete(ctx context.Context, id string) error
}
