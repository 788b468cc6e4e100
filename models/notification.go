package models

import "time"

// NotificationType categorises a console notification.
type NotificationType string

const (
	NotificationInfo         NotificationType = "info"
	NotificationSuccess      NotificationType = "success"
	NotificationWarning      NotificationType = "warning"
	NotificationError        NotificationType = "error"
	NotificationPayment      NotificationType = "payment"
	NotificationSubscription NotificationType = "subscription"
	NotificationToken        NotificationType = "token"
	NotificationCustomer     NotificationType = "customer"
)

// Notification is a single entry in the console's notification feed.
type Notification struct {
	ID        string           `bson:"id" json:"id"`
	Type      NotificationType `bson:"type" json:"type"`
	Title     string           `bson:"title" json:"title"`
	Message   string           `bson:"message" json:"message"`
	Read      bool             `bson:"read" json:"read"`
	Timestamp time.Time        `bson:"timestamp" json:"timestamp"`
	Metadata  map[string]any   `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// NotificationDraft is the input for creating a notification. The server
// assigns the id and timestamp.
type NotificationDraft struct {
	Type     NotificationType `json:"type" binding:"required"`
	Title    string           `json:"title" binding:"required"`
	Message  string           `json:"message"`
	Metadata map[string]any   `json:"metadata,omitempty"`
	// DeliverAt schedules delivery; zero means immediately.
	DeliverAt time.Time `json:"deliverAt,omitempty"`
}

// UnreadCount is the unread-count response body.
type UnreadCount struct {
	Count int `json:"count"`
}
