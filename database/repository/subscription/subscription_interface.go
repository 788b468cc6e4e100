package subscriptionRepo

import (
	"context"

	"backoffice/models"
)

// SubscriptionRepository defines read access to subscriptions.
type SubscriptionRepository interface {
	// List returns one page of subscriptions, newest first, optionally filtered by status.
	List(ctx context.Context, req models.ListRequest) (*models.SubscriptionPage, error)
	// GetByID retrieves a single record by id.
	GetByID(ctx context.Context, id string) (*models.Subscription, error)
}
