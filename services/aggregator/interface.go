package aggregator

import (
	"context"

	"backoffice/models"
)

// CustomerSource returns one page of customers. The customer listing carries
// no totals.
type CustomerSource interface {
	List(ctx context.Context, req models.ListRequest) (*models.CustomerPage, error)
}

// PaymentSource returns one page of payments.
type PaymentSource interface {
	List(ctx context.Context, req models.ListRequest) (*models.PaymentPage, error)
}

// SubscriptionSource returns one page of subscriptions.
type SubscriptionSource interface {
	List(ctx context.Context, req models.ListRequest) (*models.SubscriptionPage, error)
}

// TokenSource returns one page of token transactions. It does not filter by
// status; the aggregator never sends one.
type TokenSource interface {
	List(ctx context.Context, req models.ListRequest) (*models.TokenPage, error)
}

// Sources bundles the four collections the activity view merges. Repositories
// and the HTTP client both satisfy these interfaces.
type Sources struct {
	Customers     CustomerSource
	Payments      PaymentSource
	Subscriptions SubscriptionSource
	Tokens        TokenSource
}

// Result is one page of the merged activity view.
type Result struct {
	Items      []models.UnifiedItem `json:"items"`
	TotalCount int                  `json:"totalCount"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
}

// AggregationService produces the merged activity view for a filter state.
type AggregationService interface {
	Aggregate(ctx context.Context, filters models.FilterState) (*Result, error)
}
