package client

import (
	"context"
	"net/url"
	"strconv"

	"backoffice/models"
	"backoffice/services/aggregator"
)

func listQuery(req models.ListRequest) url.Values {
	q := url.Values{}
	if req.Page > 0 {
		q.Set("page", strconv.Itoa(req.Page))
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Status != "" {
		q.Set("status", req.Status)
	}
	return q
}

type (
	customerSource     struct{ c *Client }
	paymentSource      struct{ c *Client }
	subscriptionSource struct{ c *Client }
	tokenSource        struct{ c *Client }
)

func (s customerSource) List(ctx context.Context, req models.ListRequest) (*models.CustomerPage, error) {
	var page models.CustomerPage
	if err := s.c.get(ctx, "/customers", listQuery(req), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s paymentSource) List(ctx context.Context, req models.ListRequest) (*models.PaymentPage, error) {
	var page models.PaymentPage
	if err := s.c.get(ctx, "/payments", listQuery(req), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s subscriptionSource) List(ctx context.Context, req models.ListRequest) (*models.SubscriptionPage, error) {
	var page models.SubscriptionPage
	if err := s.c.get(ctx, "/subscriptions", listQuery(req), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s tokenSource) List(ctx context.Context, req models.ListRequest) (*models.TokenPage, error) {
	req.Status = ""
	var page models.TokenPage
	if err := s.c.get(ctx, "/tokens/transactions", listQuery(req), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Sources returns the four entity listings backed by the API.
func (c *Client) Sources() aggregator.Sources {
	return aggregator.Sources{
		Customers:     customerSource{c},
		Payments:      paymentSource{c},
		Subscriptions: subscriptionSource{c},
		Tokens:        tokenSource{c},
	}
}

// Aggregate fetches one page of the merged view built by the server. It lets
// a Controller run against /activity instead of aggregating locally.
func (c *Client) Aggregate(ctx context.Context, f models.FilterState) (*aggregator.Result, error) {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("search", f.Search)
	set("kind", string(f.Kind))
	set("status", f.Status)
	set("sortBy", string(f.SortBy))
	set("sortDirection", string(f.SortDirection))
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(f.PageSize))
	}

	var res aggregator.Result
	if err := c.get(ctx, "/activity", q, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
