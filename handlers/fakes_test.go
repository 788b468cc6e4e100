package handlers

import (
	"context"
	"errors"
	"sync"

	"backoffice/database"
	"backoffice/models"
	"backoffice/services/aggregator"
)

// stubAggregator records the filters it was asked for.
type stubAggregator struct {
	mu     sync.Mutex
	got    []models.FilterState
	result *aggregator.Result
	err    error
}

func (a *stubAggregator) Aggregate(_ context.Context, filters models.FilterState) (*aggregator.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.got = append(a.got, filters)
	if a.err != nil {
		return nil, a.err
	}
	if a.result != nil {
		return a.result, nil
	}
	return &aggregator.Result{Items: []models.UnifiedItem{}, Page: filters.Page, PageSize: filters.PageSize}, nil
}

type stubCustomers struct {
	req models.ListRequest
	err error
}

func (s *stubCustomers) List(_ context.Context, req models.ListRequest) (*models.CustomerPage, error) {
	s.req = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.CustomerPage{Customers: []models.Customer{{ID: "c1", Name: "Kiota Tech", Type: models.CustomerTypePME}}}, nil
}

type stubPayments struct{ req models.ListRequest }

func (s *stubPayments) List(_ context.Context, req models.ListRequest) (*models.PaymentPage, error) {
	s.req = req
	page := models.NewPage([]models.Payment{{ID: "p1", Amount: 1200, Currency: "KES"}}, 1, req)
	return &page, nil
}

type stubSubscriptions struct{ req models.ListRequest }

func (s *stubSubscriptions) List(_ context.Context, req models.ListRequest) (*models.SubscriptionPage, error) {
	s.req = req
	page := models.NewPage[models.Subscription](nil, 0, req)
	return &page, nil
}

type stubTokens struct{ req models.ListRequest }

func (s *stubTokens) List(_ context.Context, req models.ListRequest) (*models.TokenPage, error) {
	s.req = req
	page := models.NewPage[models.TokenTransaction](nil, 0, req)
	return &page, nil
}

// memRepo is an in-memory NotificationRepository.
type memRepo struct {
	mu    sync.Mutex
	items []models.Notification
}

func (r *memRepo) List(_ context.Context, limit int) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]models.Notification(nil), r.items...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) UnreadCount(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, it := range r.items {
		if !it.Read {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) Insert(_ context.Context, n models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append([]models.Notification{n}, r.items...)
	return nil
}

func (r *memRepo) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].Read = true
			return nil
		}
	}
	return database.ErrNotFound
}

func (r *memRepo) MarkAllRead(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.items {
		if !r.items[i].Read {
			r.items[i].Read = true
			n++
		}
	}
	return n, nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

type stubEnqueuer struct {
	drafts []models.NotificationDraft
	err    error
}

func (e *stubEnqueuer) EnqueueNotification(_ context.Context, draft models.NotificationDraft) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	e.drafts = append(e.drafts, draft)
	return "task-1", nil
}

var errUpstream = errors.New("upstream unavailable")
