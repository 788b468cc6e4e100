package aggregator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"backoffice/models"
)

// fakeSource serves items page by page and records every request.
type fakeSource[T any] struct {
	mu       sync.Mutex
	items    []T
	err      error
	requests []models.ListRequest
	calls    atomic.Int32
	flights  *flightTracker
}

func (f *fakeSource[T]) page(req models.ListRequest) ([]T, int, error) {
	f.calls.Add(1)
	if f.flights != nil {
		f.flights.enter()
		defer f.flights.leave()
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, 0, f.err
	}
	start := min((req.Page-1)*req.Limit, len(f.items))
	end := min(start+req.Limit, len(f.items))
	out := append([]T(nil), f.items[start:end]...)
	return out, len(f.items), nil
}

func (f *fakeSource[T]) lastRequests() []models.ListRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ListRequest(nil), f.requests...)
}

type fakeCustomers struct{ fakeSource[models.Customer] }

func (f *fakeCustomers) List(_ context.Context, req models.ListRequest) (*models.CustomerPage, error) {
	items, _, err := f.page(req)
	if err != nil {
		return nil, err
	}
	return &models.CustomerPage{Customers: items}, nil
}

type fakePayments struct{ fakeSource[models.Payment] }

func (f *fakePayments) List(_ context.Context, req models.ListRequest) (*models.PaymentPage, error) {
	items, total, err := f.page(req)
	if err != nil {
		return nil, err
	}
	page := models.NewPage(items, total, req)
	return &page, nil
}

type fakeSubscriptions struct{ fakeSource[models.Subscription] }

func (f *fakeSubscriptions) List(_ context.Context, req models.ListRequest) (*models.SubscriptionPage, error) {
	items, total, err := f.page(req)
	if err != nil {
		return nil, err
	}
	page := models.NewPage(items, total, req)
	return &page, nil
}

type fakeTokens struct{ fakeSource[models.TokenTransaction] }

func (f *fakeTokens) List(_ context.Context, req models.ListRequest) (*models.TokenPage, error) {
	items, total, err := f.page(req)
	if err != nil {
		return nil, err
	}
	page := models.NewPage(items, total, req)
	return &page, nil
}

type fakeSources struct {
	customers     *fakeCustomers
	payments      *fakePayments
	subscriptions *fakeSubscriptions
	tokens        *fakeTokens
}

func (f *fakeSources) sources() Sources {
	return Sources{
		Customers:     f.customers,
		Payments:      f.payments,
		Subscriptions: f.subscriptions,
		Tokens:        f.tokens,
	}
}

// newFakeSources builds sources holding nc customers, np payments, ns
// subscriptions and nt token transactions, all without dates.
func newFakeSources(nc, np, ns, nt int) *fakeSources {
	f := &fakeSources{
		customers:     &fakeCustomers{},
		payments:      &fakePayments{},
		subscriptions: &fakeSubscriptions{},
		tokens:        &fakeTokens{},
	}
	for i := 1; i <= nc; i++ {
		f.customers.items = append(f.customers.items, models.Customer{
			ID: fmt.Sprintf("c%d", i), Name: fmt.Sprintf("Customer %d", i),
			Type: models.CustomerTypePME, Status: "active",
		})
	}
	for i := 1; i <= np; i++ {
		f.payments.items = append(f.payments.items, models.Payment{
			ID: fmt.Sprintf("p%d", i), CustomerID: "c1", CustomerName: "Customer 1",
			Amount: float64(i * 10), Currency: "USD", Status: "completed",
		})
	}
	for i := 1; i <= ns; i++ {
		f.subscriptions.items = append(f.subscriptions.items, models.Subscription{
			ID: fmt.Sprintf("s%d", i), CustomerID: "c2", CustomerName: "Customer 2",
			PlanName: "Pro", Amount: 25, Currency: "USD", Status: "active",
		})
	}
	for i := 1; i <= nt; i++ {
		f.tokens.items = append(f.tokens.items, models.TokenTransaction{
			ID: fmt.Sprintf("t%d", i), CustomerID: "c3", CustomerName: "Customer 3",
			Type: models.TokenPurchase, Tokens: 100, Amount: 5, Status: "completed",
		})
	}
	return f
}

// flightTracker records the most requests seen in progress at once.
type flightTracker struct {
	current atomic.Int32
	peak    atomic.Int32
}

func (t *flightTracker) enter() {
	n := t.current.Add(1)
	for {
		p := t.peak.Load()
		if n <= p || t.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
}

func (t *flightTracker) leave() { t.current.Add(-1) }

// memoryCache is an in-process ResultCache.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]models.UnifiedItem
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]models.UnifiedItem{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]models.UnifiedItem, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, ok := c.entries[key]
	return items, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, items []models.UnifiedItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = items
	return nil
}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func ids(items []models.UnifiedItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
