package notification

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"backoffice/database"
	"backoffice/models"
)

// fakeClock hands out timers and tickers that only fire when told to.
type fakeClock struct {
	mu      sync.Mutex
	afters  []chan time.Time
	tickers []*fakeTicker
}

func (c *fakeClock) After(time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	c.afters = append(c.afters, ch)
	return ch
}

func (c *fakeClock) NewTicker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{c: make(chan time.Time, 1)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) pendingAfters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.afters)
}

// expire fires every timer handed out so far.
func (c *fakeClock) expire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.afters {
		select {
		case ch <- time.Now():
		default:
		}
	}
}

func (c *fakeClock) ticker(t *testing.T) *fakeTicker {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) != 1 {
		t.Fatalf("expected exactly one ticker, got %d", len(c.tickers))
	}
	return c.tickers[0]
}

type fakeTicker struct {
	c       chan time.Time
	stopped atomic.Bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }
func (t *fakeTicker) Stop()               { t.stopped.Store(true) }
func (t *fakeTicker) tick()               { t.c <- time.Now() }

// fakeBackend is an in-memory Backend.
type fakeBackend struct {
	mu           sync.Mutex
	items        []models.Notification
	listErr      error
	mutationErr  error
	subscribeErr error
	// release, when set, holds Subscribe until it is closed.
	release chan struct{}
	onEvent func(models.Notification)
	calls   []string

	listCalls    atomic.Int32
	subscribed   atomic.Int32
	unsubscribed atomic.Int32
}

func (b *fakeBackend) List(context.Context) ([]models.Notification, error) {
	b.listCalls.Add(1)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listErr != nil {
		return nil, b.listErr
	}
	return append([]models.Notification(nil), b.items...), nil
}

func (b *fakeBackend) UnreadCount(context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, it := range b.items {
		if !it.Read {
			n++
		}
	}
	return n, nil
}

func (b *fakeBackend) mutate(call string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, call)
	return b.mutationErr
}

func (b *fakeBackend) MarkRead(_ context.Context, id string) error { return b.mutate("read:" + id) }
func (b *fakeBackend) MarkAllRead(context.Context) error           { return b.mutate("read-all") }
func (b *fakeBackend) Delete(_ context.Context, id string) error   { return b.mutate("delete:" + id) }

func (b *fakeBackend) Subscribe(_ context.Context, onEvent func(models.Notification)) (Subscription, error) {
	if b.release != nil {
		<-b.release
	}
	if b.subscribeErr != nil {
		return nil, b.subscribeErr
	}
	b.mu.Lock()
	b.onEvent = onEvent
	b.mu.Unlock()
	b.subscribed.Add(1)
	return SubscriptionFunc(func() { b.unsubscribed.Add(1) }), nil
}

func (b *fakeBackend) push(n models.Notification) {
	b.mu.Lock()
	fn := b.onEvent
	b.mu.Unlock()
	if fn != nil {
		fn(n)
	}
}

func (b *fakeBackend) mutationCalls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// fakeRepo is an in-memory NotificationRepository.
type fakeRepo struct {
	mu        sync.Mutex
	items     []models.Notification
	insertErr error
}

func (r *fakeRepo) List(_ context.Context, limit int) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]models.Notification(nil), r.items...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) UnreadCount(context.Context) (int, error) {
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

func (r *fakeRepo) Insert(_ context.Context, n models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.items = append([]models.Notification{n}, r.items...)
	return nil
}

func (r *fakeRepo) MarkRead(_ context.Context, id string) error {
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

func (r *fakeRepo) MarkAllRead(context.Context) (int64, error) {
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

func (r *fakeRepo) Delete(_ context.Context, id string) error {
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

type fakePusher struct {
	mu     sync.Mutex
	pushed []models.Notification
	err    error
}

func (p *fakePusher) Push(_ context.Context, n models.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushed = append(p.pushed, n)
	return p.err
}

var errBackendDown = errors.New("backend down")

// waitFor polls cond until it holds or a second has passed.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func unreadOf(items []models.Notification) int {
	n := 0
	for _, it := range items {
		if !it.Read {
			n++
		}
	}
	return n
}
