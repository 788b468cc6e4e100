package notification

import (
	"context"
	"sync"

	"backoffice/models"
)

// Backend is what a Channel talks to: the REST endpoints and the push stream
// of the notification API, or the service itself when running in-process.
type Backend interface {
	List(ctx context.Context) ([]models.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	// Subscribe registers onEvent for new notifications and returns once the
	// subscription is established. onEvent may be called from any goroutine.
	Subscribe(ctx context.Context, onEvent func(models.Notification)) (Subscription, error)
}

// Subscription is a live push subscription.
type Subscription interface {
	Unsubscribe()
}

// SubscriptionFunc adapts a function to Subscription.
type SubscriptionFunc func()

func (f SubscriptionFunc) Unsubscribe() { f() }

// ServiceBackend runs a Channel against a NotificationService in the same
// process.
type ServiceBackend struct {
	svc NotificationService
}

func NewServiceBackend(svc NotificationService) *ServiceBackend {
	return &ServiceBackend{svc: svc}
}

func (b *ServiceBackend) List(ctx context.Context) ([]models.Notification, error) {
	return b.svc.List(ctx, DefaultListLimit)
}

func (b *ServiceBackend) UnreadCount(ctx context.Context) (int, error) {
	return b.svc.UnreadCount(ctx)
}

func (b *ServiceBackend) MarkRead(ctx context.Context, id string) error {
	return b.svc.MarkRead(ctx, id)
}

func (b *ServiceBackend) MarkAllRead(ctx context.Context) error {
	return b.svc.MarkAllRead(ctx)
}

func (b *ServiceBackend) Delete(ctx context.Context, id string) error {
	return b.svc.Delete(ctx, id)
}

func (b *ServiceBackend) Subscribe(ctx context.Context, onEvent func(models.Notification)) (Subscription, error) {
	ch, cancel, err := b.svc.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for n := range ch {
			onEvent(n)
		}
	}()
	return SubscriptionFunc(func() {
		cancel()
		wg.Wait()
	}), nil
}
