package notification

import (
	"context"
	"encoding/json"
	"sync"

	"backoffice/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const subscriberBuffer = 16

// Hub fans newly created notifications out to live subscribers.
type Hub interface {
	Publish(ctx context.Context, n models.Notification) error
	Subscribe(ctx context.Context) (<-chan models.Notification, func(), error)
}

// MemoryHub is a single-process Hub. Slow subscribers miss notifications
// rather than blocking Publish.
type MemoryHub struct {
	mu     sync.RWMutex
	subs   map[int]chan models.Notification
	nextID int
}

func NewMemoryHub() *MemoryHub {
	return &MemoryHub{subs: make(map[int]chan models.Notification)}
}

func (h *MemoryHub) Publish(_ context.Context, n models.Notification) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- n:
		default:
		}
	}
	return nil
}

func (h *MemoryHub) Subscribe(ctx context.Context) (<-chan models.Notification, func(), error) {
	ch := make(chan models.Notification, subscriberBuffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(ch)
			h.mu.Unlock()
		})
	}
	context.AfterFunc(ctx, cancel)
	return ch, cancel, nil
}

// Subscribers returns the number of live subscriptions.
func (h *MemoryHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// RedisHub shares notifications between API instances over Redis pub/sub.
type RedisHub struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

const DefaultHubChannel = "backoffice:notifications"

func NewRedisHub(client *redis.Client, channel string, logger *zap.Logger) *RedisHub {
	if channel == "" {
		channel = DefaultHubChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisHub{client: client, channel: channel, logger: logger}
}

func (h *RedisHub) Publish(ctx context.Context, n models.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return h.client.Publish(ctx, h.channel, data).Err()
}

// Subscribe returns once Redis has confirmed the subscription.
func (h *RedisHub) Subscribe(ctx context.Context) (<-chan models.Notification, func(), error) {
	ps := h.client.Subscribe(ctx, h.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, err
	}

	out := make(chan models.Notification, subscriberBuffer)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = ps.Close()
		})
	}

	go func() {
		defer close(out)
		msgs := ps.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				cancel()
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var n models.Notification
				if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
					h.logger.Warn("dropping malformed notification", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				select {
				case out <- n:
				case <-done:
					return
				}
			}
		}
	}()
	return out, cancel, nil
}
