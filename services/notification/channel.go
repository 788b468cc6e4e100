package notification

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"backoffice/models"

	"go.uber.org/zap"
)

// Mode is the delivery mode of a Channel.
type Mode int

const (
	ModeInitializing Mode = iota
	ModeRealTime
	ModePolling
	ModeDisposed
)

func (m Mode) String() string {
	switch m {
	case ModeInitializing:
		return "initializing"
	case ModeRealTime:
		return "realtime"
	case ModePolling:
		return "polling"
	case ModeDisposed:
		return "disposed"
	}
	return "unknown"
}

const (
	DefaultPollInterval     = 30 * time.Second
	DefaultSubscribeTimeout = 10 * time.Second
	errorBuffer             = 16
)

// Snapshot is the state a notification bell renders.
type Snapshot struct {
	Mode          Mode
	Notifications []models.Notification
	UnreadCount   int
}

// ChannelOption configures a Channel.
type ChannelOption func(*Channel)

func WithPollInterval(d time.Duration) ChannelOption {
	return func(c *Channel) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithSubscribeTimeout bounds how long Start waits for the push subscription
// before falling back to polling.
func WithSubscribeTimeout(d time.Duration) ChannelOption {
	return func(c *Channel) {
		if d > 0 {
			c.subscribeTimeout = d
		}
	}
}

func WithClock(clock Clock) ChannelOption {
	return func(c *Channel) { c.clock = clock }
}

func WithChannelLogger(l *zap.Logger) ChannelOption {
	return func(c *Channel) { c.logger = l }
}

// Channel keeps a local notification list in sync with a Backend. After an
// initial load it receives new notifications over a push subscription, or
// polls the backend when no subscription can be established. It never does
// both. Mutations are applied locally at once and sent to the backend in the
// background; backend failures are reported on Errors and never rolled back.
type Channel struct {
	backend          Backend
	clock            Clock
	pollInterval     time.Duration
	subscribeTimeout time.Duration
	logger           *zap.Logger
	store            Store

	// ctx spans the channel's lifetime and is cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	mode      Mode
	started   bool
	sub       Subscription
	ticker    Ticker
	stop      chan struct{}
	listeners []func(Snapshot)

	pollWG     sync.WaitGroup
	mutationWG sync.WaitGroup
	closeOnce  sync.Once

	errMu     sync.RWMutex
	errs      chan error
	errClosed bool
}

func NewChannel(backend Backend, opts ...ChannelOption) *Channel {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Channel{
		backend:          backend,
		clock:            RealClock{},
		pollInterval:     DefaultPollInterval,
		subscribeTimeout: DefaultSubscribeTimeout,
		logger:           zap.NewNop(),
		ctx:              ctx,
		cancel:           cancel,
		stop:             make(chan struct{}),
		errs:             make(chan error, errorBuffer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start loads the current feed and enters the live phase. A failed initial
// load is returned, but the channel still goes live so that later pushes or
// polls can recover. ctx bounds the initial load and the subscribe attempt.
func (c *Channel) Start(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.mode == ModeDisposed:
		c.mu.Unlock()
		return ErrDisposed
	case c.started:
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.mu.Unlock()

	loadErr := c.load(ctx)
	if loadErr != nil {
		c.report(loadErr)
	}
	c.goLive(ctx)
	return loadErr
}

// load fetches the list and the unread count and replaces the local state.
func (c *Channel) load(ctx context.Context) error {
	items, err := c.backend.List(ctx)
	if err != nil {
		return backendError("list", err)
	}
	count, err := c.backend.UnreadCount(ctx)
	if err != nil {
		return backendError("unread-count", err)
	}

	c.mu.Lock()
	disposed := c.mode == ModeDisposed
	c.mu.Unlock()
	if disposed {
		return nil
	}
	if hidden := c.store.Replace(items, count); hidden > 0 {
		c.logger.Debug("unread notifications beyond the loaded list",
			zap.Int("listed", len(items)), zap.Int("hidden", hidden))
	}
	c.notify()
	return nil
}

type subscribeResult struct {
	sub Subscription
	err error
}

// goLive tries the push subscription and falls back to polling when it fails
// or does not settle within the subscribe timeout. A subscription that
// settles after the timeout is cancelled straight away.
func (c *Channel) goLive(ctx context.Context) {
	var accepting atomic.Bool
	accepting.Store(true)
	onEvent := func(n models.Notification) {
		if accepting.Load() {
			c.receive(n)
		}
	}

	result := make(chan subscribeResult)
	abandoned := make(chan struct{})
	go func() {
		sub, err := c.backend.Subscribe(c.ctx, onEvent)
		select {
		case result <- subscribeResult{sub, err}:
		case <-abandoned:
			if sub != nil {
				sub.Unsubscribe()
			}
		}
	}()

	var res subscribeResult
	select {
	case res = <-result:
	case <-c.clock.After(c.subscribeTimeout):
		res.err = context.DeadlineExceeded
	case <-ctx.Done():
		res.err = ctx.Err()
	case <-c.stop:
		res.err = ErrDisposed
	}
	if res.sub == nil && res.err == nil {
		res.err = ErrDisposed
	}
	if res.err != nil {
		accepting.Store(false)
		close(abandoned)
		if res.sub != nil {
			res.sub.Unsubscribe()
			res.sub = nil
		}
	}

	c.mu.Lock()
	if c.mode == ModeDisposed {
		c.mu.Unlock()
		accepting.Store(false)
		if res.sub != nil {
			res.sub.Unsubscribe()
		}
		return
	}
	if res.err == nil {
		c.mode = ModeRealTime
		c.sub = res.sub
		c.mu.Unlock()
		c.logger.Info("notification channel live", zap.String("mode", ModeRealTime.String()))
		c.notify()
		return
	}

	c.mode = ModePolling
	c.ticker = c.clock.NewTicker(c.pollInterval)
	c.pollWG.Add(1)
	go c.poll(c.ticker)
	c.mu.Unlock()

	c.logger.Warn("push subscription unavailable, polling",
		zap.Duration("interval", c.pollInterval), zap.Error(res.err))
	c.report(backendError("subscribe", res.err))
	c.notify()
}

func (c *Channel) poll(t Ticker) {
	defer c.pollWG.Done()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C():
			if err := c.load(c.ctx); err != nil {
				c.report(err)
			}
		}
	}
}

// receive reconciles one pushed notification.
func (c *Channel) receive(n models.Notification) {
	c.mu.Lock()
	disposed := c.mode == ModeDisposed
	c.mu.Unlock()
	if disposed {
		return
	}
	if c.store.Add(n) {
		c.notify()
	} else {
		c.logger.Debug("duplicate notification ignored", zap.String("id", n.ID))
	}
}

// MarkAsRead marks one notification read locally and on the backend.
func (c *Channel) MarkAsRead(id string) error {
	if c.Mode() == ModeDisposed {
		return ErrDisposed
	}
	if c.store.MarkRead(id) {
		c.notify()
	}
	c.send("mark-read", func(ctx context.Context) error { return c.backend.MarkRead(ctx, id) })
	return nil
}

// MarkAllAsRead marks everything read locally and on the backend.
func (c *Channel) MarkAllAsRead() error {
	if c.Mode() == ModeDisposed {
		return ErrDisposed
	}
	c.store.MarkAllRead()
	c.notify()
	c.send("mark-all-read", c.backend.MarkAllRead)
	return nil
}

// Delete removes one notification locally and on the backend.
func (c *Channel) Delete(id string) error {
	if c.Mode() == ModeDisposed {
		return ErrDisposed
	}
	if c.store.Delete(id) {
		c.notify()
	}
	c.send("delete", func(ctx context.Context) error { return c.backend.Delete(ctx, id) })
	return nil
}

// send runs a backend mutation in the background.
func (c *Channel) send(op string, call func(ctx context.Context) error) {
	c.mu.Lock()
	if c.mode == ModeDisposed {
		c.mu.Unlock()
		return
	}
	c.mutationWG.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.mutationWG.Done()
		if err := call(c.ctx); err != nil {
			c.report(backendError(op, err))
		}
	}()
}

// report logs err and offers it on Errors without blocking.
func (c *Channel) report(err error) {
	c.logger.Warn("notification backend call failed", zap.Error(err))

	c.errMu.RLock()
	defer c.errMu.RUnlock()
	if c.errClosed {
		return
	}
	select {
	case c.errs <- err:
	default:
	}
}

// Errors delivers backend failures. It is closed by Close.
func (c *Channel) Errors() <-chan error {
	return c.errs
}

// OnChange registers fn to be called after every state change.
func (c *Channel) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Channel) notify() {
	snap := c.Snapshot()
	c.mu.Lock()
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(snap)
	}
}

// Mode returns the current delivery mode.
func (c *Channel) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Snapshot returns the current list, counter and mode.
func (c *Channel) Snapshot() Snapshot {
	items, unread := c.store.Snapshot()
	return Snapshot{Mode: c.Mode(), Notifications: items, UnreadCount: unread}
}

// Close stops polling or unsubscribes, waits for in-flight backend calls and
// closes Errors. It is safe to call more than once and before Start.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.mode = ModeDisposed
		sub := c.sub
		c.sub = nil
		ticker := c.ticker
		c.ticker = nil
		close(c.stop)
		c.mu.Unlock()

		if ticker != nil {
			ticker.Stop()
		}
		if sub != nil {
			sub.Unsubscribe()
		}
		c.cancel()
		c.pollWG.Wait()
		c.mutationWG.Wait()

		c.errMu.Lock()
		c.errClosed = true
		close(c.errs)
		c.errMu.Unlock()

		c.notify()
	})
}
