package aggregator

import (
	"context"
	"fmt"
	"time"

	"backoffice/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPageLimit        = 50
	defaultMaxPages         = 20
	defaultFetchConcurrency = 4 // one per source kind
)

// DefaultAggregator merges the four sources into one filtered, sorted and
// paginated view.
type DefaultAggregator struct {
	sources          Sources
	pageLimit        int
	maxPages         int
	fetchConcurrency int
	cache            ResultCache
	now              func() time.Time
	logger           *zap.Logger
}

// Option configures a DefaultAggregator.
type Option func(*DefaultAggregator)

// WithPageLimit sets how many records each source request asks for.
func WithPageLimit(n int) Option {
	return func(a *DefaultAggregator) {
		if n > 0 {
			a.pageLimit = n
		}
	}
}

// WithMaxPages caps how many pages are drained from one source per pass.
func WithMaxPages(n int) Option {
	return func(a *DefaultAggregator) {
		if n > 0 {
			a.maxPages = n
		}
	}
}

// WithFetchConcurrency bounds how many sources are drained at the same time.
func WithFetchConcurrency(n int) Option {
	return func(a *DefaultAggregator) {
		if n > 0 {
			a.fetchConcurrency = n
		}
	}
}

// WithCache stores merged results between passes.
func WithCache(c ResultCache) Option {
	return func(a *DefaultAggregator) { a.cache = c }
}

// WithClock replaces time.Now for missing-date fallbacks.
func WithClock(now func() time.Time) Option {
	return func(a *DefaultAggregator) { a.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *DefaultAggregator) { a.logger = l }
}

// NewAggregator returns an aggregator over sources.
func NewAggregator(sources Sources, opts ...Option) *DefaultAggregator {
	a := &DefaultAggregator{
		sources:          sources,
		pageLimit:        defaultPageLimit,
		maxPages:         defaultMaxPages,
		fetchConcurrency: defaultFetchConcurrency,
		now:              time.Now,
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate runs one pass: fetch every in-scope source in parallel, map,
// merge in kind order, search, filter by status, sort and paginate. If any
// source fails the pass fails with an AggregationError listing every failure.
func (a *DefaultAggregator) Aggregate(ctx context.Context, filters models.FilterState) (*Result, error) {
	filters = filters.Normalize()
	if err := filters.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}

	merged, err := a.collect(ctx, filters)
	if err != nil {
		return nil, err
	}

	items := ApplySearch(merged, filters.Search)
	items = ApplyStatus(items, filters.StatusFilter())
	if len(items) == len(merged) {
		// Sorting works in place; keep the cached slice untouched.
		items = append([]models.UnifiedItem(nil), items...)
	}
	SortItems(items, filters.SortBy, filters.SortDirection)

	return &Result{
		Items:      Paginate(items, filters.Page, filters.PageSize),
		TotalCount: len(items),
		Page:       filters.Page,
		PageSize:   filters.PageSize,
	}, nil
}

// collect returns the merged, unfiltered items for the kind and status scope
// of filters, from the cache when possible.
func (a *DefaultAggregator) collect(ctx context.Context, filters models.FilterState) ([]models.UnifiedItem, error) {
	key := cacheKey(filters)
	if a.cache != nil {
		items, ok, err := a.cache.Get(ctx, key)
		if err != nil {
			a.logger.Warn("aggregation cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return items, nil
		}
	}

	items, err := a.fetchAll(ctx, filters)
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, key, items); err != nil {
			a.logger.Warn("aggregation cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return items, nil
}

// fetchAll fetches the in-scope sources concurrently and maps their records.
func (a *DefaultAggregator) fetchAll(ctx context.Context, filters models.FilterState) ([]models.UnifiedItem, error) {
	status := filters.StatusFilter()

	var (
		customers     []models.Customer
		payments      []models.Payment
		subscriptions []models.Subscription
		tokens        []models.TokenTransaction
		failures      [4]error
	)

	// The group carries no context: a failing source must not cancel its
	// siblings, since every cause is reported. Failures are also kept per
	// source; Wait only tells whether there were any.
	var g errgroup.Group
	g.SetLimit(a.fetchConcurrency)
	if filters.Includes(models.KindCustomer) {
		g.Go(func() error {
			customers, failures[0] = drain(ctx, a, func(ctx context.Context, req models.ListRequest) ([]models.Customer, int, error) {
				page, err := a.sources.Customers.List(ctx, req)
				if err != nil {
					return nil, 0, err
				}
				return page.Customers, -1, nil
			}, status)
			return failures[0]
		})
	}
	if filters.Includes(models.KindPayment) {
		g.Go(func() error {
			payments, failures[1] = drain(ctx, a, func(ctx context.Context, req models.ListRequest) ([]models.Payment, int, error) {
				page, err := a.sources.Payments.List(ctx, req)
				if err != nil {
					return nil, 0, err
				}
				return page.Items, page.TotalPages, nil
			}, status)
			return failures[1]
		})
	}
	if filters.Includes(models.KindSubscription) {
		g.Go(func() error {
			subscriptions, failures[2] = drain(ctx, a, func(ctx context.Context, req models.ListRequest) ([]models.Subscription, int, error) {
				page, err := a.sources.Subscriptions.List(ctx, req)
				if err != nil {
					return nil, 0, err
				}
				return page.Items, page.TotalPages, nil
			}, status)
			return failures[2]
		})
	}
	if filters.Includes(models.KindToken) {
		g.Go(func() error {
			// The token source takes no status.
			tokens, failures[3] = drain(ctx, a, func(ctx context.Context, req models.ListRequest) ([]models.TokenTransaction, int, error) {
				page, err := a.sources.Tokens.List(ctx, req)
				if err != nil {
					return nil, 0, err
				}
				return page.Items, page.TotalPages, nil
			}, "")
			return failures[3]
		})
	}
	if err := g.Wait(); err == nil {
		return a.mapAll(customers, payments, subscriptions, tokens), nil
	}

	var causes []*SourceFetchError
	for i, err := range failures {
		if err != nil {
			causes = append(causes, &SourceFetchError{Kind: models.ItemKinds[i], Cause: err})
		}
	}
	aggErr := &AggregationError{Causes: causes}
	a.logger.Warn("aggregation pass failed", zap.Strings("causes", aggErr.Messages()))
	return nil, aggErr
}

// mapAll maps fetched records to unified items in kind order.
func (a *DefaultAggregator) mapAll(
	customers []models.Customer,
	payments []models.Payment,
	subscriptions []models.Subscription,
	tokens []models.TokenTransaction,
) []models.UnifiedItem {
	m := mapContext{now: a.now(), customerTypes: make(map[string]models.CustomerType, len(customers))}
	for _, c := range customers {
		m.customerTypes[c.ID] = c.Type
	}

	records := make([]Record, 0, len(customers)+len(payments)+len(subscriptions)+len(tokens))
	for _, c := range customers {
		records = append(records, customerRecord(c))
	}
	for _, p := range payments {
		records = append(records, paymentRecord(p))
	}
	for _, s := range subscriptions {
		records = append(records, subscriptionRecord(s))
	}
	for _, t := range tokens {
		records = append(records, tokenRecord(t))
	}

	items := make([]models.UnifiedItem, 0, len(records))
	for _, r := range records {
		items = append(items, r.toItem(m))
	}
	return items
}

// drain reads a source page by page until it is exhausted or the page cap is
// reached, so merged pagination holds beyond the first source page. fetch
// returns one page and the total number of pages, or -1 when the source does
// not report one.
func drain[T any](
	ctx context.Context,
	a *DefaultAggregator,
	fetch func(context.Context, models.ListRequest) ([]T, int, error),
	status string,
) ([]T, error) {
	var all []T
	for page := 1; page <= a.maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		items, totalPages, err := fetch(ctx, models.ListRequest{Page: page, Limit: a.pageLimit, Status: status})
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if len(items) < a.pageLimit || (totalPages >= 0 && page >= totalPages) {
			return all, nil
		}
		if page == a.maxPages {
			a.logger.Warn("source page cap reached, result truncated",
				zap.Int("pages", page), zap.Int("records", len(all)))
		}
	}
	return all, nil
}
