package aggregator

import (
	"context"
	"errors"
	"sync"

	"backoffice/models"
)

// ErrSuperseded is returned by Refresh when a later pass was started before
// this one finished. Its result is discarded.
var ErrSuperseded = errors.New("aggregation pass superseded")

// FilterPatch is a partial filter change. Nil fields are left as they are.
type FilterPatch struct {
	Search        *string
	Kind          *models.ItemKind
	Status        *string
	SortBy        *models.SortField
	SortDirection *models.SortDirection
	Page          *int
	PageSize      *int
}

// ViewState is what a presentation layer renders.
type ViewState struct {
	Filters models.FilterState
	Loading bool
	Err     error
	Result  *Result
}

// Controller owns the current FilterState and the view built from it. Every
// change produces a new FilterState value; the aggregator only ever sees
// snapshots.
type Controller struct {
	agg AggregationService

	mu      sync.Mutex
	filters models.FilterState
	gen     uint64
	cancel  context.CancelFunc
	view    ViewState
}

func NewController(agg AggregationService, initial models.FilterState) *Controller {
	initial = initial.Normalize()
	return &Controller{
		agg:     agg,
		filters: initial,
		view:    ViewState{Filters: initial},
	}
}

// Filters returns the current filter state.
func (c *Controller) Filters() models.FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// Update applies p. Changing anything other than the page sends the view back
// to page 1.
func (c *Controller) Update(p FilterPatch) models.FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.filters
	next := prev
	if p.Search != nil {
		next.Search = *p.Search
	}
	if p.Kind != nil {
		next.Kind = *p.Kind
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if p.SortBy != nil {
		next.SortBy = *p.SortBy
	}
	if p.SortDirection != nil {
		next.SortDirection = *p.SortDirection
	}
	if p.PageSize != nil {
		next.PageSize = *p.PageSize
	}
	if p.Page != nil {
		next.Page = *p.Page
	}
	next = next.Normalize()

	withoutPage := func(f models.FilterState) models.FilterState {
		f.Page = 0
		return f
	}
	if withoutPage(next) != withoutPage(prev) {
		next.Page = 1
	}

	c.filters = next
	c.view.Filters = next
	return next
}

// SetPage moves to page n without touching the other filters.
func (c *Controller) SetPage(n int) models.FilterState {
	return c.Update(FilterPatch{Page: &n})
}

// Reset restores the default filters.
func (c *Controller) Reset() models.FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = models.DefaultFilterState()
	c.view.Filters = c.filters
	return c.filters
}

// Refresh runs one aggregation pass over the current filters and records the
// outcome in the view. Starting a new pass cancels the previous one; a pass
// that finishes after a newer one was started returns ErrSuperseded and
// leaves the view alone. On failure the last good result stays in the view
// next to the error, so the same filters can simply be refreshed again.
func (c *Controller) Refresh(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	filters := c.filters
	passCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.view.Loading = true
	c.view.Err = nil
	c.mu.Unlock()

	res, err := c.agg.Aggregate(passCtx, filters)

	c.mu.Lock()
	defer c.mu.Unlock()
	cancel()
	if gen != c.gen {
		return nil, ErrSuperseded
	}
	c.cancel = nil
	c.view.Loading = false
	c.view.Err = err
	if err != nil {
		return nil, err
	}
	c.view.Result = res
	return res, nil
}

// View returns the current view state.
func (c *Controller) View() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}
