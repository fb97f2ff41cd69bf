// Package listctl owns the state of one filtered, sorted, paged collection:
// reset on filter change, append on scroll, and race-safe merging of
// responses that may arrive out of order.
package listctl

import (
	"context"
	"sync"
	"time"

	"github.com/productbazar/bazar/internal/apierr"
	"github.com/productbazar/bazar/internal/domain"
	"github.com/productbazar/bazar/internal/logger"
)

// DefaultDebounce spaces out scroll-sentinel signals before they turn into
// a LoadMore.
const DefaultDebounce = 300 * time.Millisecond

// Page is one fetched slice of the collection. Cursor may be nil when the
// upstream response carried no pagination block.
type Page[T any] struct {
	Items  []T
	Cursor *domain.Cursor
}

// Fetcher retrieves one page for the current filters and sort.
type Fetcher[T any] func(ctx context.Context, page, limit int, filters any, sort domain.Sort) (Page[T], error)

// State is a point-in-time snapshot of the controller.
type State[T any] struct {
	Items       []T
	Cursor      domain.Cursor
	Loading     bool
	LoadingMore bool
	Err         error
	Filters     any
	Sort        domain.Sort
}

// Controller is the reusable list state machine. All methods are safe for
// concurrent use; state transitions are serialised per controller.
type Controller[T any] struct {
	fetch    Fetcher[T]
	idOf     func(T) string
	log      logger.Logger
	limit    int
	debounce time.Duration

	mu          sync.Mutex
	items       []T
	cursor      domain.Cursor
	loading     bool
	loadingMore bool
	err         error
	filters     any
	sort        domain.Sort

	seq        uint64 // issue counter; responses not matching it are stale
	cancel     context.CancelFunc
	needsTimer *time.Timer
}

// New builds a controller. limit <= 0 falls back to 12.
func New[T any](fetch Fetcher[T], idOf func(T) string, limit int, log logger.Logger) *Controller[T] {
	if limit <= 0 {
		limit = 12
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Controller[T]{
		fetch:    fetch,
		idOf:     idOf,
		log:      log,
		limit:    limit,
		debounce: DefaultDebounce,
		cursor:   domain.Cursor{Page: 1, Limit: limit},
	}
}

// SetDebounce overrides the scroll-signal debounce interval.
func (c *Controller[T]) SetDebounce(d time.Duration) {
	c.mu.Lock()
	c.debounce = d
	c.mu.Unlock()
}

// State returns a snapshot. The items slice is copied; elements are shared.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return State[T]{
		Items:       items,
		Cursor:      c.cursor,
		Loading:     c.loading,
		LoadingMore: c.loadingMore,
		Err:         c.err,
		Filters:     c.filters,
		Sort:        c.sort,
	}
}

// Reset discards the current items, cancels any in-flight fetch for the old
// parameters, and fetches page 1 for the new ones. It blocks until its own
// fetch settles; a Reset that was overtaken by a newer one returns nil and
// leaves no trace in the state.
func (c *Controller[T]) Reset(ctx context.Context, filters any, sort domain.Sort) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	fctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.seq++
	seq := c.seq
	c.filters = filters
	c.sort = sort
	c.items = nil
	c.cursor = domain.Cursor{Page: 1, Limit: c.limit}
	c.loading = true
	c.loadingMore = false
	c.err = nil
	limit := c.limit
	c.mu.Unlock()

	page, err := c.fetch(fctx, 1, limit, filters, sort)
	return c.apply(seq, 1, page, err)
}

// LoadMore fetches the next page and appends it. It is a no-op while a fetch
// is running or when the cursor says there is nothing left.
func (c *Controller[T]) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.loading || c.loadingMore || !c.cursor.HasNextPage {
		c.mu.Unlock()
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	fctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.seq++
	seq := c.seq
	nextPage := c.cursor.Page + 1
	c.loadingMore = true
	filters, sort, limit := c.filters, c.sort, c.limit
	c.mu.Unlock()

	page, err := c.fetch(fctx, nextPage, limit, filters, sort)
	return c.apply(seq, nextPage, page, err)
}

// NeedMore is the scroll-sentinel entry point: bursts of signals collapse
// into a single LoadMore after the debounce interval.
func (c *Controller[T]) NeedMore(ctx context.Context) {
	c.mu.Lock()
	if c.needsTimer != nil {
		c.needsTimer.Stop()
	}
	d := c.debounce
	c.needsTimer = time.AfterFunc(d, func() {
		if err := c.LoadMore(ctx); err != nil && !apierr.Cancelled(err) {
			c.log.Warn("load more failed", logger.Error(err))
		}
	})
	c.mu.Unlock()
}

// ReplaceItem applies fn to the item matching id, in place, without a
// refetch. Reports whether a match was found.
func (c *Controller[T]) ReplaceItem(id string, fn func(*T)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.idOf(c.items[i]) == id {
			fn(&c.items[i])
			return true
		}
	}
	return false
}

// RemoveItem drops the item matching id. Reports whether a match was found.
func (c *Controller[T]) RemoveItem(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.idOf(c.items[i]) == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			if c.cursor.Total > 0 {
				c.cursor.Total--
			}
			return true
		}
	}
	return false
}

// Close aborts any in-flight fetch and pending scroll signal. The controller
// must not be used afterwards.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	if c.needsTimer != nil {
		c.needsTimer.Stop()
	}
	c.mu.Unlock()
}

// apply merges one settled fetch, unless a newer request has been issued in
// the meantime: stale responses are discarded outright, not reordered.
func (c *Controller[T]) apply(seq uint64, page int, result Page[T], err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		// Overtaken by a newer Reset/LoadMore. Whatever happened here must
		// not touch the state that request owns now.
		return nil
	}

	c.loading = false
	c.loadingMore = false

	if err != nil {
		if apierr.Cancelled(err) {
			// Caller withdrew: no error surfaced, items untouched.
			return err
		}
		c.err = err
		return err
	}
	c.err = nil

	if page == 1 {
		c.items = result.Items
	} else {
		seen := make(map[string]struct{}, len(c.items))
		for i := range c.items {
			seen[c.idOf(c.items[i])] = struct{}{}
		}
		for _, item := range result.Items {
			id := c.idOf(item)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			c.items = append(c.items, item)
		}
	}

	if result.Cursor != nil {
		c.cursor = *result.Cursor
	} else {
		c.cursor = domain.InferCursor(page, c.limit, len(result.Items))
	}
	return nil
}
