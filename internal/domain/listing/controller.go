package listing

import (
	"context"
	"errors"
	"sync"
)

// Controller is the sole writer of the current page. Each transition that
// changes the page triggers exactly one load through the binder; transitions
// that would not move (next on the last page, prev on the first) are no-ops.
type Controller[T any] struct {
	binder *Binder[T]

	mu   sync.Mutex
	page Page
}

// NewController starts at initial (floored at 1). Nothing is fetched until
// Mount or a transition is invoked.
func NewController[T any](b *Binder[T], initial int) *Controller[T] {
	initial = max(initial, 1)
	return &Controller[T]{binder: b, page: Page{Current: initial, Total: initial}}
}

// Page returns the current pagination position.
func (c *Controller[T]) Page() Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Mount performs the initial fetch for the current page.
func (c *Controller[T]) Mount(ctx context.Context) error {
	return c.load(ctx, c.Page().Current)
}

// Next moves forward one page.
func (c *Controller[T]) Next(ctx context.Context) error {
	return c.transition(ctx, Page.NextTarget)
}

// Prev moves back one page.
func (c *Controller[T]) Prev(ctx context.Context) error {
	return c.transition(ctx, Page.PrevTarget)
}

// Jump moves to page n, clamped into the known range.
func (c *Controller[T]) Jump(ctx context.Context, n int) error {
	return c.transition(ctx, func(p Page) int { return p.Clamp(n) })
}

// Reload refetches the current page.
func (c *Controller[T]) Reload(ctx context.Context) error {
	return c.load(ctx, c.Page().Current)
}

// Act runs a row action and, when it succeeds, refetches the current page so
// counts and page totals come from the server.
func (c *Controller[T]) Act(ctx context.Context, a Action) error {
	if err := c.binder.Mutate(ctx, a); err != nil {
		return err
	}
	return c.Reload(ctx)
}

func (c *Controller[T]) transition(ctx context.Context, target func(Page) int) error {
	c.mu.Lock()
	next := target(c.page)
	if next == c.page.Current {
		c.mu.Unlock()
		return nil
	}
	c.page.Current = next
	c.mu.Unlock()
	return c.load(ctx, next)
}

// load fetches page and folds the reported total back into the page. When
// the server reports fewer pages than requested (e.g. the last row of the
// last page was deleted), it clamps and fetches the last page once more.
func (c *Controller[T]) load(ctx context.Context, page int) error {
	for range 2 {
		total, err := c.binder.Load(ctx, page)
		if err != nil {
			if errors.Is(err, ErrSuperseded) {
				return nil
			}
			return err
		}

		c.mu.Lock()
		if c.page.Current != page {
			c.mu.Unlock()
			return nil
		}
		c.page = NewPage(page, total)
		clamped := c.page.Current
		c.mu.Unlock()

		if clamped == page {
			return nil
		}
		page = clamped
	}
	return nil
}

// View is an immutable snapshot of a list view.
type View[T any] struct {
	State  RequestState
	Rows   []T
	Page   Page
	Window Window
	Notice *Notice
	Table  Table
}

// Snapshot captures the binder and controller state for rendering.
func (c *Controller[T]) Snapshot() View[T] {
	page := c.Page()
	return View[T]{
		State:  c.binder.State(),
		Rows:   c.binder.Rows(),
		Page:   page,
		Window: NewWindow(page),
		Notice: c.binder.Notice(),
		Table:  c.binder.Table(),
	}
}

// Close disposes the underlying binder.
func (c *Controller[T]) Close() {
	c.binder.Close()
}
