package listing

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	// ErrNoCredential is returned when no bearer credential is available; no fetch is issued.
	ErrNoCredential = errors.New("listing: no credential available")
	// ErrSuperseded is returned by a load whose result was discarded because a newer load started.
	ErrSuperseded = errors.New("listing: load superseded by a newer request")
	// ErrClosed is returned once the binder has been disposed.
	ErrClosed = errors.New("listing: binder closed")
	// ErrConfirmationRequired is returned by destructive actions that were not confirmed.
	ErrConfirmationRequired = errors.New("listing: action requires confirmation")
)

// TokenSource supplies the bearer credential guarding every fetch.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// Result is one fetched page.
type Result[T any] struct {
	Rows       []T
	TotalPages int
}

// FetchFunc loads one page of rows.
type FetchFunc[T any] func(ctx context.Context, page int) (Result[T], error)

// BinderOptions configures a Binder.
type BinderOptions[T any] struct {
	// Tokens guards fetches and actions. Nil means the data source needs no credential.
	Tokens TokenSource
	// Fetch is required.
	Fetch    FetchFunc[T]
	Columns  []Column[T]
	RowID    func(T) string
	PageSize int
	// Describe converts errors to user-facing text. Defaults to err.Error().
	Describe func(error) string
	Logger   *slog.Logger
}

// Binder owns the collection and request state of one list view. It is safe
// for concurrent use; when loads overlap, only the most recently started one
// may write state.
type Binder[T any] struct {
	opts BinderOptions[T]

	mu       sync.Mutex
	state    RequestState
	rows     []T
	rowsPage int
	notice   *Notice
	gen      uint64
	cancel   context.CancelFunc
	closed   bool
}

// NewBinder constructs a Binder in the idle state.
func NewBinder[T any](opts BinderOptions[T]) *Binder[T] {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Describe == nil {
		opts.Describe = func(err error) string { return err.Error() }
	}
	return &Binder[T]{opts: opts, state: Idle(), rowsPage: 1}
}

func (b *Binder[T]) hasCredential(ctx context.Context) bool {
	if b.opts.Tokens == nil {
		return true
	}
	_, ok := b.opts.Tokens.Token(ctx)
	return ok
}

// Load fetches page and replaces the collection with the result. It returns
// the total page count reported by the source. A failed fetch clears the
// collection and moves the state to error.
func (b *Binder[T]) Load(ctx context.Context, page int) (int, error) {
	if b.opts.Fetch == nil {
		return 0, errors.New("listing: no fetch function configured")
	}
	if !b.hasCredential(ctx) {
		return 0, ErrNoCredential
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return 0, ErrClosed
	}
	b.gen++
	gen := b.gen
	if b.cancel != nil {
		b.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.state = Loading()
	b.mu.Unlock()

	res, err := b.opts.Fetch(fetchCtx, max(page, 1))

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen || b.closed {
		cancel()
		return 0, ErrSuperseded
	}
	cancel()
	b.cancel = nil

	if err != nil {
		b.rows = nil
		b.state = Failed(b.opts.Describe(err))
		b.opts.Logger.WarnContext(ctx, "list fetch failed", "page", page, "error", err)
		return 0, err
	}

	b.rows = res.Rows
	b.rowsPage = max(page, 1)
	b.state = Succeeded()
	return max(res.TotalPages, 1), nil
}

// Mutate runs a row action. Destructive actions must be confirmed first.
// A failed action leaves the collection untouched and records an error notice.
func (b *Binder[T]) Mutate(ctx context.Context, a Action) error {
	if a.Run == nil {
		return errors.New("listing: action has no handler")
	}
	if a.RequiresConfirmation() && !a.Confirmed {
		return ErrConfirmationRequired
	}
	if !b.hasCredential(ctx) {
		return ErrNoCredential
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.notice = nil
	b.mu.Unlock()

	err := a.Run(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.notice = &Notice{Kind: NoticeError, Message: b.opts.Describe(err)}
		b.opts.Logger.WarnContext(ctx, "row action failed",
			"action", string(a.Kind), "id", a.ID, "error", err)
		return err
	}
	b.notice = &Notice{Kind: NoticeSuccess, Message: a.successMessage()}
	return nil
}

// State returns the current request state.
func (b *Binder[T]) State() RequestState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Rows returns a copy of the current collection.
func (b *Binder[T]) Rows() []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]T, len(b.rows))
	copy(out, b.rows)
	return out
}

// Notice returns the latest action notice, if any.
func (b *Binder[T]) Notice() *Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.notice == nil {
		return nil
	}
	n := *b.notice
	return &n
}

// DismissNotice clears the current notice.
func (b *Binder[T]) DismissNotice() {
	b.mu.Lock()
	b.notice = nil
	b.mu.Unlock()
}

// Table renders the current collection through the configured columns.
func (b *Binder[T]) Table() Table {
	b.mu.Lock()
	rows := b.rows
	page := b.rowsPage
	b.mu.Unlock()
	return RenderTable(rows, TableSpec[T]{
		Columns:  b.opts.Columns,
		RowID:    b.opts.RowID,
		Page:     page,
		PageSize: b.opts.PageSize,
	})
}

// Close disposes the binder. An in-flight fetch is canceled and its result ignored.
func (b *Binder[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}
