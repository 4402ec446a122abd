package listing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinder_NoCredentialStaysIdle(t *testing.T) {
	srv := newFakeServer(25, 10)
	b := newItemBinder(srv, "")

	_, err := b.Load(context.Background(), 1)

	require.ErrorIs(t, err, ErrNoCredential)
	assert.Equal(t, 0, srv.callCount(), "no list call may be issued without a credential")
	assert.True(t, b.State().IsIdle())
	assert.Empty(t, b.Rows())
}

func TestBinder_LoadSuccess(t *testing.T) {
	srv := newFakeServer(25, 10)
	b := newItemBinder(srv, "tok")

	total, err := b.Load(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.True(t, b.State().IsSuccess())
	require.Len(t, b.Rows(), 10)
	assert.Equal(t, "id-11", b.Rows()[0].ID)

	table := b.Table()
	require.Len(t, table.Headers, 2)
	assert.Equal(t, "S.No.", table.Headers[0].Label)
	assert.Equal(t, "11", table.Rows[0].Cells[0].Text, "sequence numbers continue across pages")
	assert.Equal(t, "id-11", table.Rows[0].ID)
}

func TestBinder_LoadFailureClearsRows(t *testing.T) {
	srv := newFakeServer(25, 10)
	b := newItemBinder(srv, "tok")
	_, err := b.Load(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, b.Rows())

	srv.failWith = errors.New("upstream exploded")
	_, err = b.Load(context.Background(), 2)

	require.Error(t, err)
	state := b.State()
	assert.True(t, state.IsError(), "state must not be left at loading")
	assert.Equal(t, "upstream exploded", state.Message)
	assert.Empty(t, b.Rows())
	assert.True(t, b.Table().Empty())
}

func TestBinder_DescribeOverridesMessage(t *testing.T) {
	srv := newFakeServer(5, 10)
	srv.failWith = errors.New("dial tcp 10.0.0.1:443: connect: refused")
	b := NewBinder(BinderOptions[item]{
		Fetch:    srv.fetch,
		Describe: func(error) string { return "Unable to reach the API." },
	})

	_, err := b.Load(context.Background(), 1)

	require.Error(t, err)
	assert.Equal(t, "Unable to reach the API.", b.State().Message)
}

func TestBinder_ZeroTotalDefaultsToOne(t *testing.T) {
	b := NewBinder(BinderOptions[item]{
		Fetch: func(context.Context, int) (Result[item], error) {
			return Result[item]{Rows: []item{{ID: "a"}}}, nil
		},
	})

	total, err := b.Load(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestBinder_LaterLoadSupersedesEarlier(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	b := NewBinder(BinderOptions[item]{
		Fetch: func(ctx context.Context, page int) (Result[item], error) {
			if page == 1 {
				once.Do(func() { close(started) })
				select {
				case <-release:
					return Result[item]{Rows: []item{{ID: "stale"}}, TotalPages: 2}, nil
				case <-ctx.Done():
					return Result[item]{}, ctx.Err()
				}
			}
			return Result[item]{Rows: []item{{ID: "fresh"}}, TotalPages: 2}, nil
		},
	})

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = b.Load(context.Background(), 1)
	}()
	<-started

	_, err := b.Load(context.Background(), 2)
	require.NoError(t, err)
	close(release)
	wg.Wait()

	require.ErrorIs(t, firstErr, ErrSuperseded)
	require.Len(t, b.Rows(), 1)
	assert.Equal(t, "fresh", b.Rows()[0].ID)
	assert.True(t, b.State().IsSuccess())
}

func TestBinder_CloseDiscardsInFlight(t *testing.T) {
	started := make(chan struct{})
	b := NewBinder(BinderOptions[item]{
		Fetch: func(ctx context.Context, _ int) (Result[item], error) {
			close(started)
			<-ctx.Done()
			return Result[item]{}, ctx.Err()
		},
	})

	done := make(chan error, 1)
	go func() {
		_, err := b.Load(context.Background(), 1)
		done <- err
	}()
	<-started
	b.Close()

	require.ErrorIs(t, <-done, ErrSuperseded)
	_, err := b.Load(context.Background(), 1)
	require.ErrorIs(t, err, ErrClosed)
}

func TestBinder_MutateRequiresConfirmationForDelete(t *testing.T) {
	srv := newFakeServer(3, 10)
	b := newItemBinder(srv, "tok")
	called := false

	err := b.Mutate(context.Background(), Action{
		Kind: ActionDelete,
		ID:   "id-1",
		Run:  func(context.Context) error { called = true; return nil },
	})

	require.ErrorIs(t, err, ErrConfirmationRequired)
	assert.False(t, called, "delete must not fire before confirmation")
	assert.Nil(t, b.Notice())
}

func TestBinder_MutateFailureKeepsRows(t *testing.T) {
	srv := newFakeServer(3, 10)
	b := newItemBinder(srv, "tok")
	_, err := b.Load(context.Background(), 1)
	require.NoError(t, err)

	err = b.Mutate(context.Background(), Action{
		Kind: ActionToggleStatus,
		ID:   "id-2",
		Run:  func(context.Context) error { return errors.New("status rejected") },
	})

	require.Error(t, err)
	assert.Len(t, b.Rows(), 3)
	require.NotNil(t, b.Notice())
	assert.Equal(t, NoticeError, b.Notice().Kind)
	assert.Equal(t, "status rejected", b.Notice().Message)

	b.DismissNotice()
	assert.Nil(t, b.Notice())
}

func TestBinder_MutateWithoutCredential(t *testing.T) {
	b := newItemBinder(newFakeServer(1, 10), "")
	called := false

	err := b.Mutate(context.Background(), Action{
		Kind: ActionEdit,
		Run:  func(context.Context) error { called = true; return nil },
	})

	require.ErrorIs(t, err, ErrNoCredential)
	assert.False(t, called)
}
