package listing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

type staticTokens struct{ token string }

func (s staticTokens) Token(context.Context) (string, bool) {
	return s.token, s.token != ""
}

type item struct {
	ID   string
	Name string
}

// fakeServer is an in-memory paginated collection that counts list calls.
type fakeServer struct {
	mu       sync.Mutex
	items    []item
	pageSize int
	calls    []int
	failWith error
}

func newFakeServer(n, pageSize int) *fakeServer {
	s := &fakeServer{pageSize: pageSize}
	for i := 1; i <= n; i++ {
		s.items = append(s.items, item{ID: fmt.Sprintf("id-%d", i), Name: fmt.Sprintf("item %d", i)})
	}
	return s
}

func (s *fakeServer) fetch(_ context.Context, page int) (Result[item], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, page)
	if s.failWith != nil {
		return Result[item]{}, s.failWith
	}
	total := (len(s.items) + s.pageSize - 1) / s.pageSize
	start := min((page-1)*s.pageSize, len(s.items))
	end := min(start+s.pageSize, len(s.items))
	return Result[item]{Rows: slices.Clone(s.items[start:end]), TotalPages: total}, nil
}

func (s *fakeServer) remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.IndexFunc(s.items, func(it item) bool { return it.ID == id })
	if idx < 0 {
		return errors.New("not found")
	}
	s.items = slices.Delete(s.items, idx, idx+1)
	return nil
}

func (s *fakeServer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeServer) lastCall() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return 0
	}
	return s.calls[len(s.calls)-1]
}

func itemColumns() []Column[item] {
	return []Column[item]{
		{Key: "sno", Label: "S.No.", Render: func(rc RowContext[item]) Cell {
			return Cell{Text: fmt.Sprint(rc.Sequence())}
		}},
		{Key: "name", Label: "Name", Render: func(rc RowContext[item]) Cell {
			return Cell{Text: rc.Row.Name}
		}},
	}
}

func newItemBinder(s *fakeServer, token string) *Binder[item] {
	return NewBinder(BinderOptions[item]{
		Tokens:   staticTokens{token: token},
		Fetch:    s.fetch,
		Columns:  itemColumns(),
		RowID:    func(it item) string { return it.ID },
		PageSize: s.pageSize,
	})
}
