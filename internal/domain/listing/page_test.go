package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage_ClampsAndDefaults(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    Page
	}{
		{"defaults total to one", 1, 0, Page{Current: 1, Total: 1}},
		{"negative total", 3, -4, Page{Current: 1, Total: 1}},
		{"current below range", 0, 5, Page{Current: 1, Total: 5}},
		{"current above range", 9, 5, Page{Current: 5, Total: 5}},
		{"in range", 2, 5, Page{Current: 2, Total: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPage(tt.current, tt.total))
		})
	}
}

func TestPage_Targets(t *testing.T) {
	first := NewPage(1, 3)
	assert.False(t, first.HasPrev())
	assert.True(t, first.HasNext())
	assert.Equal(t, 1, first.PrevTarget())
	assert.Equal(t, 2, first.NextTarget())

	last := NewPage(3, 3)
	assert.True(t, last.HasPrev())
	assert.False(t, last.HasNext())
	assert.Equal(t, 3, last.NextTarget())
	assert.Equal(t, 2, last.PrevTarget())
}

func TestRequestState_Predicates(t *testing.T) {
	assert.True(t, Idle().IsIdle())
	assert.True(t, RequestState{}.IsIdle())
	assert.True(t, Loading().IsLoading())
	assert.True(t, Succeeded().IsSuccess())

	failed := Failed("boom")
	assert.True(t, failed.IsError())
	assert.Equal(t, "boom", failed.Message)
}
