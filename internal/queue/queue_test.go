package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Seconds int
	Verb    string
}

func TestQueue_New(t *testing.T) {
	q := New[sample]()
	require.NotNil(t, q)
	assert.True(t, q.Empty())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_PushPop(t *testing.T) {
	q := New[sample]()

	q.Push(sample{Seconds: 12, Verb: "Impact"})
	q.Push(sample{Seconds: 11}, sample{Seconds: 10})
	assert.Equal(t, 3, q.Len())

	assert.Equal(t, 12, q.Pop().Seconds)
	assert.Equal(t, 11, q.Pop().Seconds)
	assert.Equal(t, 10, q.Pop().Seconds)
	assert.Equal(t, sample{}, q.Pop(), "empty queue pops the zero value")
}

func TestQueue_GetAndEmpty(t *testing.T) {
	q := New[int]()
	q.Push(1, 2, 3)

	items := q.GetAndEmpty()

	assert.Equal(t, []int{1, 2, 3}, items)
	assert.True(t, q.Empty())

	// the returned slice is not shared with later pushes
	q.Push(9)
	assert.Equal(t, []int{1, 2, 3}, items)
}

func TestQueue_Bounded(t *testing.T) {
	tests := []struct {
		name        string
		limit       int
		push        []int
		want        []int
		wantDropped uint64
	}{
		{name: "under limit", limit: 3, push: []int{1, 2}, want: []int{1, 2}},
		{name: "at limit", limit: 3, push: []int{1, 2, 3}, want: []int{1, 2, 3}},
		{name: "keeps newest", limit: 3, push: []int{1, 2, 3, 4, 5}, want: []int{3, 4, 5}, wantDropped: 2},
		{name: "zero is unbounded", limit: 0, push: []int{1, 2, 3, 4}, want: []int{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewBounded[int](tt.limit)
			for _, v := range tt.push {
				q.Push(v)
			}
			assert.Equal(t, tt.wantDropped, q.Dropped())
			assert.Equal(t, tt.want, q.GetAndEmpty())
		})
	}
}

func TestQueue_BoundedBulkPush(t *testing.T) {
	q := NewBounded[int](2)
	q.Push(1, 2, 3, 4)

	assert.Equal(t, uint64(2), q.Dropped())
	assert.Equal(t, []int{3, 4}, q.GetAndEmpty())
}

func TestQueue_Concurrent(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(n*100 + j)
			}
		}(i)
	}

	var drained int
	var mu sync.Mutex
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := len(q.GetAndEmpty())
			mu.Lock()
			drained += n
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, drained+q.Len())
}
