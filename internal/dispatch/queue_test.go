package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_DrainRunsInOrder(t *testing.T) {
	q := NewQueue()
	var got []int
	for i := range 3 {
		require.True(t, q.Post(func() { got = append(got, i) }))
	}

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 3, q.Drain())
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Equal(t, 0, q.Drain())
}

func TestQueue_RepostDeferredToNextDrain(t *testing.T) {
	q := NewQueue()
	ran := 0
	q.Post(func() {
		ran++
		q.Post(func() { ran++ })
	})

	assert.Equal(t, 1, q.Drain())
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, q.Drain())
	assert.Equal(t, 2, ran)
}

func TestQueue_PostAfterClose(t *testing.T) {
	q := NewQueue()
	q.Close()
	assert.False(t, q.Post(func() {}))
	assert.False(t, q.Post(nil))
}

func TestQueue_PanicRecovered(t *testing.T) {
	q := NewQueue()
	ran := false
	q.Post(func() { panic("boom") })
	q.Post(func() { ran = true })

	assert.NotPanics(t, func() { q.Drain() })
	assert.True(t, ran)
}

func TestQueue_RunFromManyGoroutines(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	// 只有 Run 所在协程修改 count
	count := 0
	go func() {
		q.Run(ctx)
		close(done)
	}()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				q.Post(func() { count++ })
			}
		}()
	}
	wg.Wait()

	finished := make(chan struct{})
	q.Post(func() { close(finished) })
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("queue did not run callbacks")
	}

	cancel()
	<-done
	assert.Equal(t, 100, count)
	assert.False(t, q.Post(func() {}))
}
