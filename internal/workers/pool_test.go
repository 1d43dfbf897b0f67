package workers

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsTasks(t *testing.T) {
	p := New(3)
	defer p.Close()

	assert.Equal(t, 3, p.Size())

	var (
		count atomic.Int64
		wg    sync.WaitGroup
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(context.Background(), func() {
			defer wg.Done()
			count.Add(1)
		}))
	}

	wg.Wait()
	assert.Equal(t, int64(20), count.Load())
}

func TestPoolDefaultSize(t *testing.T) {
	p := New(0)
	defer p.Close()

	assert.GreaterOrEqual(t, p.Size(), 2)
	assert.Equal(t, DefaultSize(), p.Size())
}

func TestPoolSubmitAfterClose(t *testing.T) {
	p := New(2)
	p.Close()
	p.Close()
	p.Wait()

	err := p.Submit(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPoolSubmitCancelled(t *testing.T) {
	p := New(1)
	defer p.Close()

	block := make(chan struct{})
	defer close(block)

	require.NoError(t, p.Submit(context.Background(), func() { <-block }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.Submit(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
