package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteKeepsInputOrder(t *testing.T) {
	pool := NewPool(4, func(_ context.Context, n int) (int, error) {
		time.Sleep(time.Duration(10-n) * time.Millisecond)
		return n * n, nil
	})

	tasks := pool.Execute(context.Background(), []int{1, 2, 3, 4, 5, 6, 7, 8, 9})

	require.Len(t, tasks, 9)
	for i, task := range tasks {
		assert.Equal(t, i+1, task.Input)
		assert.Equal(t, (i+1)*(i+1), task.Result)
		assert.NoError(t, task.Err)
	}
}

func TestExecuteIsolatesFailures(t *testing.T) {
	boom := errors.New("boom")
	pool := NewPool(2, func(_ context.Context, s string) (string, error) {
		if s == "bad" {
			return "", boom
		}
		return s + "!", nil
	})

	tasks := pool.Execute(context.Background(), []string{"a", "bad", "c"})

	assert.Equal(t, "a!", tasks[0].Result)
	assert.ErrorIs(t, tasks[1].Err, boom)
	assert.Equal(t, "c!", tasks[2].Result)
}

func TestExecuteRespectsLimit(t *testing.T) {
	var running, peak atomic.Int32
	pool := NewPool(3, func(_ context.Context, _ int) (struct{}, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return struct{}{}, nil
	})

	pool.Execute(context.Background(), make([]int, 20))

	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Positive(t, peak.Load())
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	pool := NewPool(2, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})

	tasks := pool.Execute(ctx, []int{1, 2, 3})

	assert.Zero(t, calls.Load())
	for _, task := range tasks {
		assert.ErrorIs(t, task.Err, context.Canceled)
	}
}

func TestBatch(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Batch([]int{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, [][]int{{1}, {2}}, Batch([]int{1, 2}, 0))
	assert.Nil(t, Batch([]int{}, 3))
}
