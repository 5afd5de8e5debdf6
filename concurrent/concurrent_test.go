package concurrent

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestAtomic(t *testing.T) {
	var a Atomic
	assert.Equal(t, uint64(5), a.Add(5))
	assert.Equal(t, uint64(5), a.Load())
	a.Store(10)
	assert.Equal(t, uint64(10), a.Load())
	assert.True(t, a.CompareAndSwap(10, 20))
	assert.False(t, a.CompareAndSwap(10, 30))
	assert.Equal(t, uint64(20), a.Load())
}

func TestAtomicConcurrentAdd(t *testing.T) {
	var a Atomic
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				a.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(10000), a.Load())
}

func TestSpinlockMutualExclusion(t *testing.T) {
	var lock Spinlock
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				lock.Lock()
				counter++
				lock.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10000, counter)
}

func TestSpinlockTryLock(t *testing.T) {
	var lock Spinlock
	assert.True(t, lock.TryLock())
	assert.False(t, lock.TryLock())
	lock.Unlock()
	assert.True(t, lock.TryLock())
}

func TestThreadGroup(t *testing.T) {
	var sum Atomic
	g := NewThreadGroup(10, func(i int) { sum.Add(uint64(i)) })
	assert.NoError(t, g.Wait())
	assert.Equal(t, uint64(45), sum.Load())
}

func TestThreadGroupErrCapturesFirstError(t *testing.T) {
	g := NewThreadGroupErr(5, func(i int) error {
		if i == 2 {
			return errors.New("boom")
		}
		return nil
	})
	err := g.Wait()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestMultithreadedBatchTaskSplitsRange(t *testing.T) {
	const n = 97
	var seen [n]Atomic
	task := MultithreadedBatchTask{Threads: 8}
	err := task.Run(context.Background(), n, func(ctx context.Context, begin, end int) error {
		for i := begin; i < end; i++ {
			seen[i].Add(1)
		}
		return nil
	})
	assert.NoError(t, err)
	for i := 0; i < n; i++ {
		assert.Equal(t, uint64(1), seen[i].Load(), "index %d", i)
	}
}

func TestMultithreadedBatchTaskCancelsPeersOnError(t *testing.T) {
	task := MultithreadedBatchTask{Threads: 4}
	err := task.Run(context.Background(), 4, func(ctx context.Context, begin, end int) error {
		if begin == 1 {
			return errors.New("worker failed")
		}
		<-ctx.Done()
		return ctx.Err()
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "worker failed")
}

func TestBackgroundConsumerBatchesAndFlushes(t *testing.T) {
	var mu sync.Mutex
	var received []int
	c := NewBackgroundConsumer[int](4, 8, func(batch []int) error {
		mu.Lock()
		received = append(received, batch...)
		mu.Unlock()
		return nil
	})
	for i := 0; i < 10; i++ {
		c.Push(i)
	}
	assert.NoError(t, c.Close())
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, received)
}

func TestBackgroundConsumerPropagatesError(t *testing.T) {
	c := NewBackgroundConsumer[int](2, 4, func(batch []int) error {
		return errors.New("consume failed")
	})
	c.Push(1)
	c.Push(2)
	err := c.Close()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "consume failed")
}
