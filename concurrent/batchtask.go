package concurrent

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// MultithreadedBatchTask runs a fixed-size batch of work items across
// t worker goroutines, each processing a disjoint slice of [0,n), with
// cooperative cancellation: if any worker returns an error, ctx is
// cancelled so peers can notice at their next progress check and
// unwind early, and the first error is what Run returns (the
// capture-and-rethrow contract `sortshard.go`'s `errors.Once` and
// `fusion/gene_db.go`'s fan-out give their callers).
type MultithreadedBatchTask struct {
	Threads int
}

// Run splits [0,n) into Threads contiguous chunks and calls fn(ctx,
// begin, end) on each from its own goroutine, waiting for all to
// finish. fn should check ctx.Err() periodically in long inner loops
// so a peer's failure is noticed promptly.
func (b *MultithreadedBatchTask) Run(ctx context.Context, n int, fn func(ctx context.Context, begin, end int) error) error {
	threads := b.Threads
	if threads <= 0 {
		threads = 1
	}
	if threads > n {
		threads = n
	}
	if threads == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	chunk := (n + threads - 1) / threads
	for t := 0; t < threads; t++ {
		begin := t * chunk
		end := begin + chunk
		if end > n {
			end = n
		}
		if begin >= end {
			continue
		}
		wg.Add(1)
		go func(begin, end int) {
			defer wg.Done()
			if err := fn(ctx, begin, end); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				mu.Unlock()
			}
		}(begin, end)
	}
	wg.Wait()
	if firstErr != nil {
		return errors.Wrap(firstErr, "concurrent.MultithreadedBatchTask")
	}
	return nil
}
