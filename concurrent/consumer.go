package concurrent

import "github.com/pkg/errors"

// DefaultBatchSize and DefaultMaxBatches set the backpressure bounds a
// BackgroundConsumer applies by default: producers block once
// DefaultMaxBatches batches of DefaultBatchSize items each are
// queued, so a slow consumer throttles fast producers instead of
// letting queued work grow without bound.
const (
	DefaultBatchSize  = 4096
	DefaultMaxBatches = 1024
)

// BackgroundConsumer feeds items pushed from a single producer
// goroutine (Push is not safe for concurrent use), batched, to a single
// consumer function running on its own goroutine — the shape `AsyncMerge`'s per-worker output needs to
// drain into a shared `graph.Builder` without every worker contending
// on the builder directly.
type BackgroundConsumer[T any] struct {
	batchSize int
	ch        chan []T
	done      chan error
	batch     []T
}

// NewBackgroundConsumer starts a goroutine that calls consume(batch)
// for every batch of up to batchSize items pushed via Push, in the
// order batches were queued. If maxBatches <= 0, DefaultMaxBatches is
// used; if batchSize <= 0, DefaultBatchSize is used.
func NewBackgroundConsumer[T any](batchSize, maxBatches int, consume func(batch []T) error) *BackgroundConsumer[T] {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if maxBatches <= 0 {
		maxBatches = DefaultMaxBatches
	}
	c := &BackgroundConsumer[T]{
		batchSize: batchSize,
		ch:        make(chan []T, maxBatches),
		done:      make(chan error, 1),
	}
	go func() {
		var firstErr error
		for batch := range c.ch {
			if firstErr != nil {
				continue // drain the channel so producers never block forever after a failure.
			}
			if err := consume(batch); err != nil {
				firstErr = err
			}
		}
		c.done <- firstErr
	}()
	return c
}

// Push enqueues v, flushing a full batch to the consumer goroutine.
// Push blocks if maxBatches batches are already queued.
func (c *BackgroundConsumer[T]) Push(v T) {
	c.batch = append(c.batch, v)
	if len(c.batch) >= c.batchSize {
		c.ch <- c.batch
		c.batch = nil
	}
}

// Close flushes any partial batch, waits for the consumer goroutine to
// drain the queue, and returns the first error it reported (if any).
func (c *BackgroundConsumer[T]) Close() error {
	if len(c.batch) > 0 {
		c.ch <- c.batch
		c.batch = nil
	}
	close(c.ch)
	if err := <-c.done; err != nil {
		return errors.Wrap(err, "concurrent.BackgroundConsumer")
	}
	return nil
}
