// Package concurrent collects the small concurrency primitives the
// external-memory pipeline builds on: an atomic counter, a spinlock
// for short critical sections, a joinable goroutine group, a
// cooperatively cancellable batch task runner, and a bounded
// producer/consumer channel wrapper. These mirror the ad-hoc
// goroutine/channel/WaitGroup fan-out `cmd/bio-fusion/main.go` and
// `fusion/gene_db.go` use directly, factored into reusable pieces.
package concurrent

import (
	"runtime"
	"sync/atomic"
)

// Atomic wraps a uint64 accessed only through sync/atomic, for
// counters shared across worker goroutines (records processed,
// errors seen) where a mutex would be overkill.
type Atomic struct {
	v uint64
}

// Add adds delta and returns the new value.
func (a *Atomic) Add(delta uint64) uint64 { return atomic.AddUint64(&a.v, delta) }

// Load returns the current value.
func (a *Atomic) Load() uint64 { return atomic.LoadUint64(&a.v) }

// Store sets the value unconditionally.
func (a *Atomic) Store(v uint64) { atomic.StoreUint64(&a.v, v) }

// CompareAndSwap atomically sets the value to new if it is currently
// old, reporting whether it did so.
func (a *Atomic) CompareAndSwap(old, new uint64) bool {
	return atomic.CompareAndSwapUint64(&a.v, old, new)
}

// Spinlock is a CAS-based mutual-exclusion lock for critical sections
// short enough that blocking on a channel or sync.Mutex's futex would
// cost more than busy-waiting with a scheduler yield between
// attempts.
type Spinlock struct {
	state uint32
}

// Lock spins until the lock is acquired, yielding the goroutine's
// timeslice between attempts so a single spinning goroutine cannot
// starve the holder on a single-core GOMAXPROCS.
func (s *Spinlock) Lock() {
	for !atomic.CompareAndSwapUint32(&s.state, 0, 1) {
		runtime.Gosched()
	}
}

// Unlock releases the lock.
func (s *Spinlock) Unlock() {
	atomic.StoreUint32(&s.state, 0)
}

// TryLock attempts to acquire the lock without spinning, reporting
// whether it succeeded.
func (s *Spinlock) TryLock() bool {
	return atomic.CompareAndSwapUint32(&s.state, 0, 1)
}
