package concurrent

import (
	"sync"

	"github.com/pkg/errors"
)

// ThreadGroup runs a fixed number of joinable worker goroutines, in
// the style of the wg/go-func pairs `processFASTQ` and
// `generateCandidates` hand-roll in cmd/bio-fusion/main.go, factored
// into a reusable helper.
type ThreadGroup struct {
	wg sync.WaitGroup

	mu   sync.Mutex
	errs []error
}

// NewThreadGroup starts n goroutines, each running fn(i) for its
// index i in [0,n).
func NewThreadGroup(n int, fn func(i int)) *ThreadGroup {
	g := &ThreadGroup{}
	g.wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer g.wg.Done()
			fn(i)
		}()
	}
	return g
}

// NewThreadGroupErr is like NewThreadGroup, but fn may return an
// error; every worker's error is collected and available from Wait.
func NewThreadGroupErr(n int, fn func(i int) error) *ThreadGroup {
	g := &ThreadGroup{}
	g.wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer g.wg.Done()
			if err := fn(i); err != nil {
				g.mu.Lock()
				g.errs = append(g.errs, err)
				g.mu.Unlock()
			}
		}()
	}
	return g
}

// Wait blocks until every worker has returned, then returns the first
// error any worker reported (if any), wrapped with the count of
// errors seen when there was more than one.
func (g *ThreadGroup) Wait() error {
	g.wg.Wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.errs) == 0 {
		return nil
	}
	if len(g.errs) == 1 {
		return g.errs[0]
	}
	return errors.Wrapf(g.errs[0], "%d workers failed, first error", len(g.errs))
}
