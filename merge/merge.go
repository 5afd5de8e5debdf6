package merge

import (
	"container/heap"
	"io"

	"github.com/pkg/errors"
	"v.io/x/lib/vlog"

	"github.com/grailbio/gossamer/concurrent"
	"github.com/grailbio/gossamer/file"
	"github.com/grailbio/gossamer/graph"
)

// record is one decoded (edge, count) pair tagged with the run file it
// came from, used only inside the merge heap.
type record struct {
	edge  graph.Edge
	count uint32
	src   int
}

// prefetcher decodes one run file's records ahead of the merge loop's
// consumption, bounded by a small channel so a slow consumer still
// throttles a fast run file. Up to numThreads of these decode a record
// at the same time;
// the merge loop itself stays single-threaded since edges must be
// pushed to the graph.Builder in strict ascending order.
type prefetcher struct {
	ch  chan record
	err error
}

// stopSignal lets AsyncMerge unblock any prefetcher still trying to
// send once it has decided to return early (a read error on another
// run), so that deferred Wait doesn't hang waiting for a goroutine
// stuck on a full, now-unread channel.
type stopSignal chan struct{}

// AsyncMerge performs a k-way merge of the sorted, delta-coded run
// files named by parts into a single graph via a freshly constructed
// graph.Builder, summing the counts of any edge duplicated across
// runs. Up to numThreads run files are decoded concurrently ahead of
// the merge loop; the merge and builder pushes themselves are
// necessarily sequential, since they must happen in strict ascending
// edge order.
func AsyncMerge(factory file.Factory, parts []string, k uint64, asymmetric bool, numThreads int, graphName string) error {
	if numThreads <= 0 {
		numThreads = 1
	}
	if numThreads > len(parts) {
		numThreads = len(parts)
	}
	if numThreads == 0 {
		b := graph.NewBuilder(k, graphName, factory, asymmetric)
		return b.End()
	}

	readers := make([]*RunReader, len(parts))
	closers := make([]io.Closer, len(parts))
	for i, p := range parts {
		rc, err := factory.OpenRead(p)
		if err != nil {
			closeAll(closers)
			return errors.Wrapf(err, "merge.AsyncMerge: opening %s", p)
		}
		readers[i] = NewRunReader(rc)
		closers[i] = rc
	}
	defer closeAll(closers)

	stop := make(stopSignal)

	prefs := make([]*prefetcher, len(parts))
	sem := make(chan struct{}, numThreads)
	var group []func()
	for i := range parts {
		pf := &prefetcher{ch: make(chan record, 64)}
		prefs[i] = pf
		idx := i
		group = append(group, func() {
			runPrefetch(readers[idx], idx, pf, stop, sem)
		})
	}
	wait := concurrent.NewThreadGroup(len(group), func(i int) { group[i]() })
	defer func() {
		close(stop)
		wait.Wait()
	}()

	vlog.VI(1).Infof("merge.AsyncMerge: merging %d runs into %s with %d threads", len(parts), graphName, numThreads)
	b := graph.NewBuilder(k, graphName, factory, asymmetric)

	h := &mergeHeap{}
	heap.Init(h)
	for i, pf := range prefs {
		rec, ok := <-pf.ch
		if !ok {
			if pf.err != nil {
				return errors.Wrapf(pf.err, "merge.AsyncMerge: reading %s", parts[i])
			}
			continue
		}
		heap.Push(h, rec)
	}

	// Duplicates of top.edge can come from any run, including top's own
	// run (a single extracted read set may observe the same edge more
	// than once): refilling a run's next record immediately after
	// popping it, before re-checking the heap's new front, ensures a run
	// of 3+ repeats of the same edge (however they are distributed
	// across runs) folds into one count rather than emitting the edge
	// to the builder more than once.
	for h.Len() > 0 {
		top := heap.Pop(h).(record)
		count := uint64(top.count)
		if err := refill(prefs[top.src], h, parts[top.src]); err != nil {
			return err
		}
		for h.Len() > 0 && (*h)[0].edge.Equal(top.edge) {
			dup := heap.Pop(h).(record)
			count += uint64(dup.count)
			if err := refill(prefs[dup.src], h, parts[dup.src]); err != nil {
				return err
			}
		}
		if count > 0xffffffff {
			count = 0xffffffff
		}
		b.Push(top.edge, uint32(count))
	}

	return b.End()
}

// refill pulls the next record (if any) from src's prefetch channel
// and pushes it onto the heap.
func refill(pf *prefetcher, h *mergeHeap, part string) error {
	rec, ok := <-pf.ch
	if !ok {
		if pf.err != nil {
			return errors.Wrapf(pf.err, "merge.AsyncMerge: reading %s", part)
		}
		return nil
	}
	heap.Push(h, rec)
	return nil
}

func runPrefetch(r *RunReader, src int, pf *prefetcher, stop stopSignal, sem chan struct{}) {
	defer close(pf.ch)
	for {
		sem <- struct{}{}
		edge, count, err := r.Next()
		<-sem
		if err == io.EOF {
			return
		}
		if err != nil {
			pf.err = err
			return
		}
		select {
		case pf.ch <- record{edge: edge, count: count, src: src}:
		case <-stop:
			return
		}
	}
}

func closeAll(cs []io.Closer) {
	for _, c := range cs {
		if c != nil {
			c.Close()
		}
	}
}

// mergeHeap orders records by ascending edge value for the k-way merge.
type mergeHeap []record

func (h mergeHeap) Len() int            { return len(h) }
func (h mergeHeap) Less(i, j int) bool  { return h[i].edge.Less(h[j].edge) }
func (h mergeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x interface{}) { *h = append(*h, x.(record)) }
func (h *mergeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
