package extsort

import (
	"github.com/biogo/store/llrb"

	"github.com/grailbio/gossamer/file"
)

// merger k-way merges a set of sorted run readers using a binary
// search tree as a tournament tree: the smallest leaf is always the
// tree's minimum, so repeatedly reading DeleteMin/Insert keeps the
// merge order correct in amortized better-than-heap time when the
// same leaf stays on top across many records (mirrors
// internalMergeShards' use of an llrb.Tree as a merge tree).
type merger[T any] struct {
	readers []*runReader[T]
	less    Less[T]
}

func newMerger[T any](factory file.Factory, runs []string, codec Codec[T], less Less[T]) (*merger[T], error) {
	readers := make([]*runReader[T], 0, len(runs))
	for _, name := range runs {
		r, err := openRun(factory, name, codec)
		if err != nil {
			return nil, err
		}
		readers = append(readers, r)
	}
	return &merger[T]{readers: readers, less: less}, nil
}

// mergeLeaf adapts a runReader into an llrb.Comparable, breaking ties
// by run sequence number so the merge is stable across equal keys.
type mergeLeaf[T any] struct {
	seq    int
	reader *runReader[T]
	less   Less[T]
}

func (l *mergeLeaf[T]) Compare(other llrb.Comparable) int {
	o := other.(*mergeLeaf[T])
	a, b := l.reader.key(), o.reader.key()
	switch {
	case l.less(a, b):
		return -1
	case l.less(b, a):
		return 1
	default:
		return l.seq - o.seq
	}
}

// drain merges every reader's stream in sorted order into dest,
// coalescing is left to the caller (extsort is a generic merge; edge
// coalescing lives in graph/merge which layer T-specific semantics on
// top).
func (m *merger[T]) drain(dest Dest[T]) error {
	tree := llrb.Tree{}
	for i, r := range m.readers {
		if !r.done() {
			tree.Insert(&mergeLeaf[T]{seq: i, reader: r, less: m.less})
		}
	}
	for tree.Len() > 0 {
		var top *mergeLeaf[T]
		tree.Do(func(item llrb.Comparable) bool {
			top = item.(*mergeLeaf[T])
			return false
		})
		if err := dest.Push(top.reader.key()); err != nil {
			return err
		}
		top.reader.next()
		tree.DeleteMin()
		if !top.reader.done() {
			tree.Insert(top)
		}
	}
	return nil
}
