package extsort

import (
	"github.com/grailbio/gossamer/file"
)

// ExternalVarPushSorter is the streaming push-mode counterpart of
// ExternalSort for fixed-size T: since every element encodes to the
// same number of bytes, the spill threshold is a flat item count
// rather than a running byte-size estimate, letting Push skip the
// per-item Encode-for-sizing call ExternalSort needs for
// variable-size T.
type ExternalVarPushSorter[T any] struct {
	inner      *ExternalSort[T]
	itemBudget int
	count      int
}

// NewExternalVarPushSorter returns a sorter that spills a run every
// itemBudget pushed values.
func NewExternalVarPushSorter[T any](factory file.Factory, codec Codec[T], less Less[T], itemBudget int) *ExternalVarPushSorter[T] {
	return &ExternalVarPushSorter[T]{
		inner:      NewExternalSort(factory, codec, less, 1<<62), // byte budget disabled; count-gated below
		itemBudget: itemBudget,
	}
}

// Push buffers v, spilling a sorted run once itemBudget values have
// accumulated.
func (s *ExternalVarPushSorter[T]) Push(v T) error {
	s.inner.buf = append(s.inner.buf, v)
	s.count++
	if s.count >= s.itemBudget {
		if err := s.inner.spill(); err != nil {
			return err
		}
		s.count = 0
	}
	return nil
}

// RunCount reports the number of runs spilled so far.
func (s *ExternalVarPushSorter[T]) RunCount() int { return s.inner.RunCount() }

// Finish spills any remainder and merges every run into dest.
func (s *ExternalVarPushSorter[T]) Finish(dest Dest[T]) error {
	return s.inner.Finish(dest)
}
