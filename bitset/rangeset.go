package bitset

import "sort"

// RangeSet is a sorted, disjoint union of half-open [start,end) integer
// ranges, represented as a flat sequence of alternating boundary
// endpoints (start, end, start, end, ...), in the style of
// interval.EndpointIndex generalized from int32 genomic coordinates to
// uint64 ranks.
type RangeSet struct {
	endpoints []uint64
}

// NewRangeSet returns an empty RangeSet.
func NewRangeSet() *RangeSet { return &RangeSet{} }

// Add inserts [start,end) into the set, coalescing it with any
// overlapping or adjacent existing ranges.
func (s *RangeSet) Add(start, end uint64) {
	if start >= end {
		return
	}
	// lo: index of the first range whose end is >= start (candidate for
	// merging from the left).
	lo := sort.Search(len(s.endpoints)/2, func(i int) bool {
		return s.endpoints[2*i+1] >= start
	})
	// hi: index one past the last range whose start is <= end (candidate
	// for merging from the right).
	hi := sort.Search(len(s.endpoints)/2, func(i int) bool {
		return s.endpoints[2*i] > end
	})
	if lo < hi {
		if s.endpoints[2*lo] < start {
			start = s.endpoints[2*lo]
		}
		if s.endpoints[2*hi-1] > end {
			end = s.endpoints[2*hi-1]
		}
	}
	merged := make([]uint64, 0, len(s.endpoints)-2*(hi-lo)+2)
	merged = append(merged, s.endpoints[:2*lo]...)
	merged = append(merged, start, end)
	merged = append(merged, s.endpoints[2*hi:]...)
	s.endpoints = merged
}

// AddPoint is shorthand for Add(p, p+1).
func (s *RangeSet) AddPoint(p uint64) { s.Add(p, p+1) }

// Contains reports whether p falls within some stored range.
func (s *RangeSet) Contains(p uint64) bool {
	i := sort.Search(len(s.endpoints)/2, func(i int) bool {
		return s.endpoints[2*i+1] > p
	})
	return i < len(s.endpoints)/2 && s.endpoints[2*i] <= p
}

// Len returns the number of disjoint ranges currently stored.
func (s *RangeSet) Len() int { return len(s.endpoints) / 2 }

// Ranges returns the disjoint ranges in ascending order.
func (s *RangeSet) Ranges() [][2]uint64 {
	out := make([][2]uint64, 0, s.Len())
	for i := 0; i < len(s.endpoints); i += 2 {
		out = append(out, [2]uint64{s.endpoints[i], s.endpoints[i+1]})
	}
	return out
}

// Points returns every individual integer covered by the set, in
// ascending order. Intended for modest total coverage (e.g. streaming
// deletion-rank merges), not for dense, large-range sets.
func (s *RangeSet) Points() []uint64 {
	var out []uint64
	for _, r := range s.Ranges() {
		for p := r[0]; p < r[1]; p++ {
			out = append(out, p)
		}
	}
	return out
}
