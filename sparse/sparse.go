// Package sparse implements SparseArray, an Elias-Fano encoded sorted
// set of 128-bit position.Position values, plus SparseArrayView, a
// lazily allocated logical-deletion overlay over one.
package sparse

import (
	"encoding/binary"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/gossamer/bitvector"
	"github.com/grailbio/gossamer/dense"
	"github.com/grailbio/gossamer/errs"
	"github.com/grailbio/gossamer/intarray"
	"github.com/grailbio/gossamer/position"
)

// QuantizeD chooses the low-bit width for an Elias-Fano encoding of M
// elements drawn from a domain of size N, rounded up to a multiple of
// 8 and clamped to [8,128].
func QuantizeD(n, m uint64) uint {
	if m == 0 {
		return 8
	}
	ratio := n / m
	d := uint(0)
	for (uint64(1) << d) < ratio {
		d++
	}
	d = (d + 7) &^ 7
	if d < 8 {
		d = 8
	}
	if d > 128 {
		d = 128
	}
	return d
}

// SparseArray is a static, sorted set of Position values stored as an
// Elias-Fano encoding: a unary-coded high-bit stream (one bit per
// element plus one zero closing each high bucket below the largest
// element's, empty buckets included) and a low-bit array
// holding each element's low D bits.
type SparseArray struct {
	d     uint
	count uint64
	high  *bitvector.WordyBitVector
	rank1 *dense.DenseRank
	d1    *dense.DenseSelect // select on 1-bits: locate element i's bucket
	d0    *dense.DenseSelect // select on 0-bits (inverted): locate bucket boundaries
	low   intarray.IntegerArray
	stack *intarray.StackedArray

	checksum uint64 // seahash over the low-bit stream, a build-integrity self-check
}

// Builder incrementally constructs a SparseArray from a stream of
// ascending Position values.
type Builder struct {
	d       uint
	lowVals []struct{ hi, lo uint64 }
	highPos []uint64
	i       uint64
}

// NewBuilder returns a Builder using low-bit width d (see QuantizeD),
// rounded up to a multiple of 8.
func NewBuilder(d uint) *Builder {
	d = (d + 7) &^ 7
	if d < 8 {
		d = 8
	}
	return &Builder{d: d}
}

func highOf(p position.Position, d uint) uint64 {
	h := p.Shr(d)
	if h.Hi != 0 {
		panic("sparse: high part does not fit in 64 bits; choose a larger D")
	}
	return h.Lo
}

func lowOf(p position.Position, d uint) (hi, lo uint64) {
	masked := p.And(position.Mask(d))
	return masked.Hi, masked.Lo
}

// Push appends a Position; positions must be pushed in non-decreasing
// order.
func (b *Builder) Push(p position.Position) {
	h := highOf(p, b.d)
	hi, lo := lowOf(p, b.d)
	b.highPos = append(b.highPos, h+b.i)
	b.lowVals = append(b.lowVals, struct{ hi, lo uint64 }{hi, lo})
	b.i++
}

// End finalizes the array.
func (b *Builder) End() *SparseArray {
	hb := bitvector.NewBuilder()
	for _, p := range b.highPos {
		hb.Push(p)
	}
	size := uint64(0)
	if len(b.highPos) > 0 {
		size = b.highPos[len(b.highPos)-1] + 1
	}
	high := hb.End(size)

	s := &SparseArray{
		d:     b.d,
		count: uint64(len(b.lowVals)),
		high:  high,
		rank1: dense.BuildDenseRank(high),
		d1:    dense.BuildDenseSelect(high, false),
		d0:    dense.BuildDenseSelect(high, true),
	}
	if b.d <= 64 {
		arr := intarray.NewIntegerArray(int(b.d), len(b.lowVals))
		for i, v := range b.lowVals {
			arr.Set(i, v.lo)
		}
		s.low = arr
	} else {
		st := intarray.NewStackedArray(int(b.d), len(b.lowVals))
		for i, v := range b.lowVals {
			st.Set(i, v.hi, v.lo)
		}
		s.stack = st
	}
	s.checksum = checksumLowValues(b.lowVals)
	return s
}

// checksumLowValues hashes the low-bit stream with seahash, giving a
// cheap build-integrity self-check independent of the packed storage
// layout (analogous to the teacher's CheckPanic invariant assertions).
func checksumLowValues(vals []struct{ hi, lo uint64 }) uint64 {
	buf := make([]byte, 16*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(buf[i*16:], v.hi)
		binary.LittleEndian.PutUint64(buf[i*16+8:], v.lo)
	}
	return seahash.Sum64(buf)
}

// VerifyChecksum recomputes the low-bit stream's seahash and compares
// it against the value captured at build time, raising
// errs.CorruptIndex on mismatch.
func (s *SparseArray) VerifyChecksum() error {
	vals := make([]struct{ hi, lo uint64 }, s.count)
	for i := range vals {
		vals[i].hi, vals[i].lo = s.lowValue(uint64(i))
	}
	if got := checksumLowValues(vals); got != s.checksum {
		return errs.CorruptIndex("sparse.SparseArray.low-bits")
	}
	return nil
}

// Count returns the number of stored elements.
func (s *SparseArray) Count() uint64 { return s.count }

// startIndex returns the number of elements whose high part is < bucket.
func (s *SparseArray) startIndex(bucket uint64) uint64 {
	if bucket == 0 {
		return 0
	}
	zeroPos := s.d0.Select(bucket - 1)
	return s.rank1.Rank(zeroPos)
}

func (s *SparseArray) lowValue(i uint64) (hi, lo uint64) {
	if s.stack != nil {
		return s.stack.Get(int(i))
	}
	return 0, s.low.Get(int(i))
}

func (s *SparseArray) bucketRange(bucket uint64) (start, end uint64) {
	return s.startIndex(bucket), s.startIndex(bucket + 1)
}

// lowerBound finds the index in [start,end) of the first stored
// element whose low part is >= (hi,lo).
func (s *SparseArray) lowerBound(start, end uint64, hi, lo uint64) uint64 {
	if s.stack != nil {
		return uint64(s.stack.LowerBound(int(start), int(end), hi, lo))
	}
	return uint64(s.low.LowerBound(int(start), int(end), lo))
}

// Rank returns the number of stored elements strictly less than p.
func (s *SparseArray) Rank(p position.Position) uint64 {
	bucket := highOf(p, s.d)
	hi, lo := lowOf(p, s.d)
	start, end := s.bucketRange(bucket)
	return s.lowerBound(start, end, hi, lo)
}

// Access reports whether p is stored in the array.
func (s *SparseArray) Access(p position.Position) bool {
	bucket := highOf(p, s.d)
	hi, lo := lowOf(p, s.d)
	start, end := s.bucketRange(bucket)
	idx := s.lowerBound(start, end, hi, lo)
	if idx >= end {
		return false
	}
	gotHi, gotLo := s.lowValue(idx)
	return gotHi == hi && gotLo == lo
}

// Select returns the i-th (0-indexed) stored Position.
func (s *SparseArray) Select(i uint64) position.Position {
	bitPos := s.d1.Select(i)
	h := bitPos - i
	hi, lo := s.lowValue(i)
	return position.FromUint64(h).Shl(s.d).Or(position.Position{Hi: hi, Lo: lo})
}

// RankPair computes Rank(p1) and Rank(p2) together, sharing bucket
// lookup work when p1 and p2 fall in the same high bucket.
func (s *SparseArray) RankPair(p1, p2 position.Position) (uint64, uint64) {
	b1, b2 := highOf(p1, s.d), highOf(p2, s.d)
	if b1 == b2 {
		hi1, lo1 := lowOf(p1, s.d)
		hi2, lo2 := lowOf(p2, s.d)
		start, end := s.bucketRange(b1)
		r1 := s.lowerBound(start, end, hi1, lo1)
		r2 := s.lowerBound(r1, end, hi2, lo2)
		return r1, r2
	}
	return s.Rank(p1), s.Rank(p2)
}

// SelectPair computes Select(i) and Select(j) together.
func (s *SparseArray) SelectPair(i, j uint64) (position.Position, position.Position) {
	return s.Select(i), s.Select(j)
}
