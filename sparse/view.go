package sparse

import (
	"github.com/grailbio/gossamer/bitvector"
	"github.com/grailbio/gossamer/dense"
	"github.com/grailbio/gossamer/position"
)

// mask is a lazily allocated overlay recording, by rank into the
// underlying SparseArray, which elements have been logically deleted.
type mask struct {
	bits  *bitvector.WordyBitVector
	rank  *dense.DenseRank
	sel0  *dense.DenseSelect // select over 0-bits: kept-element lookup
	count uint64             // number of deleted (masked) ranks
}

// SparseArrayView overlays logical deletions on top of an immutable
// SparseArray without rewriting it: Rank, Access, and Select are
// translated through the deletion mask's own rank/select indexes.
type SparseArrayView struct {
	array *SparseArray
	mask  *mask // nil until the first Remove
}

// NewView returns a view with no deletions.
func NewView(array *SparseArray) *SparseArrayView {
	return &SparseArrayView{array: array}
}

// Count returns the number of elements visible through the view.
func (v *SparseArrayView) Count() uint64 {
	if v.mask == nil {
		return v.array.Count()
	}
	return v.array.Count() - v.mask.count
}

// Access reports whether p is present and not deleted.
func (v *SparseArrayView) Access(p position.Position) bool {
	if !v.array.Access(p) {
		return false
	}
	if v.mask == nil {
		return true
	}
	r := v.array.Rank(p)
	return !v.mask.bits.Get(r)
}

// Rank returns the number of visible (non-deleted) elements strictly
// less than p.
func (v *SparseArrayView) Rank(p position.Position) uint64 {
	arrayRank := v.array.Rank(p)
	if v.mask == nil {
		return arrayRank
	}
	return arrayRank - v.mask.rank.Rank(arrayRank)
}

// Select returns the i-th (0-indexed) visible Position.
func (v *SparseArrayView) Select(i uint64) position.Position {
	if v.mask == nil {
		return v.array.Select(i)
	}
	return v.array.Select(v.mask.sel0.Select(i))
}

// OriginalRank translates a view rank (an index among the
// non-deleted elements) into its rank in the underlying SparseArray,
// the index per-edge side arrays (e.g. varbyte.VariableByteArray) are
// aligned to.
func (v *SparseArrayView) OriginalRank(i uint64) uint64 {
	if v.mask == nil {
		return i
	}
	return v.mask.sel0.Select(i)
}

// Remove merges a new, ascending stream of ranks-to-delete (ranks into
// the underlying SparseArray) with any existing deletion mask in a
// single streaming pass, replacing the view's mask.
func (v *SparseArrayView) Remove(ranks []uint64) {
	merged := ranks
	if v.mask != nil {
		merged = mergeAscending(existingDeletedRanks(v), ranks)
	}
	b := bitvector.NewBuilder()
	for _, r := range merged {
		b.Push(r)
	}
	bits := b.End(v.array.Count())
	v.mask = &mask{
		bits:  bits,
		rank:  dense.BuildDenseRank(bits),
		sel0:  dense.BuildDenseSelect(bits, true),
		count: uint64(len(merged)),
	}
}

func existingDeletedRanks(v *SparseArrayView) []uint64 {
	var out []uint64
	it := v.mask.bits.NewIterator()
	for {
		p, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, p)
	}
	return out
}

func mergeAscending(a, b []uint64) []uint64 {
	out := make([]uint64, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
