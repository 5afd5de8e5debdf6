// Package varbyte implements VariableByteArray, a three-tier packed
// storage for 32-bit multiplicities that are mostly small: one byte
// per edge for the common case, with sparse second and third tiers
// for the minority of edges whose count overflows into higher bytes.
package varbyte

import (
	"sync"

	"github.com/grailbio/gossamer/position"
	"github.com/grailbio/gossamer/sparse"

	"github.com/grailbio/base/log"
)

// maxCount is the largest representable multiplicity (24 bits); counts
// above this saturate.
const maxCount = 1<<24 - 1

// VariableByteArray answers Get(i) by combining the three tiers per
// spec: order0[i] | (present1[i] ? order1[rank1(i)]<<8 : 0) |
// (present2[rank1(i)] ? order2[rank2(rank1(i))]<<16 : 0).
type VariableByteArray struct {
	order0   []byte
	present1 *sparse.SparseArray
	order1   []byte
	present2 *sparse.SparseArray
	order2   []uint16
}

// Builder incrementally constructs a VariableByteArray from
// sequentially pushed counts, one per ascending edge index.
type Builder struct {
	i        uint64
	order0   []byte
	tier1Idx []uint64 // edge indices needing a second byte
	order1   []byte
	tier2Idx []uint64 // tier1 ranks needing a third tier
	order2   []uint16

	saturateOnce sync.Once
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// Push appends the multiplicity for the next ascending edge index,
// saturating (and logging once) if count exceeds the 24-bit domain.
func (b *Builder) Push(count uint32) {
	if count > maxCount {
		b.saturateOnce.Do(func() {
			log.Error.Printf("varbyte: multiplicity %d exceeds %d, saturating", count, maxCount)
		})
		count = maxCount
	}
	b.order0 = append(b.order0, byte(count))
	if count > 0xff {
		b.tier1Idx = append(b.tier1Idx, b.i)
		b.order1 = append(b.order1, byte(count>>8))
		if count > 0xffff {
			b.tier2Idx = append(b.tier2Idx, uint64(len(b.order1)-1))
			b.order2 = append(b.order2, uint16(count>>16))
		}
	}
	b.i++
}

// End finalizes the array.
func (b *Builder) End() *VariableByteArray {
	p1 := sparse.NewBuilder(8)
	for _, idx := range b.tier1Idx {
		p1.Push(position.FromUint64(idx))
	}
	p2 := sparse.NewBuilder(8)
	for _, idx := range b.tier2Idx {
		p2.Push(position.FromUint64(idx))
	}
	return &VariableByteArray{
		order0:   b.order0,
		present1: p1.End(),
		order1:   b.order1,
		present2: p2.End(),
		order2:   b.order2,
	}
}

// Len returns the number of stored counts.
func (a *VariableByteArray) Len() int { return len(a.order0) }

// Get returns the i-th multiplicity.
func (a *VariableByteArray) Get(i uint64) uint32 {
	v := uint32(a.order0[i])
	if !a.present1.Access(position.FromUint64(i)) {
		return v
	}
	r1 := a.present1.Rank(position.FromUint64(i))
	v |= uint32(a.order1[r1]) << 8
	if !a.present2.Access(position.FromUint64(r1)) {
		return v
	}
	r2 := a.present2.Rank(position.FromUint64(r1))
	v |= uint32(a.order2[r2]) << 16
	return v
}
