// Package rrr implements a 15-bit RRR (Raman-Raman-Rao) enumerative
// coded bitmap: each 15-bit block is stored as its population class
// (4 bits) plus its ordinal within the C(15,class) enumeration of
// same-population blocks. Superblocks every 2^10 blocks cache
// cumulative rank and bit-offset sums so that Rank/Select only need to
// scan within one superblock.
package rrr

import (
	"math/bits"

	"github.com/grailbio/gossamer/bitvector"
)

const (
	blockBits      = 15
	blocksPerSuper = 1 << 10
)

var chooseTable [blockBits + 1][blockBits + 1]uint32

func init() {
	for n := 0; n <= blockBits; n++ {
		chooseTable[n][0] = 1
		for k := 1; k <= n; k++ {
			chooseTable[n][k] = chooseTable[n-1][k-1]
			if k <= n-1 {
				chooseTable[n][k] += chooseTable[n-1][k]
			}
		}
	}
}

func choose(n, k int) uint32 {
	if k < 0 || k > n || n < 0 || n > blockBits {
		return 0
	}
	return chooseTable[n][k]
}

// numCodeBits returns the number of bits needed to store an ordinal in
// [0, C(blockBits,k)).
func numCodeBits(k int) uint {
	c := choose(blockBits, k)
	if c <= 1 {
		return 0
	}
	return uint(bits.Len32(c - 1))
}

// encodeBlock returns the enumerative ordinal of the k-bit-populated
// 15-bit value x within the C(15,k) combinations of that population.
func encodeBlock(x uint32, k int) uint64 {
	var ordinal uint64
	remaining := k
	for i := blockBits - 1; i >= 0 && remaining > 0; i-- {
		if x&(1<<uint(i)) != 0 {
			if i >= remaining {
				ordinal += uint64(choose(i, remaining))
			}
			remaining--
		}
	}
	return ordinal
}

// decodeBlock reconstructs the 15-bit value with population k from its
// enumerative ordinal.
func decodeBlock(ordinal uint64, k int) uint32 {
	var x uint32
	remaining := k
	rem := ordinal
	for i := blockBits - 1; i >= 0 && remaining > 0; i-- {
		var c uint64
		if i >= remaining {
			c = uint64(choose(i, remaining))
		}
		if rem >= c {
			rem -= c
			x |= 1 << uint(i)
			remaining--
		}
	}
	return x
}

// RRRArray is a static bitmap stored via 15-bit enumerative coding.
type RRRArray struct {
	size    uint64
	classes *bitvector.FixedWidthBitArray // 4-bit class per block
	offsets *bitvector.VariableWidthBitArray

	superClassSum  []uint64 // cumulative rank at start of each superblock
	superOffsetSum []uint64 // cumulative offset-stream bit count at start of each superblock
}

// Builder incrementally constructs an RRRArray from a sequence of
// ascending set-bit positions, like bitvector.Builder.
type Builder struct {
	size      uint64
	positions []uint64
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// Push records a set bit at position p. Positions must be pushed in
// non-decreasing order.
func (b *Builder) Push(p uint64) { b.positions = append(b.positions, p) }

// End finalizes the array at exactly size bits.
func (b *Builder) End(size uint64) *RRRArray {
	nBlocks := (size + blockBits - 1) / blockBits
	classesArr := bitvector.NewFixedWidthBitArray(4, nBlocks)
	offBuilder := bitvector.NewVariableWidthBuilder()

	set := make(map[uint64]bool, len(b.positions))
	for _, p := range b.positions {
		set[p] = true
	}

	nSuper := nBlocks/blocksPerSuper + 2
	r := &RRRArray{
		size:           size,
		superClassSum:  make([]uint64, nSuper),
		superOffsetSum: make([]uint64, nSuper),
	}

	var rank, offsetBits uint64
	for bi := uint64(0); bi < nBlocks; bi++ {
		if bi%blocksPerSuper == 0 {
			r.superClassSum[bi/blocksPerSuper] = rank
			r.superOffsetSum[bi/blocksPerSuper] = offsetBits
		}
		var x uint32
		base := bi * blockBits
		k := 0
		for j := 0; j < blockBits; j++ {
			p := base + uint64(j)
			if p >= size {
				break
			}
			if set[p] {
				x |= 1 << uint(j)
				k++
			}
		}
		classesArr.Set(bi, uint64(k))
		ord := encodeBlock(x, k)
		width := numCodeBits(k)
		offBuilder.Push(ord, maxu(width, 1))
		rank += uint64(k)
		offsetBits += uint64(maxu(width, 1))
	}
	if si := nBlocks / blocksPerSuper; si < uint64(len(r.superClassSum)) {
		r.superClassSum[si] = rank
		r.superOffsetSum[si] = offsetBits
	}

	r.classes = classesArr
	r.offsets = offBuilder.End()
	return r
}

func maxu(a, b uint) uint {
	if a > b {
		return a
	}
	return b
}

func (r *RRRArray) blockPattern(bi uint64) (x uint32, k int) {
	k = int(r.classes.Get(bi))
	ord := r.offsets.Get(bi)
	return decodeBlock(ord, k), k
}

// Size returns the logical bit count.
func (r *RRRArray) Size() uint64 { return r.size }

// Access returns the bit at position p.
func (r *RRRArray) Access(p uint64) bool {
	bi := p / blockBits
	x, _ := r.blockPattern(bi)
	return x&(1<<uint(p%blockBits)) != 0
}

// Rank returns the number of set bits at positions < p.
func (r *RRRArray) Rank(p uint64) uint64 {
	bi := p / blockBits
	si := bi / blocksPerSuper
	rank := r.superClassSum[si]
	for b := si * blocksPerSuper; b < bi; b++ {
		rank += uint64(r.classes.Get(b))
	}
	local := p % blockBits
	if local == 0 {
		return rank
	}
	x, _ := r.blockPattern(bi)
	rank += uint64(bits.OnesCount32(x & ((1 << uint(local)) - 1)))
	return rank
}

// Select returns the position of the rank-th (0-indexed) set bit, or
// Size() if out of range.
func (r *RRRArray) Select(rank uint64) uint64 {
	nSuper := len(r.superClassSum)
	si := 0
	for si+1 < nSuper && r.superClassSum[si+1] <= rank {
		si++
	}
	remaining := rank - r.superClassSum[si]
	nBlocks := (r.size + blockBits - 1) / blockBits
	for b := uint64(si) * blocksPerSuper; b < nBlocks; b++ {
		k := uint64(r.classes.Get(b))
		if remaining < k {
			x, _ := r.blockPattern(b)
			for j := 0; j < blockBits; j++ {
				if x&(1<<uint(j)) != 0 {
					if remaining == 0 {
						return b*blockBits + uint64(j)
					}
					remaining--
				}
			}
		}
		remaining -= k
	}
	return r.size
}
