// Package dense implements DenseRank, DenseSelect and DenseArray: a
// two-level rank index, a block-classified select index, and the
// composed static bitmap type built from both plus a
// bitvector.WordyBitVector.
package dense

import (
	"encoding/binary"
	"io"

	"github.com/grailbio/gossamer/bitvector"
	"github.com/grailbio/gossamer/errs"
)

const (
	largeBlockBits = 1 << 15
	smallBlockBits = 1 << 8
)

// DenseRank answers Rank(p) in O(1) via a two-level running-count
// index: one 64-bit count per 2^15-bit large block and one 16-bit
// count per 2^8-bit small block, relative to its enclosing large
// block.
type DenseRank struct {
	v     *bitvector.WordyBitVector
	large []uint64
	small []uint16
}

// BuildDenseRank constructs the rank index over v.
func BuildDenseRank(v *bitvector.WordyBitVector) *DenseRank {
	size := v.Size()
	nLarge := size/largeBlockBits + 2
	nSmall := size/smallBlockBits + 2
	r := &DenseRank{v: v, large: make([]uint64, nLarge), small: make([]uint16, nSmall)}

	var total uint64
	var withinLarge uint64
	for p := uint64(0); p < size; p += smallBlockBits {
		if p%largeBlockBits == 0 {
			r.large[p/largeBlockBits] = total
			withinLarge = 0
		}
		r.small[p/smallBlockBits] = uint16(withinLarge)
		end := p + smallBlockBits
		if end > size {
			end = size
		}
		cnt := v.PopcountRange(p, end)
		total += cnt
		withinLarge += cnt
	}
	// Sentinel entries covering p == size exactly, only needed when size
	// falls exactly on a block boundary (otherwise the loop above
	// already recorded that block's starting count).
	if size%largeBlockBits == 0 {
		if li := size / largeBlockBits; li < uint64(len(r.large)) {
			r.large[li] = total
		}
		withinLarge = 0
	}
	if size%smallBlockBits == 0 {
		if sj := size / smallBlockBits; sj < uint64(len(r.small)) {
			r.small[sj] = uint16(withinLarge)
		}
	}
	return r
}

// Rank returns the number of set bits at positions < p.
func (r *DenseRank) Rank(p uint64) uint64 {
	li := p / largeBlockBits
	sj := p / smallBlockBits
	blockStart := sj * smallBlockBits
	return r.large[li] + uint64(r.small[sj]) + r.v.PopcountRange(blockStart, p)
}

// blockKind tags how a DenseSelect block's interior is encoded,
// chosen at build time from the block's position range.
type blockKind uint8

const (
	kindSmall blockKind = iota
	kindIntermediate
	kindLarge
)

const (
	selectBlockBits = 1 << 13 // matching positions per select block
	sampleRate      = 64
)

type selectBlock struct {
	kind    blockKind
	anchor  uint64
	small   []uint16 // kindSmall: offsets from anchor, one per sampleRate-th bit
	interm  []uint32 // kindIntermediate: offsets from anchor
	large   []uint64 // kindLarge: absolute positions, one per bit in block
}

// DenseSelect answers Select(rank) by locating the containing block
// (one master entry per 2^13 matching bits), then dispatching on how
// that block's interior is encoded depending on its position range.
// InvertSense flips matching bits from 1s to 0s, used by the deletion
// overlay's select-on-zero.
type DenseSelect struct {
	v           *bitvector.WordyBitVector
	blocks      []selectBlock
	invertSense bool
	count       uint64
}

// BuildDenseSelect constructs the select index over v. When
// invertSense is true, Select answers queries over 0-bits instead of
// 1-bits.
func BuildDenseSelect(v *bitvector.WordyBitVector, invertSense bool) *DenseSelect {
	s := &DenseSelect{v: v, invertSense: invertSense}
	it := v.NewIterator()
	var positions []uint64
	if !invertSense {
		for {
			p, ok := it.Next()
			if !ok {
				break
			}
			positions = append(positions, p)
		}
	} else {
		set := map[uint64]bool{}
		for {
			p, ok := it.Next()
			if !ok {
				break
			}
			set[p] = true
		}
		for p := uint64(0); p < v.Size(); p++ {
			if !set[p] {
				positions = append(positions, p)
			}
		}
	}
	s.count = uint64(len(positions))
	for start := 0; start < len(positions); start += selectBlockBits {
		end := start + selectBlockBits
		if end > len(positions) {
			end = len(positions)
		}
		s.blocks = append(s.blocks, buildBlock(positions[start:end]))
	}
	return s
}

func buildBlock(positions []uint64) selectBlock {
	anchor := positions[0]
	rng := positions[len(positions)-1] - anchor
	var b selectBlock
	b.anchor = anchor
	switch {
	case rng < 1<<16:
		b.kind = kindSmall
		for i := 0; i < len(positions); i += sampleRate {
			b.small = append(b.small, uint16(positions[i]-anchor))
		}
	case rng < 1<<24:
		b.kind = kindIntermediate
		for i := 0; i < len(positions); i += sampleRate {
			b.interm = append(b.interm, uint32(positions[i]-anchor))
		}
	default:
		b.kind = kindLarge
		b.large = append([]uint64(nil), positions...)
	}
	return b
}

// Select returns the position of the rank-th (0-indexed) matching bit,
// or v.Size() if out of range.
func (s *DenseSelect) Select(rank uint64) uint64 {
	if rank >= s.count {
		return s.v.Size()
	}
	blockIdx := rank / selectBlockBits
	within := rank % selectBlockBits
	b := s.blocks[blockIdx]
	sense := !s.invertSense

	switch b.kind {
	case kindLarge:
		return b.large[within]
	case kindSmall, kindIntermediate:
		sampleIdx := within / sampleRate
		residual := within % sampleRate
		var samplePos uint64
		if b.kind == kindSmall {
			samplePos = b.anchor + uint64(b.small[sampleIdx])
		} else {
			samplePos = b.anchor + uint64(b.interm[sampleIdx])
		}
		if residual == 0 {
			return samplePos
		}
		return s.v.SelectFrom(sense, samplePos+1, residual-1)
	}
	panic("dense: unreachable block kind")
}

// Count returns the number of matching bits indexed.
func (s *DenseSelect) Count() uint64 { return s.count }

// Header is the 8-byte little-endian version tag shared by every
// persisted artefact, plus whatever trailing fields a given structure
// needs.
type Header struct {
	Version uint64
	Size    uint64
}

// DenseRank's on-disk version tag (spec-assigned).
const VersionDenseRank uint64 = 2011071201

// DenseSelect's on-disk version tag (spec-assigned).
const VersionDenseSelect uint64 = 2012092701

// WriteHeader writes the version tag followed by Size, little-endian.
func WriteHeader(w io.Writer, h Header) error {
	return binary.Write(w, binary.LittleEndian, h)
}

// ReadHeader reads and validates a header against expected, returning
// errs.VersionMismatch on a tag mismatch.
func ReadHeader(r io.Reader, expected uint64, where string) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return h, errs.IOError(where, err)
	}
	if h.Version != expected {
		return h, errs.VersionMismatch(where, expected, h.Version)
	}
	return h, nil
}

// DenseArray composes a WordyBitVector with a DenseSelect and a
// DenseRank over the same bits, giving O(1) access/rank/select on a
// static bitmap.
type DenseArray struct {
	bits   *bitvector.WordyBitVector
	rank   *DenseRank
	select_ *DenseSelect
}

// BuildDenseArray constructs a DenseArray from a finished
// WordyBitVector.
func BuildDenseArray(v *bitvector.WordyBitVector) *DenseArray {
	return &DenseArray{
		bits:    v,
		rank:    BuildDenseRank(v),
		select_: BuildDenseSelect(v, false),
	}
}

// Size returns the logical bit count.
func (a *DenseArray) Size() uint64 { return a.bits.Size() }

// Get returns the bit at position p.
func (a *DenseArray) Get(p uint64) bool { return a.bits.Get(p) }

// Rank returns the number of set bits at positions < p.
func (a *DenseArray) Rank(p uint64) uint64 { return a.rank.Rank(p) }

// Select returns the position of the rank-th (0-indexed) set bit.
func (a *DenseArray) Select(rank uint64) uint64 { return a.select_.Select(rank) }

// Count returns the total number of set bits.
func (a *DenseArray) Count() uint64 { return a.select_.Count() }
