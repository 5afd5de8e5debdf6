package bitvector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildFromPositions(size uint64, positions []uint64) *WordyBitVector {
	b := NewBuilder()
	for _, p := range positions {
		b.Push(p)
	}
	return b.End(size)
}

func TestWordyGetRank(t *testing.T) {
	positions := []uint64{0, 3, 64, 65, 127, 128, 1000}
	v := buildFromPositions(1200, positions)
	set := map[uint64]bool{}
	for _, p := range positions {
		set[p] = true
	}
	var rank uint64
	for p := uint64(0); p < 1200; p++ {
		assert.Equal(t, set[p], v.Get(p), "p=%d", p)
		assert.Equal(t, rank, v.Rank(p), "p=%d", p)
		if set[p] {
			rank++
		}
	}
}

func TestWordySelectOnesAndZeros(t *testing.T) {
	positions := []uint64{1, 5, 9, 70, 130, 500}
	v := buildFromPositions(600, positions)
	for i, p := range positions {
		assert.Equal(t, p, v.Select(true, uint64(i)))
	}
	// Select among zero-bits: build the complement set manually.
	set := map[uint64]bool{}
	for _, p := range positions {
		set[p] = true
	}
	var zeros []uint64
	for p := uint64(0); p < 600; p++ {
		if !set[p] {
			zeros = append(zeros, p)
		}
	}
	for i, p := range zeros {
		if i > 20 {
			break
		}
		assert.Equal(t, p, v.Select(false, uint64(i)))
	}
}

func TestWordyIteratorAscending(t *testing.T) {
	positions := []uint64{2, 3, 64, 200, 201, 202, 511}
	v := buildFromPositions(512, positions)
	it := v.NewIterator()
	var got []uint64
	for {
		p, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, p)
	}
	assert.Equal(t, positions, got)
}

func TestWordyPopcountRangeBoundary(t *testing.T) {
	positions := []uint64{63, 64, 65, 127, 128}
	v := buildFromPositions(256, positions)
	assert.Equal(t, uint64(5), v.PopcountRange(0, 256))
	assert.Equal(t, uint64(1), v.PopcountRange(63, 64))
	assert.Equal(t, uint64(3), v.PopcountRange(64, 128))
}
