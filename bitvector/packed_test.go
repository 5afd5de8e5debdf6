package bitvector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedWidthBitArrayStraddle(t *testing.T) {
	for _, width := range []uint{1, 3, 7, 9, 17, 31, 63, 64} {
		a := NewFixedWidthBitArray(width, 20)
		vals := make([]uint64, 20)
		mask := loMask(uint64(width))
		for i := range vals {
			v := uint64(i*2654435761 + 12345) // arbitrary deterministic pattern
			vals[i] = v & mask
			a.Set(uint64(i), vals[i])
		}
		for i, want := range vals {
			assert.Equal(t, want, a.Get(uint64(i)), "width=%d i=%d", width, i)
		}
	}
}

func TestVariableWidthBitArray(t *testing.T) {
	widths := []uint{1, 5, 9, 33, 64, 2}
	vals := []uint64{1, 17, 300, 1 << 30, ^uint64(0), 3}
	b := NewVariableWidthBuilder()
	for i, w := range widths {
		b.Push(vals[i]&loMask(uint64(w)), w)
	}
	arr := b.End()
	assert.Equal(t, uint64(len(widths)), arr.Len())
	for i, w := range widths {
		assert.Equal(t, vals[i]&loMask(uint64(w)), arr.Get(uint64(i)), "i=%d", i)
		assert.Equal(t, w, arr.Width(uint64(i)))
	}
}
