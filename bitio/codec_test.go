package bitio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGammaRoundTrip(t *testing.T) {
	for _, x := range wordFittingValues() {
		var w uint64
		n := GammaEncode(&w, 0, x)
		got, consumed := GammaDecode(w, 0)
		assert.Equal(t, x, got, "x=%d", x)
		assert.Equal(t, n, consumed, "x=%d", x)
	}
}

func TestDeltaRoundTrip(t *testing.T) {
	for _, x := range wordFittingValues() {
		var w uint64
		n := DeltaEncode(&w, 0, x)
		got, consumed := DeltaDecode(w, 0)
		assert.Equal(t, x, got, "x=%d", x)
		assert.Equal(t, n, consumed, "x=%d", x)
	}
}

func TestGammaAtOffset(t *testing.T) {
	var w uint64
	n1 := GammaEncode(&w, 0, 5)
	n2 := GammaEncode(&w, n1, 12)
	got1, c1 := GammaDecode(w, 0)
	assert.Equal(t, uint64(5), got1)
	assert.Equal(t, n1, c1)
	got2, c2 := GammaDecode(w, n1)
	assert.Equal(t, uint64(12), got2)
	assert.Equal(t, n2, c2)
}

func TestVByteRoundTrip(t *testing.T) {
	values := []uint64{1051466, 3, 226534, 0, 1, 127, 128, 255, 256, math.MaxUint64, math.MaxUint32, 1 << 56}
	var buf []byte
	for _, v := range values {
		buf = VByteEncode(buf, v)
	}
	for _, want := range values {
		got, n := VByteDecode(buf)
		assert.Greater(t, n, 0)
		assert.Equal(t, want, got)
		buf = buf[n:]
	}
	assert.Empty(t, buf)
}

func TestVByteSingleByteBoundary(t *testing.T) {
	buf := VByteEncode(nil, 127)
	assert.Len(t, buf, 1)
	assert.LessOrEqual(t, buf[0], byte(0x7f))

	buf = VByteEncode(nil, 128)
	assert.Greater(t, len(buf), 1)
}

func sampleValues() []uint64 {
	vals := []uint64{1, 2, 3, 4, 7, 8, 15, 16, 17, 255, 256, 1023, 1024, 65535, 65536}
	for shift := 17; shift < 64; shift += 7 {
		vals = append(vals, uint64(1)<<uint(shift))
		vals = append(vals, (uint64(1)<<uint(shift))+1)
	}
	vals = append(vals, math.MaxUint64)
	return vals
}

// wordFittingValues returns values whose gamma/delta code (2*floor(log2
// x)+1 bits, at most) fits within a single 64-bit accumulator word.
func wordFittingValues() []uint64 {
	vals := []uint64{1, 2, 3, 4, 7, 8, 15, 16, 17, 255, 256, 1023, 1024, 65535, 65536}
	for shift := 17; shift < 31; shift += 3 {
		vals = append(vals, uint64(1)<<uint(shift))
		vals = append(vals, (uint64(1)<<uint(shift))+1)
	}
	return vals
}
