package bitio

import "math/bits"

// DeltaEncode appends the delta code of x (x>=1) to the accumulator word
// *w at bit offset "at", returning the number of bits written. The delta
// code of x is Gamma(1+floor(log2(x))) followed by the low
// floor(log2(x)) bits of x.
func DeltaEncode(w *uint64, at uint, x uint64) uint {
	if x == 0 {
		panic("bitio: DeltaEncode(0) is undefined")
	}
	n := uint(bits.Len64(x)) - 1
	gammaLen := GammaEncode(w, at, uint64(n+1))
	if n > 0 {
		low := x &^ (uint64(1) << n)
		*w |= low << (at + gammaLen)
	}
	return gammaLen + n
}

// DeltaDecode decodes a single delta-coded value starting at bit offset
// "at" of w, returning the value and the number of bits consumed.
func DeltaDecode(w uint64, at uint) (x uint64, consumed uint) {
	np1, gammaLen := GammaDecode(w, at)
	if np1 == 0 {
		// Sentinel: remaining bits are all zero (padding past the last
		// encoded value).
		return 0, gammaLen
	}
	n := uint(np1) - 1
	if n == 0 {
		return 1, gammaLen
	}
	frac := (w >> (at + gammaLen)) & ((uint64(1) << n) - 1)
	return (uint64(1) << n) | frac, gammaLen + n
}
