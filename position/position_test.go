package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShiftRoundTrip(t *testing.T) {
	p := Position{Hi: 0x0102030405060708, Lo: 0x1112131415161718}
	for n := uint(0); n < 128; n++ {
		shifted := p.Shl(n).Shr(n)
		masked := p.And(Mask(128 - n))
		assert.Equal(t, masked, shifted, "n=%d", n)
	}
}

func TestAddSub(t *testing.T) {
	a := Position{Hi: 0, Lo: ^uint64(0)}
	b := FromUint64(1)
	sum := a.Add(b)
	assert.Equal(t, Position{Hi: 1, Lo: 0}, sum)
	assert.Equal(t, a, sum.Sub(b))
}

func TestCmpOrdering(t *testing.T) {
	a := Position{Hi: 1, Lo: 0}
	b := Position{Hi: 0, Lo: ^uint64(0)}
	assert.True(t, b.Less(a))
	assert.Equal(t, 1, a.Cmp(b))
	assert.Equal(t, 0, a.Cmp(a))
}

func TestMask(t *testing.T) {
	assert.Equal(t, FromUint64(0xff), Mask(8))
	assert.Equal(t, Zero, Mask(0))
	assert.Equal(t, Not0, Mask(128))
}

// ReverseComplement of a reverse complement returns the original bases.
func TestReverseComplementInvolution(t *testing.T) {
	// Encode "ACGT" (A=0,C=1,G=2,T=3), MSB-first: A C G T -> 00 01 10 11
	k := 4
	p := FromUint64(0x1B) // 00 01 10 11
	rc := p.ReverseComplement(k)
	// reverse complement of ACGT is ACGT (palindrome check not guaranteed,
	// compute expected manually): complement(A)=T,complement(C)=G,
	// complement(G)=C,complement(T)=A, reversed: A C G T -> same actually:
	// bases in order A,C,G,T -> complements T,G,C,A -> reverse -> A,C,G,T
	assert.Equal(t, p, rc)
	assert.Equal(t, p, rc.ReverseComplement(k))
}

func TestCanonicalConsistentWithNormalize(t *testing.T) {
	p := FromUint64(12345)
	rc := FromUint64(98765)
	n := Normalize(p, rc)
	assert.True(t, n.Equal(p) || n.Equal(rc))
	if Canonical(p, rc) {
		assert.Equal(t, p, n)
	} else {
		assert.Equal(t, rc, n)
	}
}
