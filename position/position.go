// Package position implements the 128-bit unsigned integer used
// throughout gossamer as the address space for de Bruijn graph edges and
// nodes. A Position carries no sign; ordering is the natural big-endian
// 128-bit order (the high word is most significant), which is the order
// used as the sort key across the whole external-memory pipeline.
package position

import (
	"github.com/minio/highwayhash"
)

// Rank is a 64-bit non-negative count of set positions.
type Rank = uint64

// Position is an unsigned 128-bit integer, stored as two 64-bit words.
type Position struct {
	Hi, Lo uint64
}

// Zero is the additive identity.
var Zero = Position{}

// FromUint64 builds a Position from a plain 64-bit value.
func FromUint64(v uint64) Position { return Position{Lo: v} }

// Add returns p+q, wrapping modulo 2^128.
func (p Position) Add(q Position) Position {
	lo := p.Lo + q.Lo
	hi := p.Hi + q.Hi
	if lo < p.Lo { // carry
		hi++
	}
	return Position{Hi: hi, Lo: lo}
}

// Sub returns p-q, wrapping modulo 2^128.
func (p Position) Sub(q Position) Position {
	lo := p.Lo - q.Lo
	hi := p.Hi - q.Hi
	if p.Lo < q.Lo { // borrow
		hi--
	}
	return Position{Hi: hi, Lo: lo}
}

// Shl returns p<<n for 0<=n<128.
func (p Position) Shl(n uint) Position {
	switch {
	case n == 0:
		return p
	case n >= 128:
		return Zero
	case n >= 64:
		return Position{Hi: p.Lo << (n - 64), Lo: 0}
	default:
		return Position{Hi: (p.Hi << n) | (p.Lo >> (64 - n)), Lo: p.Lo << n}
	}
}

// Shr returns p>>n (logical) for 0<=n<128.
func (p Position) Shr(n uint) Position {
	switch {
	case n == 0:
		return p
	case n >= 128:
		return Zero
	case n >= 64:
		return Position{Hi: 0, Lo: p.Hi >> (n - 64)}
	default:
		return Position{Hi: p.Hi >> n, Lo: (p.Lo >> n) | (p.Hi << (64 - n))}
	}
}

// And returns the bitwise AND of p and q.
func (p Position) And(q Position) Position {
	return Position{Hi: p.Hi & q.Hi, Lo: p.Lo & q.Lo}
}

// Or returns the bitwise OR of p and q.
func (p Position) Or(q Position) Position {
	return Position{Hi: p.Hi | q.Hi, Lo: p.Lo | q.Lo}
}

// Xor returns the bitwise XOR of p and q.
func (p Position) Xor(q Position) Position {
	return Position{Hi: p.Hi ^ q.Hi, Lo: p.Lo ^ q.Lo}
}

// Not returns the bitwise complement of p.
func (p Position) Not() Position {
	return Position{Hi: ^p.Hi, Lo: ^p.Lo}
}

// Mask returns a Position with the low n bits set (0<=n<=128).
func Mask(n uint) Position {
	return Not0.Shr(128 - n)
}

// Not0 is the all-ones Position, used as the seed for Mask.
var Not0 = Position{Hi: ^uint64(0), Lo: ^uint64(0)}

// Cmp returns -1, 0, or 1 as p is less than, equal to, or greater than q,
// using the natural (hi-word-most-significant) total order.
func (p Position) Cmp(q Position) int {
	if p.Hi != q.Hi {
		if p.Hi < q.Hi {
			return -1
		}
		return 1
	}
	if p.Lo != q.Lo {
		if p.Lo < q.Lo {
			return -1
		}
		return 1
	}
	return 0
}

// Less reports whether p orders strictly before q.
func (p Position) Less(q Position) bool { return p.Cmp(q) < 0 }

// Equal reports whether p and q are bit-identical.
func (p Position) Equal(q Position) bool { return p.Hi == q.Hi && p.Lo == q.Lo }

// IsZero reports whether p is the zero position.
func (p Position) IsZero() bool { return p.Hi == 0 && p.Lo == 0 }

// baseComplement maps a packed 2-bit base to its Watson-Crick complement:
// A(0)<->T(3), C(1)<->G(2).
func baseComplement(b uint64) uint64 { return b ^ 3 }

// ReverseComplement treats the low 2*k bits of p as k packed 2-bit DNA
// bases (MSB-first within that window) and returns the position with
// those bases reverse-complemented; all other bits are zeroed.
func (p Position) ReverseComplement(k int) Position {
	var out Position
	for i := 0; i < k; i++ {
		shift := uint(2 * i)
		base := p.Shr(shift).And(Mask(2)).Lo
		rc := baseComplement(base)
		// The i-th base from the low end maps to the (k-1-i)-th base from
		// the low end in the output.
		destShift := uint(2 * (k - 1 - i))
		out = out.Or(FromUint64(rc).Shl(destShift))
	}
	return out
}

// hashKey is a fixed highwayhash key; the hash is used only for internal
// tie-breaking (canonical-form comparison), not as a security primitive,
// so a fixed key is fine.
var hashKey = make([]byte, 32)

// Hash returns a 64-bit hash of p, used by the canonical-form ordering
// (hash(p) < hash(rc(p))) described in the graph's data model.
func (p Position) Hash() uint64 {
	var buf [16]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(p.Lo >> (8 * i))
		buf[8+i] = byte(p.Hi >> (8 * i))
	}
	return highwayhash.Sum64(buf[:], hashKey)
}

// Canonical reports whether p is the canonical representative (over a
// k-bit reverse-complement rc) of {p, rc}: hash(p) < hash(rc), or the
// hashes are equal and rc >= p.
func Canonical(p, rc Position) bool {
	hp, hrc := p.Hash(), rc.Hash()
	if hp != hrc {
		return hp < hrc
	}
	return !rc.Less(p)
}

// Normalize returns the canonical representative of {p, rc}.
func Normalize(p, rc Position) Position {
	if Canonical(p, rc) {
		return p
	}
	return rc
}
