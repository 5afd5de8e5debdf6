package varbyte

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariableByteArrayTiers(t *testing.T) {
	counts := []uint32{0, 1, 255, 256, 257, 65535, 65536, 1000000, 0xffffff}
	b := NewBuilder()
	for _, c := range counts {
		b.Push(c)
	}
	a := b.End()
	assert.Equal(t, len(counts), a.Len())
	for i, want := range counts {
		assert.Equal(t, want, a.Get(uint64(i)), "i=%d", i)
	}
}

func TestVariableByteArrayRandom(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	n := 2000
	counts := make([]uint32, n)
	for i := range counts {
		switch r.Intn(10) {
		case 0:
			counts[i] = uint32(r.Intn(1 << 24))
		case 1:
			counts[i] = uint32(r.Intn(1 << 16))
		default:
			counts[i] = uint32(r.Intn(256))
		}
	}
	b := NewBuilder()
	for _, c := range counts {
		b.Push(c)
	}
	a := b.End()
	for i, want := range counts {
		assert.Equal(t, want, a.Get(uint64(i)), "i=%d", i)
	}
}

func TestVariableByteArraySaturates(t *testing.T) {
	b := NewBuilder()
	b.Push(maxCount + 100)
	a := b.End()
	assert.Equal(t, uint32(maxCount), a.Get(0))
}

func TestVariableByteArrayAllSmall(t *testing.T) {
	b := NewBuilder()
	for i := 0; i < 10; i++ {
		b.Push(uint32(i))
	}
	a := b.End()
	for i := 0; i < 10; i++ {
		assert.Equal(t, uint32(i), a.Get(uint64(i)))
	}
}
