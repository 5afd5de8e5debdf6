package varbyte

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariableByteArraySaveLoadRoundTrip(t *testing.T) {
	counts := []uint32{0, 1, 255, 256, 257, 65535, 65536, 1000000, 0xffffff}
	b := NewBuilder()
	for _, c := range counts {
		b.Push(c)
	}
	a := b.End()

	var buf bytes.Buffer
	assert.NoError(t, a.Save(&buf))

	got, err := Load(&buf)
	assert.NoError(t, err)
	assert.Equal(t, a.Len(), got.Len())
	for i, want := range counts {
		assert.Equal(t, want, got.Get(uint64(i)), "i=%d", i)
	}
}
