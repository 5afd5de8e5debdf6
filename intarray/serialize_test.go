package intarray

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntegerArraySaveLoadRoundTrip(t *testing.T) {
	for _, width := range []int{4, 8, 13, 32, 40} {
		a := NewIntegerArray(width, 10)
		for i := 0; i < 10; i++ {
			a.Set(i, uint64(i*3))
		}
		var buf bytes.Buffer
		assert.NoError(t, Save(&buf, width, a))

		got, err := Load(&buf)
		assert.NoError(t, err)
		assert.Equal(t, a.Len(), got.Len())
		for i := 0; i < 10; i++ {
			assert.Equal(t, a.Get(i), got.Get(i))
		}
	}
}

func TestStackedArraySaveLoadRoundTrip(t *testing.T) {
	s := NewStackedArray(96, 5)
	for i := 0; i < 5; i++ {
		s.Set(i, uint64(i), uint64(i)*100)
	}
	var buf bytes.Buffer
	assert.NoError(t, s.Save(&buf))

	got, err := LoadStacked(&buf)
	assert.NoError(t, err)
	for i := 0; i < 5; i++ {
		hi, lo := got.Get(i)
		assert.Equal(t, uint64(i), hi)
		assert.Equal(t, uint64(i)*100, lo)
	}
}
