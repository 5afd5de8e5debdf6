package merge

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/gossamer/graph"
	"github.com/grailbio/gossamer/position"
)

func TestRunWriterReaderRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 2, 127, 128, 16384, 1 << 40, 1<<40 + 5}
	var buf bytes.Buffer
	w := NewRunWriter(&buf)
	for i, v := range values {
		assert.NoError(t, w.Put(graph.NewEdge(position.FromUint64(v)), uint32(i+1)))
	}

	r := NewRunReader(&buf)
	for i, v := range values {
		e, c, err := r.Next()
		assert.NoError(t, err)
		assert.Equal(t, v, e.Value().Lo)
		assert.Equal(t, uint32(i+1), c)
	}
	_, _, err := r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestRunWriterReaderWideValues(t *testing.T) {
	// Exercise the Hi limb by using values that span a 128-bit
	// position, as graph edges for large k do.
	vals := []position.Position{
		{Hi: 0, Lo: 0},
		{Hi: 1, Lo: 0},
		{Hi: 1, Lo: 5},
		{Hi: 3, Lo: 1 << 63},
	}
	var buf bytes.Buffer
	w := NewRunWriter(&buf)
	for _, v := range vals {
		assert.NoError(t, w.Put(graph.NewEdge(v), 1))
	}
	r := NewRunReader(&buf)
	for _, v := range vals {
		e, _, err := r.Next()
		assert.NoError(t, err)
		assert.Equal(t, v, e.Value())
	}
}
