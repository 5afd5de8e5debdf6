// Package merge implements AsyncMerge: combining many sorted,
// delta-coded edge-count run files (as written by an external sort
// over extracted k-mers) into a single graph.Builder stream, summing
// the multiplicities of any edge that appears in more than one run.
package merge

import (
	"bufio"
	"io"

	"github.com/grailbio/gossamer/bitio"
	"github.com/grailbio/gossamer/graph"
	"github.com/grailbio/gossamer/position"
)

// RunWriter appends (edge, count) pairs to an underlying writer in the
// wire format AsyncMerge's readers expect: each edge is stored as a
// delta from the previous edge written (zero for the first), its two
// 64-bit limbs each VByte-coded low-limb-first, followed by the
// VByte-coded count. Pairs must be pushed in ascending edge order.
type RunWriter struct {
	w    io.Writer
	buf  []byte
	prev position.Position
}

// NewRunWriter returns a RunWriter appending to w.
func NewRunWriter(w io.Writer) *RunWriter {
	return &RunWriter{w: w}
}

// Put appends the next (edge, count) pair. Edges must be non-decreasing
// across calls.
func (rw *RunWriter) Put(edge graph.Edge, count uint32) error {
	v := edge.Value()
	d := v.Sub(rw.prev)
	rw.buf = rw.buf[:0]
	rw.buf = bitio.VByteEncode(rw.buf, d.Lo)
	rw.buf = bitio.VByteEncode(rw.buf, d.Hi)
	rw.buf = bitio.VByteEncode(rw.buf, uint64(count))
	if _, err := rw.w.Write(rw.buf); err != nil {
		return err
	}
	rw.prev = v
	return nil
}

// RunReader reads back a stream written by RunWriter, reconstructing
// each edge's absolute value by accumulating deltas.
type RunReader struct {
	r    *bufio.Reader
	prev position.Position
}

// NewRunReader returns a RunReader over r.
func NewRunReader(r io.Reader) *RunReader {
	return &RunReader{r: bufio.NewReader(r)}
}

// Next returns the next (edge, count) pair, or io.EOF once the stream
// is exhausted cleanly (between records; a truncated record is a
// distinct I/O error).
func (rr *RunReader) Next() (graph.Edge, uint32, error) {
	lo, err := rr.decodeVByte(true)
	if err != nil {
		return graph.Edge{}, 0, err
	}
	hi, err := rr.decodeVByte(false)
	if err != nil {
		return graph.Edge{}, 0, err
	}
	count, err := rr.decodeVByte(false)
	if err != nil {
		return graph.Edge{}, 0, err
	}
	v := rr.prev.Add(position.Position{Lo: lo, Hi: hi})
	rr.prev = v
	return graph.NewEdge(v), uint32(count), nil
}

// decodeVByte reads a single VByte-coded value. first distinguishes
// a clean end-of-stream (returned as io.EOF, only possible before any
// byte of a new record has been consumed) from a truncated record
// (io.ErrUnexpectedEOF).
func (rr *RunReader) decodeVByte(first bool) (uint64, error) {
	lead, err := rr.r.ReadByte()
	if err != nil {
		if first && err == io.EOF {
			return 0, io.EOF
		}
		return 0, io.ErrUnexpectedEOF
	}
	n := 0
	for b := byte(0x80); n < 8 && lead&b != 0; b >>= 1 {
		n++
	}
	rest := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(rr.r, rest); err != nil {
			return 0, io.ErrUnexpectedEOF
		}
	}
	x, consumed := bitio.VByteDecode(append([]byte{lead}, rest...))
	if consumed == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	return x, nil
}
