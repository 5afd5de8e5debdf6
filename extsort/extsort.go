// Package extsort implements the external (disk-backed) sort family:
// a byte-budgeted run generator with indirect in-memory sort plus
// tournament-tree merge (ExternalSort), a variable-length radix
// partitioner (ExternalBufferSort), and a streaming push-mode
// counterpart for fixed-size records (ExternalVarPushSorter). Run
// files are snappy-compressed, mirroring the sortshard run format the
// BAM sorter spills to disk during external merge sort.
package extsort

import (
	"encoding/binary"
	"io/ioutil"
	"sort"
	"strconv"
	"sync/atomic"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"v.io/x/lib/vlog"

	"github.com/grailbio/gossamer/file"
)

// Codec frames a value of type T to and from a byte slice for on-disk
// run storage.
type Codec[T any] interface {
	Encode(v T) []byte
	Decode(b []byte) T
}

// Less reports whether a sorts before b.
type Less[T any] func(a, b T) bool

// Dest is the push-only sink every member of the ExternalSort family
// drains into; none of them ever materializes the whole result in
// memory.
type Dest[T any] interface {
	Push(v T) error
}

// SliceDest collects pushed values into a slice, for tests and small
// results.
type SliceDest[T any] struct{ Items []T }

// Push appends v.
func (d *SliceDest[T]) Push(v T) error {
	d.Items = append(d.Items, v)
	return nil
}

// writeRun snappy-compresses a sequence of length-prefixed encoded
// records into a single framed block and writes it to name via
// factory.
func writeRun[T any](factory file.Factory, name string, items []int, values []T, codec Codec[T]) error {
	var raw []byte
	var lenBuf [4]byte
	for _, idx := range items {
		enc := codec.Encode(values[idx])
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(enc)))
		raw = append(raw, lenBuf[:]...)
		raw = append(raw, enc...)
	}
	compressed := snappy.Encode(nil, raw)

	w, err := factory.OpenWrite(name)
	if err != nil {
		return errors.Wrapf(err, "extsort: create run %s", name)
	}
	var sizeBuf [8]byte
	binary.LittleEndian.PutUint64(sizeBuf[:], uint64(len(compressed)))
	if _, err := w.Write(sizeBuf[:]); err != nil {
		w.Close()
		return errors.Wrapf(err, "extsort: write run header %s", name)
	}
	if _, err := w.Write(compressed); err != nil {
		w.Close()
		return errors.Wrapf(err, "extsort: write run body %s", name)
	}
	return errors.Wrapf(w.Close(), "extsort: close run %s", name)
}

// runReader sequentially decodes the length-prefixed records out of a
// run file written by writeRun, decompressing it in full on open (run
// files are sized to fit in the configured byte budget, so this is
// bounded memory).
type runReader[T any] struct {
	buf   []byte
	codec Codec[T]
	cur   T
	ok    bool
}

func openRun[T any](factory file.Factory, name string, codec Codec[T]) (*runReader[T], error) {
	r, err := factory.OpenRead(name)
	if err != nil {
		return nil, errors.Wrapf(err, "extsort: open run %s", name)
	}
	defer r.Close()
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "extsort: read run %s", name)
	}
	if len(data) < 8 {
		return nil, errors.Errorf("extsort: truncated run header %s", name)
	}
	size := binary.LittleEndian.Uint64(data[:8])
	compressed := data[8 : 8+size]
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, errors.Wrapf(err, "extsort: decompress run %s", name)
	}
	rr := &runReader[T]{buf: raw, codec: codec}
	rr.advance()
	return rr, nil
}

// advance decodes the next record into cur, clearing ok when exhausted.
func (r *runReader[T]) advance() {
	if len(r.buf) < 4 {
		r.ok = false
		return
	}
	n := binary.LittleEndian.Uint32(r.buf[:4])
	r.buf = r.buf[4:]
	if uint32(len(r.buf)) < n {
		r.ok = false
		return
	}
	r.cur = r.codec.Decode(r.buf[:n])
	r.buf = r.buf[n:]
	r.ok = true
}

func (r *runReader[T]) done() bool { return !r.ok }
func (r *runReader[T]) key() T     { return r.cur }
func (r *runReader[T]) next()      { r.advance() }

// ExternalSort accepts values one at a time, spilling sorted runs to
// disk once a configured in-memory byte budget is exceeded, and
// merges every run (via Merger) into dest when the caller is done
// pushing.
type ExternalSort[T any] struct {
	factory    file.Factory
	codec      Codec[T]
	less       Less[T]
	byteBudget int
	prefix     int

	buf      []T
	bufBytes int
	runs     []string
}

// NewExternalSort returns an ExternalSort that spills to files created
// via factory, each named extsort-run-N with N unique within the
// process, once the pushed values' encoded size exceeds byteBudget.
func NewExternalSort[T any](factory file.Factory, codec Codec[T], less Less[T], byteBudget int) *ExternalSort[T] {
	return &ExternalSort[T]{factory: factory, codec: codec, less: less, byteBudget: byteBudget}
}

// Push buffers v, spilling a sorted run to disk if the byte budget is
// now exceeded.
func (s *ExternalSort[T]) Push(v T) error {
	s.buf = append(s.buf, v)
	s.bufBytes += len(s.codec.Encode(v))
	if s.bufBytes >= s.byteBudget {
		return s.spill()
	}
	return nil
}

// spill indirectly sorts the buffered values through a permutation
// vector (avoiding copying T itself during comparisons) and writes
// them as a new run file.
func (s *ExternalSort[T]) spill() error {
	if len(s.buf) == 0 {
		return nil
	}
	idx := make([]int, len(s.buf))
	for i := range idx {
		idx[i] = i
	}
	// Indirect sort: permute indices rather than the (possibly large) T
	// values themselves.
	sort.Slice(idx, func(i, j int) bool { return s.less(s.buf[idx[i]], s.buf[idx[j]]) })

	s.prefix++
	name := runName(int(atomic.AddInt64(&runSerial, 1)))
	vlog.VI(1).Infof("extsort: spilling run %s (%d records, %d bytes)", name, len(s.buf), s.bufBytes)
	if err := writeRun(s.factory, name, idx, s.buf, s.codec); err != nil {
		return err
	}
	s.runs = append(s.runs, name)
	s.buf = s.buf[:0]
	s.bufBytes = 0
	return nil
}

// runSerial numbers run files across every ExternalSort in the process,
// so sorters sharing one factory never write to the same name.
var runSerial int64

func runName(n int) string {
	return "extsort-run-" + strconv.Itoa(n)
}

// RunCount reports how many run files have been spilled so far (the
// final, possibly-partial buffer is not counted until Finish spills
// it).
func (s *ExternalSort[T]) RunCount() int { return len(s.runs) }

// Finish spills any remaining buffered values, merges every run via a
// Merger, and drains the merged stream into dest. The ExternalSort
// must not be reused afterward.
func (s *ExternalSort[T]) Finish(dest Dest[T]) error {
	if err := s.spill(); err != nil {
		return err
	}
	defer func() {
		for _, name := range s.runs {
			s.factory.Remove(name)
		}
	}()
	vlog.VI(1).Infof("extsort: merging %d runs", len(s.runs))
	m, err := newMerger(s.factory, s.runs, s.codec, s.less)
	if err != nil {
		return err
	}
	return m.drain(dest)
}
