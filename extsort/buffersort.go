package extsort

import (
	"bufio"
	"encoding/binary"
	"io"
	"sort"
	"strconv"

	"github.com/klauspost/compress/s2"
	"github.com/pkg/errors"

	"github.com/grailbio/gossamer/file"
)

// ExternalBufferSort sorts variable-length byte-slice records too
// large to hold in memory at once, by radix-partitioning on
// successive bytes rather than comparison-sorting the whole set: an
// in-memory buffer accepts pushed records until it exceeds the byte
// budget, at which point every further record streams straight
// through to one of up to 257 s2-compressed partition files keyed by
// the byte at the current depth (bucket 0 for records shorter than
// depth). Finish reads each partition back; one that still exceeds
// the budget is recursed into one byte deeper, while one that now
// fits is sorted in memory with an indirect byte-slice comparator.
//
// s2 (rather than snappy, used for ExternalSort's fixed-size runs)
// favours ExternalBufferSort's many small, streamed partition writes,
// where s2's faster compression matters more than snappy's slightly
// better ratio.
type ExternalBufferSort struct {
	factory    file.Factory
	byteBudget int
	depth      int
	tag        string

	buf      [][]byte
	bufBytes int
	spilled  bool
	children [257]*bufferPartition
}

// bufferPartition is one open, streamed, s2-compressed child file a
// spilled ExternalBufferSort routes records into.
type bufferPartition struct {
	name string
	w    io.WriteCloser
	zw   *s2.Writer
	bw   *bufio.Writer
}

// NewExternalBufferSort returns a root ExternalBufferSort over
// records compared lexicographically, spilling through factory once
// an in-memory batch exceeds byteBudget.
func NewExternalBufferSort(factory file.Factory, byteBudget int) *ExternalBufferSort {
	return &ExternalBufferSort{factory: factory, byteBudget: byteBudget, tag: "root"}
}

func newChildBufferSort(parent *ExternalBufferSort, depth int, tag string) *ExternalBufferSort {
	return &ExternalBufferSort{factory: parent.factory, byteBudget: parent.byteBudget, depth: depth, tag: tag}
}

// Push buffers record, routing it to a radix partition once the
// in-memory budget has been exceeded.
func (s *ExternalBufferSort) Push(record []byte) error {
	if s.spilled {
		return s.route(record)
	}
	s.buf = append(s.buf, record)
	s.bufBytes += len(record) + 4
	if s.bufBytes > s.byteBudget {
		return s.spill()
	}
	return nil
}

// spill opens up to 257 streamed partition files and routes the
// buffered records (and every subsequent push) into them by the byte
// at the current depth.
func (s *ExternalBufferSort) spill() error {
	s.spilled = true
	buf := s.buf
	s.buf = nil
	s.bufBytes = 0
	for _, r := range buf {
		if err := s.route(r); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExternalBufferSort) route(record []byte) error {
	bucket := 0
	if s.depth < len(record) {
		bucket = 1 + int(record[s.depth])
	}
	p := s.children[bucket]
	if p == nil {
		name := "extbuf-" + s.tag + "-" + strconv.Itoa(bucket)
		w, err := s.factory.OpenWrite(name)
		if err != nil {
			return errors.Wrapf(err, "extsort.ExternalBufferSort: open partition %s", name)
		}
		zw := s2.NewWriter(w)
		p = &bufferPartition{name: name, w: w, zw: zw, bw: bufio.NewWriter(zw)}
		s.children[bucket] = p
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(record)))
	if _, err := p.bw.Write(lenBuf[:]); err != nil {
		return errors.Wrapf(err, "extsort.ExternalBufferSort: write partition %s", p.name)
	}
	if _, err := p.bw.Write(record); err != nil {
		return errors.Wrapf(err, "extsort.ExternalBufferSort: write partition %s", p.name)
	}
	return nil
}

// close flushes and closes a partition's writers, leaving its file on
// disk for the caller to read back and then remove.
func (p *bufferPartition) close() error {
	if err := p.bw.Flush(); err != nil {
		return errors.Wrapf(err, "extsort.ExternalBufferSort: flush partition %s", p.name)
	}
	if err := p.zw.Close(); err != nil {
		return errors.Wrapf(err, "extsort.ExternalBufferSort: close compressor %s", p.name)
	}
	return errors.Wrapf(p.w.Close(), "extsort.ExternalBufferSort: close partition %s", p.name)
}

// readBackPartition decompresses and decodes a closed partition's
// records.
func readBackPartition(factory file.Factory, name string) ([][]byte, error) {
	r, err := factory.OpenRead(name)
	if err != nil {
		return nil, errors.Wrapf(err, "extsort.ExternalBufferSort: reopen partition %s", name)
	}
	defer r.Close()
	zr := s2.NewReader(r)
	var out [][]byte
	var lenBuf [4]byte
	for {
		if _, err := io.ReadFull(zr, lenBuf[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "extsort.ExternalBufferSort: read partition %s", name)
		}
		n := binary.LittleEndian.Uint32(lenBuf[:])
		rec := make([]byte, n)
		if _, err := io.ReadFull(zr, rec); err != nil {
			return nil, errors.Wrapf(err, "extsort.ExternalBufferSort: read partition %s", name)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Finish drains every record in lexicographic order into dest.
func (s *ExternalBufferSort) Finish(dest Dest[[]byte]) error {
	if !s.spilled {
		idx := make([]int, len(s.buf))
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(i, j int) bool { return lessBytes(s.buf[idx[i]], s.buf[idx[j]]) })
		for _, i := range idx {
			if err := dest.Push(s.buf[i]); err != nil {
				return err
			}
		}
		return nil
	}
	for bucket, p := range s.children {
		if p == nil {
			continue
		}
		if err := p.close(); err != nil {
			return err
		}
		records, err := readBackPartition(s.factory, p.name)
		if err != nil {
			return err
		}
		if err := s.factory.Remove(p.name); err != nil {
			return errors.Wrapf(err, "extsort.ExternalBufferSort: remove partition %s", p.name)
		}
		child := newChildBufferSort(s, s.depth+1, s.tag+"-"+strconv.Itoa(bucket))
		for _, r := range records {
			if err := child.Push(r); err != nil {
				return err
			}
		}
		if err := child.Finish(dest); err != nil {
			return errors.Wrapf(err, "extsort.ExternalBufferSort: partition %s", child.tag)
		}
	}
	return nil
}

func lessBytes(a, b []byte) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
