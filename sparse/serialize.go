package sparse

import (
	"encoding/binary"
	"io"

	"github.com/grailbio/gossamer/bitvector"
	"github.com/grailbio/gossamer/dense"
	"github.com/grailbio/gossamer/errs"
	"github.com/grailbio/gossamer/intarray"
)

// VersionSparseArray is SparseArray's on-disk format tag.
const VersionSparseArray uint64 = 2011091601 // matches the source's "use SparseArrayView" revision

// Save writes the array's high-bit vector and low-bit storage; the
// rank/select indexes are not persisted and are rebuilt by Load from
// the high-bit vector, same as End() builds them fresh after Push.
func (s *SparseArray) Save(w io.Writer) error {
	hasStack := uint64(0)
	if s.stack != nil {
		hasStack = 1
	}
	hdr := [4]uint64{VersionSparseArray, uint64(s.d), s.count, hasStack}
	if err := binary.Write(w, binary.LittleEndian, hdr[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, s.checksum); err != nil {
		return err
	}
	if err := s.high.Save(w); err != nil {
		return err
	}
	if s.stack != nil {
		return s.stack.Save(w)
	}
	return intarray.Save(w, int(s.d), s.low)
}

// Load reconstructs a SparseArray previously written by Save.
func Load(r io.Reader) (*SparseArray, error) {
	var hdr [4]uint64
	if err := binary.Read(r, binary.LittleEndian, hdr[:]); err != nil {
		return nil, err
	}
	if hdr[0] != VersionSparseArray {
		return nil, errs.VersionMismatch("sparse.SparseArray", VersionSparseArray, hdr[0])
	}
	d, count, hasStack := uint(hdr[1]), hdr[2], hdr[3] == 1

	var checksum uint64
	if err := binary.Read(r, binary.LittleEndian, &checksum); err != nil {
		return nil, err
	}
	high, err := bitvector.Load(r)
	if err != nil {
		return nil, err
	}
	s := &SparseArray{
		d:        d,
		count:    count,
		high:     high,
		rank1:    dense.BuildDenseRank(high),
		d1:       dense.BuildDenseSelect(high, false),
		d0:       dense.BuildDenseSelect(high, true),
		checksum: checksum,
	}
	if hasStack {
		s.stack, err = intarray.LoadStacked(r)
	} else {
		s.low, err = intarray.Load(r)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
