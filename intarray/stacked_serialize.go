package intarray

import (
	"encoding/binary"
	"io"

	"github.com/grailbio/gossamer/errs"
)

// VersionStackedArray is StackedArray's on-disk format tag.
const VersionStackedArray uint64 = 2011071402

// Save writes s's upper and lower components.
func (s *StackedArray) Save(w io.Writer) error {
	hdr := [2]uint64{VersionStackedArray, uint64(s.width)}
	if err := binary.Write(w, binary.LittleEndian, hdr[:]); err != nil {
		return err
	}
	if err := Save(w, s.width-64, s.upper); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, s.lower)
}

// LoadStacked reconstructs a StackedArray previously written by Save.
func LoadStacked(r io.Reader) (*StackedArray, error) {
	var hdr [2]uint64
	if err := binary.Read(r, binary.LittleEndian, hdr[:]); err != nil {
		return nil, err
	}
	if hdr[0] != VersionStackedArray {
		return nil, errs.VersionMismatch("intarray.StackedArray", VersionStackedArray, hdr[0])
	}
	width := int(hdr[1])
	upper, err := Load(r)
	if err != nil {
		return nil, err
	}
	lower := make([]uint64, upper.Len())
	if len(lower) > 0 {
		if err := binary.Read(r, binary.LittleEndian, lower); err != nil {
			return nil, err
		}
	}
	return &StackedArray{width: width, upper: upper, lower: lower}, nil
}
