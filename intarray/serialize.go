package intarray

import (
	"encoding/binary"
	"io"

	"github.com/grailbio/gossamer/errs"
)

// VersionIntegerArray is IntegerArray's on-disk format tag.
const VersionIntegerArray uint64 = 2011071401

// Save writes a's width-dispatched backing array.
func Save(w io.Writer, width int, a IntegerArray) error {
	hdr := [3]uint64{VersionIntegerArray, uint64(width), uint64(a.Len())}
	if err := binary.Write(w, binary.LittleEndian, hdr[:]); err != nil {
		return err
	}
	switch t := a.(type) {
	case *array8:
		return binary.Write(w, binary.LittleEndian, t.vals)
	case *array16:
		return binary.Write(w, binary.LittleEndian, t.vals)
	case *array32:
		return binary.Write(w, binary.LittleEndian, t.vals)
	case *array64:
		return binary.Write(w, binary.LittleEndian, t.vals)
	default:
		panic("intarray: unknown backing type")
	}
}

// Load reconstructs an IntegerArray previously written by Save.
func Load(r io.Reader) (IntegerArray, error) {
	var hdr [3]uint64
	if err := binary.Read(r, binary.LittleEndian, hdr[:]); err != nil {
		return nil, err
	}
	version, width, n := hdr[0], int(hdr[1]), int(hdr[2])
	if version != VersionIntegerArray {
		return nil, errs.VersionMismatch("intarray.IntegerArray", VersionIntegerArray, version)
	}
	a := NewIntegerArray(width, n)
	var err error
	switch t := a.(type) {
	case *array8:
		err = binary.Read(r, binary.LittleEndian, t.vals)
	case *array16:
		err = binary.Read(r, binary.LittleEndian, t.vals)
	case *array32:
		err = binary.Read(r, binary.LittleEndian, t.vals)
	case *array64:
		err = binary.Read(r, binary.LittleEndian, t.vals)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
