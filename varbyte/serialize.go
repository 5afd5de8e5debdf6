package varbyte

import (
	"encoding/binary"
	"io"

	"github.com/grailbio/gossamer/errs"
	"github.com/grailbio/gossamer/sparse"
)

// VersionVariableByteArray is VariableByteArray's on-disk format tag.
const VersionVariableByteArray uint64 = 2010072301 // matches the source's "VariableByteArray for counts" revision

// Save writes the three tiers in order.
func (a *VariableByteArray) Save(w io.Writer) error {
	hdr := [3]uint64{VersionVariableByteArray, uint64(len(a.order0)), uint64(len(a.order1))}
	if err := binary.Write(w, binary.LittleEndian, hdr[:]); err != nil {
		return err
	}
	if _, err := w.Write(a.order0); err != nil {
		return err
	}
	if err := a.present1.Save(w); err != nil {
		return err
	}
	if _, err := w.Write(a.order1); err != nil {
		return err
	}
	if err := a.present2.Save(w); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, a.order2)
}

// Load reconstructs a VariableByteArray previously written by Save.
func Load(r io.Reader) (*VariableByteArray, error) {
	var hdr [3]uint64
	if err := binary.Read(r, binary.LittleEndian, hdr[:]); err != nil {
		return nil, err
	}
	if hdr[0] != VersionVariableByteArray {
		return nil, errs.VersionMismatch("varbyte.VariableByteArray", VersionVariableByteArray, hdr[0])
	}
	n0, n1 := int(hdr[1]), int(hdr[2])

	order0 := make([]byte, n0)
	if _, err := io.ReadFull(r, order0); err != nil {
		return nil, err
	}
	present1, err := sparse.Load(r)
	if err != nil {
		return nil, err
	}
	order1 := make([]byte, n1)
	if n1 > 0 {
		if _, err := io.ReadFull(r, order1); err != nil {
			return nil, err
		}
	}
	present2, err := sparse.Load(r)
	if err != nil {
		return nil, err
	}
	order2 := make([]uint16, present2.Count())
	if len(order2) > 0 {
		if err := binary.Read(r, binary.LittleEndian, order2); err != nil {
			return nil, err
		}
	}
	return &VariableByteArray{
		order0:   order0,
		present1: present1,
		order1:   order1,
		present2: present2,
		order2:   order2,
	}, nil
}
