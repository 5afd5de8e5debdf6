package bitvector

import (
	"encoding/binary"
	"io"

	"github.com/grailbio/gossamer/errs"
)

// VersionWordyBitVector is WordyBitVector's on-disk format tag.
const VersionWordyBitVector uint64 = 2011071301

// Save writes v's word array and logical size.
func (v *WordyBitVector) Save(w io.Writer) error {
	hdr := [3]uint64{VersionWordyBitVector, v.size, uint64(len(v.words))}
	if err := binary.Write(w, binary.LittleEndian, hdr[:]); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, v.words)
}

// Load reconstructs a WordyBitVector previously written by Save.
func Load(r io.Reader) (*WordyBitVector, error) {
	var hdr [3]uint64
	if err := binary.Read(r, binary.LittleEndian, hdr[:]); err != nil {
		return nil, err
	}
	version, size, n := hdr[0], hdr[1], hdr[2]
	if version != VersionWordyBitVector {
		return nil, errs.VersionMismatch("bitvector.WordyBitVector", VersionWordyBitVector, version)
	}
	words := make([]uint64, n)
	if n > 0 {
		if err := binary.Read(r, binary.LittleEndian, words); err != nil {
			return nil, err
		}
	}
	return &WordyBitVector{words: words, size: size}, nil
}
