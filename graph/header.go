package graph

import (
	"encoding/binary"
	"io"

	"github.com/grailbio/gossamer/errs"
)

// Version is the on-disk graph format tag. History (spec-assigned,
// mirroring the source's version comment):
//
//	2011101014 - allow asymmetric graphs
//	2011091601 - use a SparseArrayView deletion overlay
//	2011071101 - use SparseArray for the edge set
//	2010072301 - use VariableByteArray for counts
//	2010062301 - introduce version tracking
const Version uint64 = 2011101014

// MaxK is the largest k-mer size a 128-bit position.Position can hold:
// 2 bits per base, minus 2 bits reserved so the all-ones value can
// still serve as a sentinel.
const MaxK = 128/2 - 1

// Header is the small metadata record every graph's base name resolves
// to, stored separately from the bulk edge/count artefacts so it can
// be read without mapping them.
type Header struct {
	Version    uint64
	K          uint64
	Asymmetric bool
}

func headerName(baseName string) string { return baseName + ".header" }
func edgesName(baseName string) string  { return baseName + "-edges" }
func countsName(baseName string) string { return baseName + "-counts" }
func histName(baseName string) string   { return baseName + "-counts-hist.txt" }

// writeHeader writes h little-endian with Version as the first 8
// bytes, per spec §6's header layout (mirroring dense.WriteHeader).
func writeHeader(w io.Writer, h Header) error {
	return binary.Write(w, binary.LittleEndian, h)
}

func readHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return h, errs.IOError("graph.Header", err)
	}
	if h.Version != Version {
		return h, errs.VersionMismatch("graph.Header", Version, h.Version)
	}
	return h, nil
}
