// Package kmer extracts canonical (k+1)-mer positions (and their
// reverse complements) from streamed FASTA/FASTQ sequence records,
// for feeding a Graph.Builder's edge stream. The sliding-window
// extractor is adapted from fusion's 32-base uint64 kmerizer,
// generalized to arbitrary k via position.Position's 128-bit words.
package kmer

import (
	"github.com/grailbio/gossamer/position"
)

var (
	asciiToBase           [256]uint8
	asciiToComplementBase [256]uint8
)

const invalidBase = uint8(255)

func init() {
	for i := range asciiToBase {
		asciiToBase[i] = invalidBase
		asciiToComplementBase[i] = invalidBase
	}
	set := func(ch byte, b, rc uint8) {
		asciiToBase[ch] = b
		asciiToComplementBase[ch] = rc
	}
	set('A', 0, 3)
	set('a', 0, 3)
	set('C', 1, 2)
	set('c', 1, 2)
	set('G', 2, 1)
	set('g', 2, 1)
	set('T', 3, 0)
	set('t', 3, 0)
}

// KmerAt is one extracted window: the packed forward (k+1)-mer
// starting at Pos within the source sequence, and its reverse
// complement.
type KmerAt struct {
	Pos                        int
	Forward, ReverseComplement position.Position
}

// Canonical returns whichever of Forward/ReverseComplement is the
// canonical representative, per position.Canonical.
func (k KmerAt) Canonical() position.Position {
	return position.Normalize(k.Forward, k.ReverseComplement)
}

// Extractor slides a (k+1)-base window across a sequence, emitting
// KmerAt windows. Bases outside {A,C,G,T} break the window; scanning
// resumes once k+1 consecutive valid bases are found again, exactly
// as fusion's kmerizer does for fixed 32-base windows.
type Extractor struct {
	width int // k+1, in bases
	mask  position.Position

	seq string
	si  int
	cur KmerAt
	set bool // whether cur holds a valid window from the previous Scan
}

// NewExtractor returns an Extractor over (k+1)-base windows.
func NewExtractor(k int) *Extractor {
	width := k + 1
	return &Extractor{width: width, mask: position.Mask(uint(2 * width))}
}

// Reset begins scanning a new sequence.
func (e *Extractor) Reset(seq string) {
	e.seq = seq
	e.si = 0
	e.set = false
}

// Scan advances to the next valid window, returning false once the
// sequence is exhausted.
func (e *Extractor) Scan() bool {
	if e.set && e.si+e.width <= len(e.seq) {
		// Fast path: the window so far was valid, and the next single base
		// keeps it valid; shift it in incrementally instead of re-encoding
		// the whole window from scratch.
		nextCh := e.seq[e.si+e.width-1]
		b := asciiToBase[nextCh]
		if b != invalidBase {
			e.cur.Pos = e.si
			e.cur.Forward = e.cur.Forward.Shl(2).Or(position.FromUint64(uint64(b))).And(e.mask)
			shift := uint(2 * (e.width - 1))
			rcBase := asciiToComplementBase[nextCh]
			e.cur.ReverseComplement = e.cur.ReverseComplement.Shr(2).Or(position.FromUint64(uint64(rcBase)).Shl(shift))
			e.si++
			return true
		}
		// Fall through to the rescan path: nextCh is ambiguous.
	}

	for e.si+e.width <= len(e.seq) {
		window := e.seq[e.si : e.si+e.width]
		forward, ok := encode(window)
		if !ok {
			e.si = nextAmbiguous(e.seq, e.si) + 1
			e.set = false
			continue
		}
		rc := forward.ReverseComplement(e.width)
		e.cur = KmerAt{Pos: e.si, Forward: forward, ReverseComplement: rc}
		e.set = true
		e.si++
		return true
	}
	e.set = false
	return false
}

// Get returns the window found by the most recent successful Scan.
func (e *Extractor) Get() KmerAt { return e.cur }

func encode(seq string) (position.Position, bool) {
	var p position.Position
	for i := 0; i < len(seq); i++ {
		b := asciiToBase[seq[i]]
		if b == invalidBase {
			return position.Zero, false
		}
		p = p.Shl(2).Or(position.FromUint64(uint64(b)))
	}
	return p, true
}

// nextAmbiguous returns the index of the first invalid base at or
// after si, or len(seq) if none remains.
func nextAmbiguous(seq string, si int) int {
	for ; si < len(seq); si++ {
		if asciiToBase[seq[si]] == invalidBase {
			return si
		}
	}
	return len(seq)
}
