package kmer

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// FastqRecord is one read extracted from a FASTQ stream: the ID line
// and sequence, enough for k-mer extraction (quality/line-3 fields
// are read but discarded).
type FastqRecord struct {
	ID, Seq string
}

// fastqScanner streams FASTQ's four-line records one read at a time,
// matching fastaScanner's Scan()/Record() idiom. The line-framing
// rules (ID lines begin with "@", line 3 begins with "+") are adapted
// from encoding/fastq's Scanner; the paired-stream (R1/R2) and
// field-selection machinery there have no caller once k-mer extraction
// only ever reads one stream's ID and sequence.
type fastqScanner struct {
	b   *bufio.Scanner
	rec FastqRecord
	err error
}

func newFastqScanner(r io.Reader) *fastqScanner {
	s := bufio.NewScanner(r)
	s.Buffer(nil, 1<<20)
	return &fastqScanner{b: s}
}

// Scan reads the next read, returning false at EOF or on error (check
// Err to distinguish the two).
func (f *fastqScanner) Scan() bool {
	if f.err != nil {
		return false
	}
	if !f.b.Scan() {
		f.setEOFOrErr()
		return false
	}
	id := f.b.Text()
	if len(id) == 0 || id[0] != '@' {
		f.err = errors.Errorf("kmer: invalid FASTQ ID line %q", id)
		return false
	}
	if !f.scanLine() {
		return false
	}
	seq := f.b.Text()
	if !f.scanLine() {
		return false
	}
	unk := f.b.Text()
	if len(unk) == 0 || unk[0] != '+' {
		f.err = errors.Errorf("kmer: invalid FASTQ separator line %q", unk)
		return false
	}
	if !f.scanLine() {
		return false
	}
	f.rec = FastqRecord{ID: id, Seq: seq}
	return true
}

// scanLine advances to the next line, treating EOF as a truncated
// record rather than a clean end of stream.
func (f *fastqScanner) scanLine() bool {
	if f.b.Scan() {
		return true
	}
	if err := f.b.Err(); err != nil {
		f.err = errors.Wrap(err, "kmer: reading FASTQ")
	} else {
		f.err = errors.New("kmer: truncated FASTQ record")
	}
	return false
}

func (f *fastqScanner) setEOFOrErr() {
	if err := f.b.Err(); err != nil {
		f.err = errors.Wrap(err, "kmer: reading FASTQ")
	}
}

func (f *fastqScanner) Record() FastqRecord { return f.rec }

// Err returns the scanning error, if any; nil at a clean EOF.
func (f *fastqScanner) Err() error { return f.err }

// FastqKmerExtractor pulls (k+1)-mer windows out of every read of a
// FASTQ stream, one record at a time.
type FastqKmerExtractor struct {
	scanner   *fastqScanner
	extractor *Extractor
}

// NewFastqKmerExtractor returns an extractor over r's FASTQ reads
// using (k+1)-base windows.
func NewFastqKmerExtractor(r io.Reader, k int) *FastqKmerExtractor {
	return &FastqKmerExtractor{scanner: newFastqScanner(r), extractor: NewExtractor(k)}
}

// Each calls fn for every extracted KmerAt window, across every read
// in the stream, stopping early if fn returns false or the underlying
// read fails.
func (e *FastqKmerExtractor) Each(fn func(readID string, k KmerAt) bool) error {
	for e.scanner.Scan() {
		rec := e.scanner.Record()
		e.extractor.Reset(rec.Seq)
		for e.extractor.Scan() {
			if !fn(rec.ID, e.extractor.Get()) {
				return nil
			}
		}
	}
	return e.scanner.Err()
}
