package kmer

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// FastaRecord is one named sequence read from a FASTA stream.
type FastaRecord struct {
	Name string
	Seq  string
}

// fastaScanner streams FASTA records one at a time rather than
// loading the whole file, unlike encoding/fasta's eager in-memory
// Fasta type (which is built for random-access Get/Len queries); the
// line-accumulation loop is adapted from fasta.go's newEagerUnindexed
// but restructured around Scan()/Record(), matching fastq.Scanner's
// streaming idiom.
type fastaScanner struct {
	b    *bufio.Scanner
	name string
	rec  FastaRecord
	next string // sequence name read ahead while accumulating the previous record
	done bool
	err  error
}

func newFastaScanner(r io.Reader) *fastaScanner {
	s := bufio.NewScanner(r)
	s.Buffer(nil, 1<<20)
	return &fastaScanner{b: s}
}

// Scan reads the next named sequence, returning false at EOF or on
// error (check Err to distinguish the two).
func (f *fastaScanner) Scan() bool {
	if f.done {
		return false
	}
	var seq strings.Builder
	name := f.next
	f.next = ""
	for f.b.Scan() {
		line := f.b.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			newName := strings.Split(line[1:], " ")[0]
			if name == "" {
				name = newName
				continue
			}
			f.next = newName
			f.rec = FastaRecord{Name: name, Seq: seq.String()}
			return true
		}
		seq.WriteString(line)
	}
	if err := f.b.Err(); err != nil {
		f.err = errors.Wrap(err, "kmer: reading FASTA")
		f.done = true
		return false
	}
	f.done = true
	if name == "" {
		return false
	}
	f.rec = FastaRecord{Name: name, Seq: seq.String()}
	return true
}

func (f *fastaScanner) Record() FastaRecord { return f.rec }
func (f *fastaScanner) Err() error          { return f.err }

// FastaKmerExtractor pulls (k+1)-mer windows out of every record of a
// FASTA stream, one record at a time.
type FastaKmerExtractor struct {
	scanner   *fastaScanner
	extractor *Extractor
}

// NewFastaKmerExtractor returns an extractor over r's FASTA records
// using (k+1)-base windows.
func NewFastaKmerExtractor(r io.Reader, k int) *FastaKmerExtractor {
	return &FastaKmerExtractor{scanner: newFastaScanner(r), extractor: NewExtractor(k)}
}

// Each calls fn for every extracted KmerAt window, across every
// record in the stream, stopping early if fn returns false or the
// underlying read fails.
func (e *FastaKmerExtractor) Each(fn func(record string, k KmerAt) bool) error {
	for e.scanner.Scan() {
		rec := e.scanner.Record()
		e.extractor.Reset(rec.Seq)
		for e.extractor.Scan() {
			if !fn(rec.Name, e.extractor.Get()) {
				return nil
			}
		}
	}
	return e.scanner.Err()
}
