package kmer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/gossamer/position"
)

// encodeReference packs seq (assumed all-valid bases) MSB-first, as a
// naive reference independent of Extractor's incremental logic.
func encodeReference(t *testing.T, seq string) position.Position {
	t.Helper()
	p, ok := encode(seq)
	assert.True(t, ok)
	return p
}

func TestExtractorMatchesNaiveEncoding(t *testing.T) {
	seq := "ACGTACGTACGTGGTTCCAA"
	k := 4 // window width 5
	e := NewExtractor(k)
	e.Reset(seq)

	width := k + 1
	var windows []KmerAt
	for e.Scan() {
		windows = append(windows, e.Get())
	}
	assert.Equal(t, len(seq)-width+1, len(windows))
	for _, w := range windows {
		want := encodeReference(t, seq[w.Pos:w.Pos+width])
		assert.True(t, want.Equal(w.Forward), "pos %d", w.Pos)
		assert.True(t, want.ReverseComplement(width).Equal(w.ReverseComplement), "pos %d", w.Pos)
	}
}

func TestExtractorBreaksOnAmbiguousBase(t *testing.T) {
	seq := "ACGTNACGTACGT"
	k := 3 // width 4
	e := NewExtractor(k)
	e.Reset(seq)

	var positions []int
	for e.Scan() {
		positions = append(positions, e.Get().Pos)
	}
	// No window may straddle the 'N' at index 4.
	for _, p := range positions {
		assert.False(t, p <= 4 && p+4 > 4, "window at %d straddles ambiguous base", p)
	}
	assert.NotEmpty(t, positions)
}

func TestExtractorTooShortSequenceYieldsNothing(t *testing.T) {
	e := NewExtractor(10)
	e.Reset("ACGT")
	assert.False(t, e.Scan())
}

func TestExtractorReverseComplementIsInvolutive(t *testing.T) {
	seq := "ACGTTGCATTAGCATCGATCG"
	k := 6
	e := NewExtractor(k)
	e.Reset(seq)
	width := k + 1
	for e.Scan() {
		w := e.Get()
		assert.True(t, w.ReverseComplement.ReverseComplement(width).Equal(w.Forward))
	}
}

func TestFastaKmerExtractor(t *testing.T) {
	data := ">seq1\nACGTACGTAC\n>seq2\nTTTTGGGGCCCCAAAA\n"
	ext := NewFastaKmerExtractor(strings.NewReader(data), 3)

	counts := map[string]int{}
	err := ext.Each(func(name string, k KmerAt) bool {
		counts[name]++
		return true
	})
	assert.NoError(t, err)
	assert.Equal(t, 10-4+1, counts["seq1"])
	assert.Equal(t, 16-4+1, counts["seq2"])
}

func TestFastaKmerExtractorStopsEarly(t *testing.T) {
	data := ">seq1\nACGTACGTACGTACGT\n"
	ext := NewFastaKmerExtractor(strings.NewReader(data), 3)
	n := 0
	err := ext.Each(func(name string, k KmerAt) bool {
		n++
		return n < 3
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestFastqKmerExtractor(t *testing.T) {
	data := "@read1\nACGTACGTAC\n+\nIIIIIIIIII\n@read2\nTTTTGGGGCC\n+\nIIIIIIIIII\n"
	ext := NewFastqKmerExtractor(strings.NewReader(data), 3)

	counts := map[string]int{}
	err := ext.Each(func(id string, k KmerAt) bool {
		counts[id]++
		return true
	})
	assert.NoError(t, err)
	assert.Equal(t, 10-4+1, counts["@read1"])
	assert.Equal(t, 10-4+1, counts["@read2"])
}
