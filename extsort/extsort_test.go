package extsort

import (
	"encoding/binary"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/gossamer/file"
)

type uint64Codec struct{}

func (uint64Codec) Encode(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}

func (uint64Codec) Decode(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }

func uint64Less(a, b uint64) bool { return a < b }

func TestExternalSortSpillsAndMerges(t *testing.T) {
	factory := file.NewInMemoryFactory()
	// Tiny budget forces many runs.
	s := NewExternalSort[uint64](factory, uint64Codec{}, uint64Less, 64)

	rng := rand.New(rand.NewSource(1))
	var want []uint64
	for i := 0; i < 500; i++ {
		v := rng.Uint64() % 10000
		want = append(want, v)
		assert.NoError(t, s.Push(v))
	}
	assert.True(t, s.RunCount() > 1, "expected multiple spilled runs")

	var dest SliceDest[uint64]
	assert.NoError(t, s.Finish(&dest))

	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	assert.Equal(t, want, dest.Items)
}

func TestExternalSortSingleRun(t *testing.T) {
	factory := file.NewInMemoryFactory()
	s := NewExternalSort[uint64](factory, uint64Codec{}, uint64Less, 1<<20)
	for _, v := range []uint64{5, 3, 1, 4, 2} {
		assert.NoError(t, s.Push(v))
	}
	var dest SliceDest[uint64]
	assert.NoError(t, s.Finish(&dest))
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, dest.Items)
}

func TestExternalVarPushSorter(t *testing.T) {
	factory := file.NewInMemoryFactory()
	s := NewExternalVarPushSorter[uint64](factory, uint64Codec{}, uint64Less, 16)
	rng := rand.New(rand.NewSource(2))
	var want []uint64
	for i := 0; i < 200; i++ {
		v := rng.Uint64() % 1000
		want = append(want, v)
		assert.NoError(t, s.Push(v))
	}
	assert.True(t, s.RunCount() > 1)
	var dest SliceDest[uint64]
	assert.NoError(t, s.Finish(&dest))
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	assert.Equal(t, want, dest.Items)
}

func TestExternalBufferSort(t *testing.T) {
	factory := file.NewInMemoryFactory()
	s := NewExternalBufferSort(factory, 48) // small budget forces partitioning
	records := [][]byte{
		[]byte("banana"),
		[]byte("apple"),
		[]byte("cherry"),
		[]byte("avocado"),
		[]byte("blueberry"),
		[]byte("apricot"),
		[]byte("a"),
		[]byte(""),
	}
	for _, r := range records {
		assert.NoError(t, s.Push(r))
	}
	var dest SliceDest[[]byte]
	assert.NoError(t, s.Finish(&dest))

	var got []string
	for _, r := range dest.Items {
		got = append(got, string(r))
	}
	want := make([]string, len(got))
	copy(want, got)
	sort.Strings(want)
	assert.Equal(t, want, got)
	assert.Equal(t, len(records), len(got))
}

func TestPacketSorterFeedsBufferSort(t *testing.T) {
	factory := file.NewInMemoryFactory()
	sink := NewExternalBufferSort(factory, 64)
	p := NewPacketSorter(sink, 20)

	words := []string{"fig", "date", "elderberry", "grape", "honeydew", "kiwi"}
	for _, w := range words {
		assert.NoError(t, p.Push([]byte(w)))
	}
	assert.NoError(t, p.Finish())

	var dest SliceDest[[]byte]
	assert.NoError(t, sink.Finish(&dest))
	var got []string
	for _, r := range dest.Items {
		got = append(got, string(r))
	}
	want := make([]string, len(words))
	copy(want, words)
	sort.Strings(want)
	assert.Equal(t, want, got)
}
