package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/gossamer/file"
	"github.com/grailbio/gossamer/graph"
	"github.com/grailbio/gossamer/position"
)

func writeRun(t *testing.T, factory file.Factory, name string, edges []uint64, counts []uint32) {
	t.Helper()
	w, err := factory.OpenWrite(name)
	assert.NoError(t, err)
	rw := NewRunWriter(w)
	for i, e := range edges {
		assert.NoError(t, rw.Put(graph.NewEdge(position.FromUint64(e)), counts[i]))
	}
	assert.NoError(t, w.Close())
}

func TestAsyncMergeSumsDuplicateEdges(t *testing.T) {
	factory := file.NewInMemoryFactory()
	writeRun(t, factory, "run1", []uint64{1, 3, 5, 7}, []uint32{1, 1, 1, 1})
	writeRun(t, factory, "run2", []uint64{2, 3, 5, 8}, []uint32{1, 2, 3, 1})

	assert.NoError(t, AsyncMerge(factory, []string{"run1", "run2"}, 3, false, 2, "merged"))

	g, err := graph.Open(factory, "merged")
	assert.NoError(t, err)
	assert.Equal(t, uint64(6), g.Count())

	want := map[uint64]uint32{1: 1, 2: 1, 3: 3, 5: 4, 7: 1, 8: 1}
	it := g.Iterator()
	for it.Valid() {
		v := it.Edge().Value().Lo
		assert.Equal(t, want[v], it.Multiplicity(), "edge %d", v)
		it.Next()
	}
}

func TestAsyncMergeSumsDuplicatesWithinOneRun(t *testing.T) {
	factory := file.NewInMemoryFactory()
	// edge 5 repeats three times within the same run, exactly as
	// repeated k-mer observations within one extracted read set would.
	writeRun(t, factory, "run1", []uint64{1, 5, 5, 5, 9}, []uint32{1, 1, 1, 1, 1})

	assert.NoError(t, AsyncMerge(factory, []string{"run1"}, 3, false, 1, "merged"))

	g, err := graph.Open(factory, "merged")
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), g.Count())

	e := graph.NewEdge(position.FromUint64(5))
	assert.Equal(t, uint32(3), g.Multiplicity(g.Rank(e)))
}

func TestAsyncMergeManyRunsConcurrentDecode(t *testing.T) {
	factory := file.NewInMemoryFactory()
	names := []string{"a", "b", "c", "d"}
	// Each run contributes one disjoint edge and one shared edge (100),
	// exercising the concurrent-prefetch path across more runs than
	// numThreads.
	for i, n := range names {
		writeRun(t, factory, n, []uint64{uint64(i), 100}, []uint32{1, 1})
	}

	assert.NoError(t, AsyncMerge(factory, names, 3, false, 2, "merged"))

	g, err := graph.Open(factory, "merged")
	assert.NoError(t, err)
	assert.Equal(t, uint64(5), g.Count()) // 4 disjoint + 1 shared

	e := graph.NewEdge(position.FromUint64(100))
	rank := g.Rank(e)
	assert.Equal(t, uint32(4), g.Multiplicity(rank))
}
