package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/gossamer/file"
	"github.com/grailbio/gossamer/position"
)

// buildSimpleGraph builds a tiny k=3 graph (edges are 4-mers) from the
// sequence "ACGTACG", whose successive overlapping 4-mers are
// ACGT, CGTA, GTAC, TACG — packed MSB-first, 2 bits/base (A=0 C=1 G=2
// T=3).
func buildSimpleGraph(t *testing.T, factory file.Factory, baseName string) {
	t.Helper()
	words := []uint64{
		0<<6 | 1<<4 | 2<<2 | 3, // ACGT
		1<<6 | 2<<4 | 3<<2 | 0, // CGTA
		2<<6 | 3<<4 | 0<<2 | 1, // GTAC
		3<<6 | 0<<4 | 1<<2 | 2, // TACG
	}
	sorted := append([]uint64(nil), words...)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j] < sorted[i] {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	b := NewBuilder(3, baseName, factory, false)
	for _, w := range sorted {
		b.Push(NewEdge(position.FromUint64(w)), 1)
	}
	assert.NoError(t, b.End())
}

func TestBuilderAndOpenRoundTrip(t *testing.T) {
	factory := file.NewInMemoryFactory()
	buildSimpleGraph(t, factory, "g")

	g, err := Open(factory, "g")
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), g.K())
	assert.False(t, g.Asymmetric())
	assert.Equal(t, uint64(4), g.Count())

	for i := uint64(0); i < g.Count(); i++ {
		e := g.Select(i)
		assert.True(t, g.Access(e))
		assert.Equal(t, i, g.Rank(e))
		assert.Equal(t, uint32(1), g.Multiplicity(i))
	}
}

func TestGraphFromToAndDegree(t *testing.T) {
	factory := file.NewInMemoryFactory()
	buildSimpleGraph(t, factory, "g")
	g, err := Open(factory, "g")
	assert.NoError(t, err)

	// ACGT -> from=ACG(0,1,2)=0b000110=6, to=CGT(1,2,3)=0b011011=27
	acgt := NewEdge(position.FromUint64(0<<6 | 1<<4 | 2<<2 | 3))
	from := g.From(acgt)
	to := g.To(acgt)
	assert.Equal(t, uint64(0b000110), from.Value().Lo)
	assert.Equal(t, uint64(0b011011), to.Value().Lo)

	// CGT has out-degree 1 (only CGTA continues it).
	assert.Equal(t, uint64(1), g.OutDegree(to))
}

func TestGraphWalkContig(t *testing.T) {
	factory := file.NewInMemoryFactory()
	buildSimpleGraph(t, factory, "g")
	g, err := Open(factory, "g")
	assert.NoError(t, err)

	begin := NewEdge(position.FromUint64(0<<6 | 1<<4 | 2<<2 | 3)) // ACGT
	seq, _ := g.WalkContig(begin)
	// The unbranching walk from ACGT should trace out A C G T A C G
	// (each successive edge contributing one more base), matching the
	// original source sequence.
	want := []byte{0, 1, 2, 3, 0, 1, 2}
	assert.Equal(t, want, seq)
}

func TestGraphRemoveAndRebuild(t *testing.T) {
	factory := file.NewInMemoryFactory()
	buildSimpleGraph(t, factory, "g")
	g, err := Open(factory, "g")
	assert.NoError(t, err)

	g.Remove([]uint64{0})
	assert.Equal(t, uint64(3), g.Count())

	assert.NoError(t, g.Rebuild(factory, "g2"))
	g2, err := Open(factory, "g2")
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), g2.Count())
}

func TestNodeIterator(t *testing.T) {
	factory := file.NewInMemoryFactory()
	buildSimpleGraph(t, factory, "g")
	g, err := Open(factory, "g")
	assert.NoError(t, err)

	var nodes []Node
	for ni := NewNodeIterator(g); ni.Valid(); ni.Next() {
		nodes = append(nodes, ni.Node())
	}
	assert.Len(t, nodes, 4) // every edge's from-node is distinct here
}

func TestCountsHistogramRoundTrip(t *testing.T) {
	factory := file.NewInMemoryFactory()
	buildSimpleGraph(t, factory, "g")

	r, err := factory.OpenRead(histName("g"))
	assert.NoError(t, err)
	hist, err := ReadCountsHistogram(r)
	assert.NoError(t, err)
	assert.Equal(t, uint64(4), hist.Total())
	assert.Equal(t, uint64(4), hist[1])
}
