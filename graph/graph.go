package graph

import (
	"sort"

	"github.com/grailbio/gossamer/file"
	"github.com/grailbio/gossamer/position"
	"github.com/grailbio/gossamer/sparse"
	"github.com/grailbio/gossamer/varbyte"
)

// Graph is a succinct de Bruijn graph: a sorted Elias-Fano set of
// edges ((k+1)-mers), an aligned per-edge multiplicity array, and an
// optional logical-deletion overlay, all loaded from sibling files
// sharing a base name.
type Graph struct {
	header Header
	edges  *sparse.SparseArray
	view   *sparse.SparseArrayView
	counts *varbyte.VariableByteArray
}

// Open loads a graph previously written by a Builder.
func Open(factory file.Factory, baseName string) (*Graph, error) {
	hr, err := factory.OpenRead(headerName(baseName))
	if err != nil {
		return nil, err
	}
	h, err := readHeader(hr)
	hr.Close()
	if err != nil {
		return nil, err
	}

	er, err := factory.OpenRead(edgesName(baseName))
	if err != nil {
		return nil, err
	}
	edges, err := sparse.Load(er)
	er.Close()
	if err != nil {
		return nil, err
	}

	cr, err := factory.OpenRead(countsName(baseName))
	if err != nil {
		return nil, err
	}
	counts, err := varbyte.Load(cr)
	cr.Close()
	if err != nil {
		return nil, err
	}

	return &Graph{header: h, edges: edges, view: sparse.NewView(edges), counts: counts}, nil
}

// Remove deletes the graph (all of baseName's sibling files).
func Remove(factory file.Factory, baseName string) error {
	for _, name := range []string{headerName(baseName), edgesName(baseName), countsName(baseName), histName(baseName)} {
		if err := factory.Remove(name); err != nil {
			return err
		}
	}
	return nil
}

// K returns the k-mer size the graph was built with.
func (g *Graph) K() uint64 { return g.header.K }

// Asymmetric reports whether the graph was built without the
// assumption that every stored edge's reverse complement is also
// stored.
func (g *Graph) Asymmetric() bool { return g.header.Asymmetric }

// Count returns the number of edges currently visible (excluding any
// deleted by a prior Remove).
func (g *Graph) Count() uint64 { return g.view.Count() }

// Rank returns the number of visible edges strictly less than e.
func (g *Graph) Rank(e Edge) uint64 { return g.view.Rank(e.v) }

// Select returns the rank-th (0-indexed) visible edge.
func (g *Graph) Select(rank uint64) Edge { return Edge{g.view.Select(rank)} }

// Access reports whether e is present and not deleted.
func (g *Graph) Access(e Edge) bool { return g.view.Access(e.v) }

// Multiplicity returns the observed count for the edge at the given
// visible rank.
func (g *Graph) Multiplicity(rank uint64) uint32 {
	return g.counts.Get(g.view.OriginalRank(rank))
}

// ForwardSense reports whether the edge at the given rank runs in the
// direction it was originally observed in. Symmetric graphs (the
// common case) always answer true; asymmetric graphs encode sense in
// whether the edge carries a nonzero multiplicity.
func (g *Graph) ForwardSense(rank uint64) bool {
	if !g.header.Asymmetric {
		return true
	}
	return g.Multiplicity(rank) > 0
}

// From returns the node comprising e's leading k bases.
func (g *Graph) From(e Edge) Node { return from(e) }

// To returns the node comprising e's trailing k bases.
func (g *Graph) To(e Edge) Node { return to(e, g.header.K) }

// ReverseComplementNode returns n's reverse complement under the
// graph's k.
func (g *Graph) ReverseComplementNode(n Node) Node { return reverseComplementNode(n, g.header.K) }

// ReverseComplementEdge returns e's reverse complement under the
// graph's k.
func (g *Graph) ReverseComplementEdge(e Edge) Edge { return reverseComplementEdge(e, g.header.K) }

// Normalize returns the canonical (smaller of n, reverseComplement(n))
// form of a node.
func (g *Graph) Normalize(n Node) Node {
	rc := g.ReverseComplementNode(n)
	if position.Canonical(n.v, rc.v) {
		return n
	}
	return rc
}

// Canonical reports whether n is already in its canonical form.
func (g *Graph) Canonical(n Node) bool { return g.Normalize(n).Equal(n) }

// beginEndRank returns the visible-rank range of edges outgoing from n.
func (g *Graph) beginEndRank(n Node) (begin, end uint64) {
	v := n.v.Shl(2)
	return g.Rank(Edge{v}), g.Rank(Edge{v.Add(position.FromUint64(4))})
}

// OutDegree returns the number of edges originating at n.
func (g *Graph) OutDegree(n Node) uint64 {
	begin, end := g.beginEndRank(n)
	return end - begin
}

// OutEdgeRanks returns the visible-rank range [begin,end) of edges
// outgoing from n, for callers that need to enumerate every outgoing
// edge of a branching node (OnlyOutEdge only handles the degree-1
// case).
func (g *Graph) OutEdgeRanks(n Node) (begin, end uint64) { return g.beginEndRank(n) }

// InDegree returns the number of edges terminating at n.
func (g *Graph) InDegree(n Node) uint64 { return g.OutDegree(g.ReverseComplementNode(n)) }

// OnlyOutEdge returns n's sole outgoing edge and its rank, assuming
// OutDegree(n) == 1.
func (g *Graph) OnlyOutEdge(n Node) (edge Edge, rank uint64, ok bool) {
	begin, end := g.beginEndRank(n)
	if end-begin != 1 {
		return Edge{}, 0, false
	}
	return g.Select(begin), begin, true
}

// OnlyInEdge returns n's sole incoming edge, assuming InDegree(n) == 1.
func (g *Graph) OnlyInEdge(n Node) (Edge, bool) {
	e, _, ok := g.OnlyOutEdge(g.ReverseComplementNode(n))
	if !ok {
		return Edge{}, false
	}
	return g.ReverseComplementEdge(e), true
}

// NodeSeq appends n's k packed bases (values 0-3, A/C/G/T), in the
// order they were observed (most significant pair first), to dst.
func (g *Graph) NodeSeq(n Node, dst []byte) []byte {
	k := g.header.K
	for i := uint64(0); i < k; i++ {
		shift := uint(2 * (k - 1 - i))
		dst = append(dst, byte(n.v.Shr(shift).Lo&3))
	}
	return dst
}

// EdgeSeq appends e's k+1 packed bases to dst.
func (g *Graph) EdgeSeq(e Edge, dst []byte) []byte {
	dst = g.NodeSeq(g.From(e), dst)
	return append(dst, byte(e.v.Lo&3))
}

// LinearPath walks forward from begin while the path is unbranching in
// both directions (the next node has out-degree 1 and the edge taken
// has in-degree 1 from its source), calling visit for every edge
// traversed after begin. It returns the last edge reached before a
// branch, dead end, or visit returning false.
func (g *Graph) LinearPath(begin Edge, visit func(e Edge, rank uint64) bool) Edge {
	cur := begin
	for {
		n := g.To(cur)
		if g.OutDegree(n) != 1 || g.InDegree(n) != 1 {
			return cur
		}
		e, rank, ok := g.OnlyOutEdge(n)
		if !ok {
			return cur
		}
		if visit != nil && !visit(e, rank) {
			return cur
		}
		cur = e
	}
}

// WalkContig traces the maximal non-branching path starting at begin,
// returning its full base sequence (including begin's leading node)
// and the edge the walk terminated on.
func (g *Graph) WalkContig(begin Edge) ([]byte, Edge) {
	seq := g.EdgeSeq(begin, nil)
	end := g.LinearPath(begin, func(e Edge, _ uint64) bool {
		seq = append(seq, byte(e.v.Lo&3))
		return true
	})
	return seq, end
}

// Weight sums the multiplicities of every edge on the linear path from
// begin to end inclusive.
func (g *Graph) Weight(begin, end Edge) uint64 {
	var total uint64
	cur := begin
	for {
		total += uint64(g.Multiplicity(g.Rank(cur)))
		if cur.Equal(end) {
			break
		}
		e, _, ok := g.OnlyOutEdge(g.To(cur))
		if !ok {
			break
		}
		cur = e
	}
	return total
}

// Remove logically deletes the edges at the given visible ranks,
// translating them to underlying-array ranks before delegating to the
// SparseArrayView overlay.
func (g *Graph) Remove(ranks []uint64) {
	orig := make([]uint64, len(ranks))
	for i, r := range ranks {
		orig[i] = g.view.OriginalRank(r)
	}
	sort.Slice(orig, func(i, j int) bool { return orig[i] < orig[j] })
	g.view.Remove(orig)
}

// Rebuild materializes the graph's currently-visible edges (after any
// Remove calls) as a brand-new graph under a different base name.
func (g *Graph) Rebuild(factory file.Factory, baseName string) error {
	b := NewBuilder(g.header.K, baseName, factory, g.header.Asymmetric)
	it := g.Iterator()
	for it.Valid() {
		b.Push(it.Edge(), it.Multiplicity())
		it.Next()
	}
	return b.End()
}
