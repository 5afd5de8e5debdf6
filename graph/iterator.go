package graph

// Iterator walks a Graph's visible edges in ascending order, pairing
// each with its multiplicity.
type Iterator struct {
	g   *Graph
	rnk uint64
}

// Iterator returns an Iterator positioned at the first visible edge.
func (g *Graph) Iterator() *Iterator { return &Iterator{g: g} }

// Valid reports whether the iterator has a current edge.
func (it *Iterator) Valid() bool { return it.rnk < it.g.Count() }

// Edge returns the current edge.
func (it *Iterator) Edge() Edge { return it.g.Select(it.rnk) }

// Rank returns the current edge's visible rank.
func (it *Iterator) Rank() uint64 { return it.rnk }

// Multiplicity returns the current edge's observed count.
func (it *Iterator) Multiplicity() uint32 { return it.g.Multiplicity(it.rnk) }

// Next advances to the following edge.
func (it *Iterator) Next() { it.rnk++ }

// NodeIterator walks every distinct node that has at least one
// outgoing edge, in ascending order. Nodes with only incoming edges
// are not visited directly, though their reverse complements (which
// necessarily have an outgoing edge) are.
type NodeIterator struct {
	g     *Graph
	it    *Iterator
	node  Node
	valid bool
}

// NewNodeIterator returns a NodeIterator over g.
func NewNodeIterator(g *Graph) *NodeIterator {
	ni := &NodeIterator{g: g, it: g.Iterator()}
	ni.advance(true)
	return ni
}

// Valid reports whether the iterator has a current node.
func (ni *NodeIterator) Valid() bool { return ni.valid }

// Node returns the current node.
func (ni *NodeIterator) Node() Node { return ni.node }

// Next advances to the following distinct node.
func (ni *NodeIterator) Next() { ni.advance(false) }

func (ni *NodeIterator) advance(first bool) {
	if !first {
		prev := ni.node
		for {
			ni.valid = ni.it.Valid()
			if !ni.valid {
				return
			}
			n := ni.g.From(ni.it.Edge())
			ni.it.Next()
			if !n.Equal(prev) {
				ni.node = n
				return
			}
		}
	}
	ni.valid = ni.it.Valid()
	if ni.valid {
		ni.node = ni.g.From(ni.it.Edge())
	}
}
