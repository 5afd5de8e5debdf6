// Package graph implements the succinct de Bruijn graph: nodes are
// k-mers, edges are (k+1)-mers, and both are represented implicitly as
// position.Position values packed 2 bits per base. The graph itself is
// never stored as an adjacency list; it is reconstructed on demand from
// the sorted, Elias-Fano encoded edge set (sparse.SparseArray) plus a
// parallel per-edge multiplicity array (varbyte.VariableByteArray).
package graph

import "github.com/grailbio/gossamer/position"

// Node is a k-mer, represented as the low 2*K bits of a Position.
// Nodes are never stored explicitly; they are implied by the edges
// that have them as a prefix or suffix.
type Node struct{ v position.Position }

// NewNode wraps a raw packed value as a Node.
func NewNode(v position.Position) Node { return Node{v} }

// Value returns the packed 2-bit-per-base representation.
func (n Node) Value() position.Position { return n.v }

// Equal reports whether two nodes denote the same k-mer.
func (n Node) Equal(o Node) bool { return n.v.Equal(o.v) }

// Less orders nodes by their packed value, matching edge sort order.
func (n Node) Less(o Node) bool { return n.v.Less(o.v) }

// Edge is a (k+1)-mer, connecting the nodes implied by its leading and
// trailing k bases.
type Edge struct{ v position.Position }

// NewEdge wraps a raw packed value as an Edge.
func NewEdge(v position.Position) Edge { return Edge{v} }

// Value returns the packed 2-bit-per-base representation.
func (e Edge) Value() position.Position { return e.v }

// Equal reports whether two edges denote the same (k+1)-mer.
func (e Edge) Equal(o Edge) bool { return e.v.Equal(o.v) }

// Less orders edges by their packed value; this is the sort order the
// edge set is built, stored, and merged in.
func (e Edge) Less(o Edge) bool { return e.v.Less(o.v) }

// from returns the node comprising an edge's leading k bases.
func from(e Edge) Node { return Node{e.v.Shr(2)} }

// to returns the node comprising an edge's trailing k bases, masked to
// width k.
func to(e Edge, k uint64) Node { return Node{e.v.And(position.Mask(uint(2 * k)))} }

// reverseComplementNode returns a node's reverse complement under a
// k-base alphabet.
func reverseComplementNode(n Node, k uint64) Node { return Node{n.v.ReverseComplement(int(k))} }

// reverseComplementEdge returns an edge's reverse complement under a
// (k+1)-base alphabet.
func reverseComplementEdge(e Edge, k uint64) Edge { return Edge{e.v.ReverseComplement(int(k + 1))} }
