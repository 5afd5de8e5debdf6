// Package dynbitvec implements CompactDynamicBitVector: a
// self-balancing (AVL) binary tree whose leaves are single
// bitio.RLBVWWord run-length-coded words, supporting Access, Rank,
// Select, Insert, and Erase on a logically unbounded, mutable bitmap.
package dynbitvec

import "github.com/grailbio/gossamer/bitio"

type node struct {
	isLeaf bool
	leaf   bitio.RLBVWWord

	left, right int32 // child indices, internal nodes only

	height int32
	size   uint64
	count  uint64
}

// Tree is an arena-indexed CompactDynamicBitVector: nodes live in a
// slice and reference children by int32 index rather than pointer, so
// the structure has no cycles and no garbage collector pressure from
// per-node allocation.
type Tree struct {
	nodes []node
	root  int32
}

// New returns an empty tree.
func New() *Tree {
	t := &Tree{}
	t.root = t.newLeaf(0)
	return t
}

func (t *Tree) newLeaf(w bitio.RLBVWWord) int32 {
	t.nodes = append(t.nodes, node{isLeaf: true, leaf: w, size: w.Size(), count: w.Count(), height: 1})
	return int32(len(t.nodes) - 1)
}

func (t *Tree) newInternal(left, right int32) int32 {
	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, node{left: left, right: right})
	t.recompute(idx)
	return idx
}

func (t *Tree) recompute(idx int32) {
	n := &t.nodes[idx]
	l, r := &t.nodes[n.left], &t.nodes[n.right]
	n.size = l.size + r.size
	n.count = l.count + r.count
	h := l.height
	if r.height > h {
		h = r.height
	}
	n.height = h + 1
}

func (t *Tree) balanceFactor(idx int32) int32 {
	n := t.nodes[idx]
	return t.nodes[n.left].height - t.nodes[n.right].height
}

// rotateLeft promotes idx's right child to the subtree root.
func (t *Tree) rotateLeft(idx int32) int32 {
	n := t.nodes[idx]
	y := n.right
	yNode := t.nodes[y]
	t.nodes[idx].right = yNode.left
	t.recompute(idx)
	t.nodes[y].left = idx
	t.recompute(y)
	return y
}

// rotateRight promotes idx's left child to the subtree root.
func (t *Tree) rotateRight(idx int32) int32 {
	n := t.nodes[idx]
	x := n.left
	xNode := t.nodes[x]
	t.nodes[idx].left = xNode.right
	t.recompute(idx)
	t.nodes[x].right = idx
	t.recompute(x)
	return x
}

func (t *Tree) rebalance(idx int32) int32 {
	if t.nodes[idx].isLeaf {
		return idx
	}
	bf := t.balanceFactor(idx)
	if bf > 1 {
		if t.balanceFactor(t.nodes[idx].left) < 0 {
			t.nodes[idx].left = t.rotateLeft(t.nodes[idx].left)
			t.recompute(idx)
		}
		return t.rotateRight(idx)
	}
	if bf < -1 {
		if t.balanceFactor(t.nodes[idx].right) > 0 {
			t.nodes[idx].right = t.rotateRight(t.nodes[idx].right)
			t.recompute(idx)
		}
		return t.rotateLeft(idx)
	}
	return idx
}

// Size returns the total logical bit count.
func (t *Tree) Size() uint64 { return t.nodes[t.root].size }

// Count returns the total number of 1-bits.
func (t *Tree) Count() uint64 { return t.nodes[t.root].count }

// Access returns the bit at position p.
func (t *Tree) Access(p uint64) bool { return t.access(t.root, p) }

func (t *Tree) access(idx int32, p uint64) bool {
	n := t.nodes[idx]
	if n.isLeaf {
		return n.leaf.Access(p)
	}
	leftSize := t.nodes[n.left].size
	if p < leftSize {
		return t.access(n.left, p)
	}
	return t.access(n.right, p-leftSize)
}

// Rank returns the number of 1-bits at positions < p.
func (t *Tree) Rank(p uint64) uint64 { return t.rank(t.root, p) }

func (t *Tree) rank(idx int32, p uint64) uint64 {
	n := t.nodes[idx]
	if n.isLeaf {
		return n.leaf.Rank(p)
	}
	leftSize := t.nodes[n.left].size
	if p <= leftSize {
		return t.rank(n.left, p)
	}
	return t.nodes[n.left].count + t.rank(n.right, p-leftSize)
}

// Select returns the position of the r-th (0-indexed) 1-bit, or Size()
// if there are fewer than r+1 ones.
func (t *Tree) Select(r uint64) uint64 { return t.selectAt(t.root, r) }

func (t *Tree) selectAt(idx int32, r uint64) uint64 {
	n := t.nodes[idx]
	if n.isLeaf {
		return n.leaf.Select(r)
	}
	leftCount := t.nodes[n.left].count
	if r < leftCount {
		return t.selectAt(n.left, r)
	}
	return t.nodes[n.left].size + t.selectAt(n.right, r-leftCount)
}

// Insert inserts bit b at logical position p (0<=p<=Size()).
func (t *Tree) Insert(p uint64, b bool) {
	t.root = t.insertAt(t.root, p, b)
}

func (t *Tree) insertAt(idx int32, p uint64, b bool) int32 {
	n := t.nodes[idx]
	if n.isLeaf {
		updated, overflow := n.leaf.Insert(p, b)
		if overflow == nil {
			t.nodes[idx].leaf = updated
			t.nodes[idx].size = updated.Size()
			t.nodes[idx].count = updated.Count()
			return idx
		}
		left := t.newLeaf(updated)
		right := t.newLeaf(*overflow)
		return t.newInternal(left, right)
	}
	leftSize := t.nodes[n.left].size
	if p <= leftSize {
		t.nodes[idx].left = t.insertAt(n.left, p, b)
	} else {
		t.nodes[idx].right = t.insertAt(n.right, p-leftSize, b)
	}
	t.recompute(idx)
	return t.rebalance(idx)
}

// Erase removes the bit at logical position p (0<=p<Size()).
func (t *Tree) Erase(p uint64) {
	t.root = t.eraseAt(t.root, p)
}

func (t *Tree) eraseAt(idx int32, p uint64) int32 {
	n := t.nodes[idx]
	if n.isLeaf {
		updated := n.leaf.Erase(p)
		t.nodes[idx].leaf = updated
		t.nodes[idx].size = updated.Size()
		t.nodes[idx].count = updated.Count()
		return idx
	}
	leftSize := t.nodes[n.left].size
	if p < leftSize {
		t.nodes[idx].left = t.eraseAt(n.left, p)
	} else {
		t.nodes[idx].right = t.eraseAt(n.right, p-leftSize)
	}
	if t.nodes[t.nodes[idx].left].size == 0 && t.nodes[t.nodes[idx].left].isLeaf {
		return t.nodes[idx].right
	}
	if t.nodes[t.nodes[idx].right].size == 0 && t.nodes[t.nodes[idx].right].isLeaf {
		return t.nodes[idx].left
	}
	t.recompute(idx)
	return t.rebalance(idx)
}
