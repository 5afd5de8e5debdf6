package tourbus

import (
	"sort"

	farm "github.com/dgryski/go-farm"

	"github.com/grailbio/gossamer/concurrent"
	"github.com/grailbio/gossamer/graph"
)

// shardSeed is an arbitrary fixed seed for the farm hash used to
// spread branching nodes across worker shards; it need not be
// reproducible across runs, only stable within one Pass.
const shardSeed = 0x746f757262757321

// nodeShard returns which of nshards buckets a node's bounded BFS
// should run in, hashed rather than assigned round-robin so that
// nodes whose packed values cluster (e.g. long runs of the same
// leading base) don't pile onto the same shard.
func nodeShard(n graph.Node, nshards int) int {
	v := n.Value()
	var buf [16]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v.Lo >> (8 * i))
		buf[8+i] = byte(v.Hi >> (8 * i))
	}
	h := farm.Hash64WithSeed(buf[:], shardSeed)
	return int(h % uint64(nshards))
}

// deletionSet accumulates edge ranks marked for removal. It is safe to
// use unsynchronized as long as each goroutine operates only through
// its own shard (see Pass), merging happens only after
// every worker has returned.
type deletionSet struct {
	ranks map[uint64]struct{}
}

func newDeletionSet() *deletionSet { return &deletionSet{ranks: map[uint64]struct{}{}} }

func (d *deletionSet) markPath(g *graph.Graph, edges []graph.Edge, symmetric bool) {
	for _, e := range edges {
		d.ranks[g.Rank(e)] = struct{}{}
		if symmetric {
			d.ranks[g.Rank(g.ReverseComplementEdge(e))] = struct{}{}
		}
	}
}

func (d *deletionSet) mergeFrom(o *deletionSet) {
	for r := range o.ranks {
		d.ranks[r] = struct{}{}
	}
}

func (d *deletionSet) sortedRanks() []uint64 {
	out := make([]uint64, 0, len(d.ranks))
	for r := range d.ranks {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// branchingNodes returns every node with more than one outgoing edge,
// the candidate sources for a bubble search.
func branchingNodes(g *graph.Graph) []graph.Node {
	var nodes []graph.Node
	it := graph.NewNodeIterator(g)
	for it.Valid() {
		n := it.Node()
		if g.OutDegree(n) > 1 {
			nodes = append(nodes, n)
		}
		it.Next()
	}
	return nodes
}

// Pass runs one sweep of bubble removal over g: every branching node is
// explored by a bounded BFS (see bfsFromSource), candidate bubbles are
// scored, and the edges of every path judged weaker are removed from
// g's view in a single batch at the end. Workers never touch shared
// graph state beyond read-only queries; the only synchronization is
// merging each worker's deletion set before the final Remove call.
func Pass(g *graph.Graph, p Params) (removed int, err error) {
	nodes := branchingNodes(g)
	if len(nodes) == 0 {
		return 0, nil
	}

	threads := p.Threads
	if threads <= 0 {
		threads = 1
	}
	if threads > len(nodes) {
		threads = len(nodes)
	}

	shardSets := make([]*deletionSet, threads)
	shardNodes := make([][]graph.Node, threads)
	for i := range shardSets {
		shardSets[i] = newDeletionSet()
	}
	for _, n := range nodes {
		s := nodeShard(n, threads)
		shardNodes[s] = append(shardNodes[s], n)
	}

	group := concurrent.NewThreadGroup(threads, func(i int) {
		local := shardSets[i]
		for _, n := range shardNodes[i] {
			bfsFromSource(g, n, p, local)
		}
	})
	if werr := group.Wait(); werr != nil {
		return 0, werr
	}

	all := newDeletionSet()
	for _, s := range shardSets {
		all.mergeFrom(s)
	}

	ranks := all.sortedRanks()
	if len(ranks) == 0 {
		return 0, nil
	}
	g.Remove(ranks)
	return len(ranks), nil
}

// Run repeats Pass until it removes nothing, or until MaxPasses passes
// have run (when MaxPasses > 0), matching the original tool's
// run-to-fixpoint pass loop.
func Run(g *graph.Graph, p Params) (totalRemoved, passes int, err error) {
	for {
		removed, perr := Pass(g, p)
		if perr != nil {
			return totalRemoved, passes, perr
		}
		totalRemoved += removed
		passes++
		if removed == 0 {
			return totalRemoved, passes, nil
		}
		if p.MaxPasses > 0 && passes >= p.MaxPasses {
			return totalRemoved, passes, nil
		}
	}
}
